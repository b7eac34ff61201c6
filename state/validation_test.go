package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validGatewayCfg() GatewayCfg {
	cfg := GatewayCfg{Enabled: true, RouterSSID: "attic"}
	cfg.ApplyDefaults()
	return cfg
}

func TestGatewayConfigValidator_DisabledAlwaysValid(t *testing.T) {
	cfg := GatewayCfg{}
	assert.NoError(t, GatewayConfigValidator(&cfg))
}

func TestGatewayConfigValidator_Rules(t *testing.T) {
	cfg := validGatewayCfg()
	cfg.RouterSSID = ""
	assert.ErrorContains(t, GatewayConfigValidator(&cfg), "router_ssid is required")

	cfg = validGatewayCfg()
	cfg.RouterSSID = "an-ssid-that-is-definitely-longer-than-32-chars"
	assert.ErrorContains(t, GatewayConfigValidator(&cfg), "maximum length of 32")

	cfg = validGatewayCfg()
	cfg.HeartbeatInterval = 500
	assert.ErrorContains(t, GatewayConfigValidator(&cfg), "heartbeat_interval must be at least 1000ms")

	cfg = validGatewayCfg()
	cfg.FailureTimeout = cfg.HeartbeatInterval
	assert.ErrorContains(t, GatewayConfigValidator(&cfg), "at least 2x heartbeat_interval")

	cfg = validGatewayCfg()
	cfg.InternetCheckTimeout = cfg.InternetCheckInterval
	assert.ErrorContains(t, GatewayConfigValidator(&cfg), "less than internet_check_interval")

	cfg = validGatewayCfg()
	cfg.ElectionDelayMax = cfg.ElectionDelayMin
	assert.ErrorContains(t, GatewayConfigValidator(&cfg), "election_delay_max")
}

func TestCentralConfigValidator(t *testing.T) {
	cfg := CentralCfg{
		Nodes: []NodeCfg{{Id: 1}, {Id: 2}},
		Edges: []Pair[NodeId, NodeId]{{1, 2}},
	}
	assert.NoError(t, CentralConfigValidator(&cfg))

	dup := CentralCfg{Nodes: []NodeCfg{{Id: 1}, {Id: 1}}}
	assert.ErrorContains(t, CentralConfigValidator(&dup), "duplicate node id")

	undef := CentralCfg{
		Nodes: []NodeCfg{{Id: 1}},
		Edges: []Pair[NodeId, NodeId]{{1, 9}},
	}
	assert.ErrorContains(t, CentralConfigValidator(&undef), "node 9 not defined")

	self := CentralCfg{
		Nodes: []NodeCfg{{Id: 1}},
		Edges: []Pair[NodeId, NodeId]{{1, 1}},
	}
	assert.ErrorContains(t, CentralConfigValidator(&self), "self edge")

	dupEdge := CentralCfg{
		Nodes: []NodeCfg{{Id: 1}, {Id: 2}},
		Edges: []Pair[NodeId, NodeId]{{1, 2}, {1, 2}},
	}
	assert.ErrorContains(t, CentralConfigValidator(&dupEdge), "duplicate edge")
}
