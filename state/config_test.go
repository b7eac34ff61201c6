package state

import (
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
)

func TestGatewayCfg_ApplyDefaults(t *testing.T) {
	cfg := GatewayCfg{Enabled: true, RouterSSID: "attic"}
	cfg.ApplyDefaults()

	assert.Equal(t, HeartbeatInterval, cfg.HeartbeatInterval)
	assert.Equal(t, GatewayFailureTimeout, cfg.FailureTimeout)
	assert.Equal(t, GatewayHealthTimeout, cfg.HealthTimeout)
	assert.Equal(t, InternetCheckHost, cfg.InternetCheckHost)
	assert.Equal(t, ElectionDuration, cfg.ElectionDuration)
	assert.Equal(t, CooldownPeriod, cfg.CooldownPeriod)
	assert.NoError(t, GatewayConfigValidator(&cfg))
}

func TestGatewayCfg_DefaultsKeepExplicitValues(t *testing.T) {
	cfg := GatewayCfg{
		Enabled:           true,
		RouterSSID:        "attic",
		HeartbeatInterval: 5_000,
		FailureTimeout:    12_000,
	}
	cfg.ApplyDefaults()
	assert.Equal(t, uint32(5_000), cfg.HeartbeatInterval)
	assert.Equal(t, uint32(12_000), cfg.FailureTimeout)
}

func TestGatewayCfg_CanParticipate(t *testing.T) {
	cfg := GatewayCfg{Enabled: true, RouterSSID: "attic"}
	assert.True(t, cfg.CanParticipate())

	cfg.NoElection = true
	assert.False(t, cfg.CanParticipate())

	cfg = GatewayCfg{Enabled: true}
	assert.False(t, cfg.CanParticipate())

	cfg = GatewayCfg{RouterSSID: "attic"}
	assert.False(t, cfg.CanParticipate())
}

func TestLocalCfg_Yaml(t *testing.T) {
	raw := `
id: 12345
time_authority: true
gateway:
  enabled: true
  router_ssid: attic
  router_rssi: -45
  heartbeat_interval: 5000
  failure_timeout: 12000
`
	var cfg LocalCfg
	assert.NoError(t, yaml.Unmarshal([]byte(raw), &cfg))
	assert.Equal(t, NodeId(12345), cfg.Id)
	assert.True(t, cfg.TimeAuthority)
	assert.True(t, cfg.Gateway.Enabled)
	assert.Equal(t, "attic", cfg.Gateway.RouterSSID)
	assert.Equal(t, int8(-45), cfg.Gateway.RouterRSSI)

	cfg.Gateway.ApplyDefaults()
	assert.NoError(t, NodeConfigValidator(&cfg))
}

func TestCentralCfg_GetPeers(t *testing.T) {
	cfg := CentralCfg{
		Nodes: []NodeCfg{{Id: 1}, {Id: 2}, {Id: 3}},
		Edges: []Pair[NodeId, NodeId]{{1, 2}, {2, 3}},
	}
	assert.NoError(t, CentralConfigValidator(&cfg))
	assert.ElementsMatch(t, []NodeId{1, 3}, cfg.GetPeers(2))
	assert.ElementsMatch(t, []NodeId{2}, cfg.GetPeers(1))
	assert.Empty(t, cfg.GetPeers(99))
}
