package state

import (
	"fmt"
	"slices"
)

func NodeConfigValidator(node *LocalCfg) error {
	if node.Id == 0 {
		return fmt.Errorf("node.Id must be non-zero")
	}
	return GatewayConfigValidator(&node.Gateway)
}

// GatewayConfigValidator checks a gateway section after defaults have been
// applied. A disabled section is always valid.
func GatewayConfigValidator(cfg *GatewayCfg) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.RouterSSID == "" {
		return fmt.Errorf("gateway.router_ssid is required when enabled")
	}
	if len(cfg.RouterSSID) > 32 {
		return fmt.Errorf("gateway.router_ssid exceeds maximum length of 32 characters")
	}
	if len(cfg.RouterPassword) > 63 {
		return fmt.Errorf("gateway.router_password exceeds maximum length of 63 characters")
	}
	if cfg.InternetCheckHost == "" {
		return fmt.Errorf("gateway.internet_check_host must not be empty")
	}
	if cfg.InternetCheckInterval < 1000 {
		return fmt.Errorf("gateway.internet_check_interval must be at least 1000ms")
	}
	if cfg.InternetCheckTimeout < 100 {
		return fmt.Errorf("gateway.internet_check_timeout must be at least 100ms")
	}
	if cfg.InternetCheckTimeout >= cfg.InternetCheckInterval {
		return fmt.Errorf("gateway.internet_check_timeout must be less than internet_check_interval")
	}
	if cfg.HeartbeatInterval < 1000 {
		return fmt.Errorf("gateway.heartbeat_interval must be at least 1000ms")
	}
	if cfg.FailureTimeout < cfg.HeartbeatInterval*2 {
		return fmt.Errorf("gateway.failure_timeout must be at least 2x heartbeat_interval")
	}
	if cfg.ElectionDelayMax <= cfg.ElectionDelayMin {
		return fmt.Errorf("gateway.election_delay_max must be greater than election_delay_min")
	}
	return nil
}

func CentralConfigValidator(cfg *CentralCfg) error {
	seen := make(map[NodeId]struct{})
	for _, node := range cfg.Nodes {
		if node.Id == 0 {
			return fmt.Errorf("node id must be non-zero")
		}
		if _, ok := seen[node.Id]; ok {
			return fmt.Errorf("duplicate node id: %d", node.Id)
		}
		seen[node.Id] = struct{}{}
	}
	nodeRel := make([]Pair[NodeId, NodeId], 0)
	for _, edge := range cfg.Edges {
		if edge.V1 == edge.V2 {
			return fmt.Errorf("self edge found: %d", edge.V1)
		}
		if slices.Contains(nodeRel, edge) {
			return fmt.Errorf("duplicate edge found: %d, %d", edge.V1, edge.V2)
		}
		if !cfg.IsNode(edge.V1) {
			return fmt.Errorf("node %d not defined", edge.V1)
		}
		if !cfg.IsNode(edge.V2) {
			return fmt.Errorf("node %d not defined", edge.V2)
		}
		nodeRel = append(nodeRel, edge)
		nodeRel = append(nodeRel, Pair[NodeId, NodeId]{edge.V2, edge.V1})
	}
	return nil
}
