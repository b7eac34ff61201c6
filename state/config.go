package state

import "slices"

// NodeCfg identifies one node in the mesh-wide config.
type NodeCfg struct {
	Id   NodeId
	Name string `yaml:",omitempty"`
}

// CentralCfg is the mesh-wide configuration shared by every node.
type CentralCfg struct {
	Nodes []NodeCfg
	// Edges lists the radio links the mock fabric establishes; on hardware
	// the link set is discovered, not configured.
	Edges     []Pair[NodeId, NodeId] `yaml:",omitempty"`
	Timestamp int64
}

// GatewayCfg configures shared-gateway behaviour for one node. All durations
// are milliseconds. Zero values are filled from the package defaults by
// ApplyDefaults.
type GatewayCfg struct {
	// Enabled gates all gateway behaviour; a disabled node still tracks
	// gateways in its registry but never runs for the role.
	Enabled        bool   `yaml:",omitempty"`
	RouterSSID     string `yaml:"router_ssid,omitempty"`
	RouterPassword string `yaml:"router_password,omitempty"`

	// RouterRSSI is the signal strength to the uplink router as measured by
	// the platform probe; the simulator supplies it statically.
	RouterRSSI    int8   `yaml:"router_rssi,omitempty"`
	RouterChannel uint8  `yaml:"router_channel,omitempty"`
	RouterAddress string `yaml:"router_address,omitempty"`

	// StaticUplink skips live probing and reports the configured RouterRSSI
	// with Internet always reachable. Used by the simulator.
	StaticUplink bool `yaml:"static_uplink,omitempty"`

	InternetCheckInterval uint32 `yaml:"internet_check_interval,omitempty"`
	InternetCheckHost     string `yaml:"internet_check_host,omitempty"`
	InternetCheckTimeout  uint32 `yaml:"internet_check_timeout,omitempty"`

	HeartbeatInterval uint32 `yaml:"heartbeat_interval,omitempty"`
	FailureTimeout    uint32 `yaml:"failure_timeout,omitempty"`
	HealthTimeout     uint32 `yaml:"health_timeout,omitempty"`

	ElectionDuration     uint32 `yaml:"election_duration,omitempty"`
	CooldownPeriod       uint32 `yaml:"cooldown_period,omitempty"`
	ElectionStartupDelay uint32 `yaml:"election_startup_delay,omitempty"`
	ElectionDelayMin     uint32 `yaml:"election_delay_min,omitempty"`
	ElectionDelayMax     uint32 `yaml:"election_delay_max,omitempty"`

	// NoElection opts the node out of gateway elections while still letting
	// it observe heartbeats.
	NoElection bool `yaml:"no_election,omitempty"`
}

// LocalCfg is the node-level configuration.
type LocalCfg struct {
	Id NodeId
	// TimeAuthority marks this node's clock as externally verified (e.g. an
	// attached RTC), giving its segment precedence in topology merges.
	TimeAuthority bool       `yaml:"time_authority,omitempty"`
	LogPath       string     `yaml:"log_path,omitempty"` // if not empty, logs are also written to this file
	Gateway       GatewayCfg `yaml:",omitempty"`
}

// ApplyDefaults fills unset tunables from the package defaults.
func (c *GatewayCfg) ApplyDefaults() {
	if c.InternetCheckInterval == 0 {
		c.InternetCheckInterval = InternetCheckInterval
	}
	if c.InternetCheckHost == "" {
		c.InternetCheckHost = InternetCheckHost
	}
	if c.InternetCheckTimeout == 0 {
		c.InternetCheckTimeout = InternetCheckTimeout
	}
	if c.HeartbeatInterval == 0 {
		c.HeartbeatInterval = HeartbeatInterval
	}
	if c.FailureTimeout == 0 {
		c.FailureTimeout = GatewayFailureTimeout
	}
	if c.HealthTimeout == 0 {
		c.HealthTimeout = GatewayHealthTimeout
	}
	if c.ElectionDuration == 0 {
		c.ElectionDuration = ElectionDuration
	}
	if c.CooldownPeriod == 0 {
		c.CooldownPeriod = CooldownPeriod
	}
	if c.ElectionStartupDelay == 0 {
		c.ElectionStartupDelay = ElectionStartupDelay
	}
	if c.ElectionDelayMin == 0 {
		c.ElectionDelayMin = ElectionRandomDelayMin
	}
	if c.ElectionDelayMax == 0 {
		c.ElectionDelayMax = ElectionRandomDelayMax
	}
}

// CanParticipate reports whether this node may run for the gateway role:
// elections allowed and router credentials configured.
func (c *GatewayCfg) CanParticipate() bool {
	return c.Enabled && !c.NoElection && c.RouterSSID != ""
}

func (c *CentralCfg) IsNode(node NodeId) bool {
	return slices.ContainsFunc(c.Nodes, func(cfg NodeCfg) bool {
		return cfg.Id == node
	})
}

func (c *CentralCfg) TryGetNode(node NodeId) *NodeCfg {
	idx := slices.IndexFunc(c.Nodes, func(cfg NodeCfg) bool {
		return cfg.Id == node
	})
	if idx == -1 {
		return nil
	}
	return &c.Nodes[idx]
}

// GetPeers returns the nodes directly linked to curId in the configured
// link graph.
func (c *CentralCfg) GetPeers(curId NodeId) []NodeId {
	peers := make([]NodeId, 0)
	for _, edge := range c.Edges {
		var neigh NodeId
		if edge.V1 == curId {
			neigh = edge.V2
		} else if edge.V2 == curId {
			neigh = edge.V1
		} else {
			continue
		}
		if !slices.Contains(peers, neigh) {
			peers = append(peers, neigh)
		}
	}
	return peers
}
