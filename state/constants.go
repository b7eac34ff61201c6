package state

import "time"

var (
	// MaxKnownGateways bounds the per-node gateway registry. Chosen to keep
	// the table affordable on the smallest targeted devices.
	MaxKnownGateways = 20

	// GatewayHealthTimeout is how long a registry record stays healthy
	// without a status refresh, in milliseconds.
	GatewayHealthTimeout = uint32(60_000)

	// HeartbeatInterval is the gateway announcement cadence, in milliseconds.
	HeartbeatInterval = uint32(15_000)

	// GatewayFailureTimeout is how long the mesh waits without any healthy
	// gateway heartbeat before considering an election. Must be at least
	// twice HeartbeatInterval.
	GatewayFailureTimeout = uint32(45_000)

	// ElectionDuration is the candidate collection window, in milliseconds.
	// Zero decides on the next tick.
	ElectionDuration = uint32(5_000)

	// CooldownPeriod suppresses re-election after a conclusion, in
	// milliseconds.
	CooldownPeriod = uint32(30_000)

	// ElectionStartupDelay holds off the first election consideration while
	// the mesh is still forming, in milliseconds.
	ElectionStartupDelay = uint32(30_000)

	// ElectionRandomDelayMin/Max bound the randomized wait before starting
	// an election, so nodes that detect a dead gateway together don't all
	// start at the same instant.
	ElectionRandomDelayMin = uint32(500)
	ElectionRandomDelayMax = uint32(3_000)

	// uplink check defaults
	InternetCheckInterval = uint32(30_000)
	InternetCheckTimeout  = uint32(5_000)
	InternetCheckHost     = "8.8.8.8"
	InternetCheckFailures = 3

	// BridgeStatusInterval is the full uplink-state announcement cadence, in
	// milliseconds. Slower than heartbeats since the payload is larger.
	BridgeStatusInterval = uint32(30_000)

	// MessageDedupTTL is how long flooded message ids are remembered.
	MessageDedupTTL = time.Second * 60

	// GatewayTickDelay drives the election/cooldown state machine and the
	// heartbeat schedule.
	GatewayTickDelay = time.Millisecond * 500

	// TopologyAnnounceDelay paces re-announcements of the local subtree.
	TopologyAnnounceDelay = time.Second * 10
)
