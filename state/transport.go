package state

// Transport is the seam between the coordination core and the radio layer.
// Implementations flood the message to every reachable mesh node; delivery is
// best-effort and duplicates are expected, receivers deduplicate. The mock
// fabric provides an in-process implementation for tests and simulation.
type Transport interface {
	BroadcastHeartbeat(hb Heartbeat)
	BroadcastBridgeStatus(bs BridgeStatus)
	BroadcastTopology(tx TopologyExchange)
}
