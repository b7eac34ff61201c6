package state

// Deserialized control messages exchanged over the mesh. Framing, routing
// and retry live in the transport; these arrive as discrete calls carrying
// already-decoded data. The JSON field names are the wire names.

// Heartbeat is the periodic gateway announcement flooded through the mesh.
// A node claiming IsPrimary asserts it is the current Internet gateway.
type Heartbeat struct {
	From        NodeId `json:"from"`
	IsPrimary   bool   `json:"isPrimary"`
	HasInternet bool   `json:"hasInternet"`
	RSSI        int8   `json:"routerRSSI"` // dBm to the uplink router, higher is stronger
	Uptime      uint32 `json:"uptime"`
	Timestamp   Millis `json:"timestamp"`
}

// BridgeStatus carries a gateway's full uplink state, broadcast on a slower
// cadence than heartbeats and used to populate the gateway registry.
type BridgeStatus struct {
	NodeId            NodeId `json:"nodeId"`
	InternetConnected bool   `json:"internetConnected"`
	RouterRSSI        int8   `json:"routerRSSI"`
	RouterChannel     uint8  `json:"routerChannel"`
	Uptime            uint32 `json:"uptime"`
	GatewayAddress    string `json:"gatewayIP"`
	Timestamp         Millis `json:"timestamp"`
}

// TopologyExchange is sent when a new physical link forms, carrying the
// sender's view of its own segment so both ends can run the merge decision.
type TopologyExchange struct {
	From NodeId        `json:"from"`
	Tree *TopologyNode `json:"tree"`
}
