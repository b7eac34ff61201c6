package core

import (
	"slices"

	"github.com/embermesh/embermesh/state"
)

// GatewayRecord tracks the last reported uplink state of one gateway node.
type GatewayRecord struct {
	Id          state.NodeId
	HasInternet bool
	RSSI        int8
	Channel     uint8
	Uptime      uint32
	Address     string
	LastSeen    state.Millis
}

// GatewayRegistry is a capacity-bounded table of the gateways a node has
// heard from, giving every node a current best path to Internet without a
// global view. One instance per node, touched only from the dispatch
// goroutine; "now" is caller-supplied throughout.
type GatewayRegistry struct {
	capacity      int
	healthTimeout uint32 // ms
	records       []GatewayRecord

	onChanged func(old, new state.NodeId)
	onStatus  func(id state.NodeId, hasInternet bool)
}

func NewGatewayRegistry(capacity int, healthTimeout uint32) *GatewayRegistry {
	return &GatewayRegistry{
		capacity:      capacity,
		healthTimeout: healthTimeout,
	}
}

// OnGatewayChanged registers the single optional callback fired exactly when
// BestGateway's value changes as a side effect of UpdateGateway. 0 stands
// for "none".
func (r *GatewayRegistry) OnGatewayChanged(cb func(old, new state.NodeId)) {
	r.onChanged = cb
}

// OnStatusChanged registers the single optional callback fired when a
// tracked gateway's Internet connectivity flips, including its first report.
func (r *GatewayRegistry) OnStatusChanged(cb func(id state.NodeId, hasInternet bool)) {
	r.onStatus = cb
}

func (r *GatewayRegistry) healthy(rec *GatewayRecord, now state.Millis) bool {
	return state.Fresh(now, rec.LastSeen, r.healthTimeout)
}

func (r *GatewayRegistry) find(id state.NodeId) *GatewayRecord {
	idx := slices.IndexFunc(r.records, func(rec GatewayRecord) bool {
		return rec.Id == id
	})
	if idx == -1 {
		return nil
	}
	return &r.records[idx]
}

// UpdateGateway inserts or refreshes a gateway record. At capacity, stale
// records are dropped first; if the table is still full the lowest-rssi
// record is evicted. Refreshing a known id is never an error, and overflow
// is handled by eviction, never rejection.
func (r *GatewayRegistry) UpdateGateway(id state.NodeId, hasInternet bool, rssi int8, channel uint8, uptime uint32, address string, now state.Millis) {
	oldBest, _ := r.BestGateway(now)

	rec := r.find(id)
	wasConnected := false
	if rec == nil {
		if len(r.records) >= r.capacity {
			r.Cleanup(now)
		}
		if len(r.records) >= r.capacity {
			worst := 0
			for i := range r.records {
				if r.records[i].RSSI < r.records[worst].RSSI {
					worst = i
				}
			}
			r.records = slices.Delete(r.records, worst, worst+1)
		}
		r.records = append(r.records, GatewayRecord{Id: id})
		rec = &r.records[len(r.records)-1]
	} else {
		wasConnected = rec.HasInternet
	}

	rec.HasInternet = hasInternet
	rec.RSSI = rssi
	rec.Channel = channel
	rec.Uptime = uptime
	rec.Address = address
	rec.LastSeen = now

	newBest, _ := r.BestGateway(now)
	if oldBest != newBest && r.onChanged != nil {
		r.onChanged(oldBest, newBest)
	}
	if wasConnected != hasInternet && r.onStatus != nil {
		r.onStatus(id, hasInternet)
	}
}

// BestGateway returns the healthy, Internet-capable gateway with the
// strongest rssi, or false if no record qualifies.
func (r *GatewayRegistry) BestGateway(now state.Millis) (state.NodeId, bool) {
	var best *GatewayRecord
	for i := range r.records {
		rec := &r.records[i]
		if !rec.HasInternet || !r.healthy(rec, now) {
			continue
		}
		if best == nil || rec.RSSI > best.RSSI {
			best = rec
		}
	}
	if best == nil {
		return 0, false
	}
	return best.Id, true
}

// IsPrimary reports whether id is the current best gateway.
func (r *GatewayRegistry) IsPrimary(id state.NodeId, now state.Millis) bool {
	best, ok := r.BestGateway(now)
	return ok && best == id
}

// AllGateways returns all healthy, Internet-capable records, unordered.
func (r *GatewayRegistry) AllGateways(now state.Millis) []GatewayRecord {
	out := make([]GatewayRecord, 0, len(r.records))
	for i := range r.records {
		rec := &r.records[i]
		if rec.HasInternet && r.healthy(rec, now) {
			out = append(out, *rec)
		}
	}
	return out
}

// NodesWithInternet returns the ids of all healthy gateways with Internet.
func (r *GatewayRegistry) NodesWithInternet(now state.Millis) []state.NodeId {
	out := make([]state.NodeId, 0, len(r.records))
	for i := range r.records {
		rec := &r.records[i]
		if rec.HasInternet && r.healthy(rec, now) {
			out = append(out, rec.Id)
		}
	}
	return out
}

// Count returns the number of healthy, Internet-capable records.
func (r *GatewayRegistry) Count(now state.Millis) int {
	n := 0
	for i := range r.records {
		if r.records[i].HasInternet && r.healthy(&r.records[i], now) {
			n++
		}
	}
	return n
}

// CountTotal returns the number of tracked records regardless of health.
func (r *GatewayRegistry) CountTotal() int {
	return len(r.records)
}

// Cleanup drops records that have gone stale, so a silently-vanished gateway
// is forgotten within one health timeout window.
func (r *GatewayRegistry) Cleanup(now state.Millis) {
	r.records = slices.DeleteFunc(r.records, func(rec GatewayRecord) bool {
		return !state.Fresh(now, rec.LastSeen, r.healthTimeout)
	})
}

// HasInternetConnection reports whether any known gateway offers Internet.
// While mesh-connected it requires a fresh record; while isolated it falls
// back to the last known state, since the absence of updates may only mean
// we cannot hear them.
func (r *GatewayRegistry) HasInternetConnection(now state.Millis, meshConnected bool) bool {
	for i := range r.records {
		rec := &r.records[i]
		usable := rec.HasInternet
		if meshConnected {
			usable = usable && r.healthy(rec, now)
		}
		if usable {
			return true
		}
	}
	return false
}

// LastKnownGateway returns the strongest Internet-capable record regardless
// of staleness: possibly unreachable, but the last known good configuration.
func (r *GatewayRegistry) LastKnownGateway() (GatewayRecord, bool) {
	var best *GatewayRecord
	for i := range r.records {
		rec := &r.records[i]
		if !rec.HasInternet {
			continue
		}
		if best == nil || rec.RSSI > best.RSSI {
			best = rec
		}
	}
	if best == nil {
		return GatewayRecord{}, false
	}
	return *best, true
}
