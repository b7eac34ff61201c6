package core

import (
	"github.com/embermesh/embermesh/state"
)

type ElectionState int

const (
	// Idle nodes are not electing but still observe heartbeats to learn the
	// current primary.
	Idle ElectionState = iota
	// ElectionRunning nodes are collecting candidates and comparing
	// themselves against them.
	ElectionRunning
	// Cooldown suppresses re-election for a configured period after a
	// conclusion.
	Cooldown
)

func (s ElectionState) String() string {
	switch s {
	case Idle:
		return "idle"
	case ElectionRunning:
		return "running"
	case Cooldown:
		return "cooldown"
	}
	return "unknown"
}

// GatewayCandidate is one eligible contender for the gateway role, held only
// for the duration of a single election cycle.
type GatewayCandidate struct {
	Id          state.NodeId
	HasInternet bool
	RSSI        int8
}

// GatewayElection is the per-node leader election state machine for the
// Internet-gateway role. It never probes radio or uplink state itself: the
// local candidacy is supplied by the owner, "now" is supplied on every call,
// and no operation blocks or performs I/O, so every decision is replayable
// against a synthetic clock.
//
// The RSSI-then-nodeId total order gives every node the same winner from the
// same candidate set with no negotiation round; deferring to a stronger
// already-claimed primary keeps a mid-election node from minting a second
// simultaneous primary.
type GatewayElection struct {
	id               state.NodeId
	localInternet    bool
	localRSSI        int8
	electionDuration uint32 // ms; 0 decides on the next Update
	cooldownPeriod   uint32 // ms

	st            ElectionState
	electionStart state.Millis
	cooldownStart state.Millis
	primary       state.NodeId
	elected       bool
	candidates    map[state.NodeId]GatewayCandidate

	onResult func(winner state.NodeId, isLocal bool)
}

func NewGatewayElection(id state.NodeId, electionDuration, cooldownPeriod uint32) *GatewayElection {
	return &GatewayElection{
		id:               id,
		electionDuration: electionDuration,
		cooldownPeriod:   cooldownPeriod,
		candidates:       make(map[state.NodeId]GatewayCandidate),
	}
}

// SetLocalCandidate supplies this node's candidacy, as measured by the
// platform uplink probe. A node without Internet still participates in
// elections as a listener but can never win.
func (e *GatewayElection) SetLocalCandidate(hasInternet bool, rssi int8) {
	e.localInternet = hasInternet
	e.localRSSI = rssi
}

// OnElectionResult registers the single optional conclusion callback,
// invoked synchronously from Update with (winnerId, isLocal).
func (e *GatewayElection) OnElectionResult(cb func(winner state.NodeId, isLocal bool)) {
	e.onResult = cb
}

// StartElection opens a candidate collection window. It is a no-op during
// Cooldown; only Update observing the cooldown expiry makes elections
// effective again.
func (e *GatewayElection) StartElection(now state.Millis) {
	if e.st == Cooldown {
		return
	}
	clear(e.candidates)
	if e.localInternet {
		e.candidates[e.id] = GatewayCandidate{
			Id:          e.id,
			HasInternet: true,
			RSSI:        e.localRSSI,
		}
	}
	e.st = ElectionRunning
	e.electionStart = now
	e.elected = false
}

// ProcessHeartbeat feeds one deserialized heartbeat into the state machine.
// Heartbeats are processed strictly in caller-supplied order.
func (e *GatewayElection) ProcessHeartbeat(hb state.Heartbeat, now state.Millis) {
	if hb.IsPrimary {
		// An authoritative claim. While running, a strictly stronger claim
		// aborts the local election so the mesh never grows a second
		// simultaneous primary; an equal-or-weaker claim is ignored and the
		// election keeps running.
		if e.st == ElectionRunning {
			if hb.RSSI > e.localRSSI {
				e.primary = hb.From
				e.elected = false
				e.st = Cooldown
				e.cooldownStart = now
			}
			return
		}
		e.primary = hb.From
		return
	}
	if hb.HasInternet {
		// candidate for the pending decision; refreshed on every heartbeat
		e.candidates[hb.From] = GatewayCandidate{
			Id:          hb.From,
			HasInternet: true,
			RSSI:        hb.RSSI,
		}
	}
	// neither primary nor Internet-capable: recorded nowhere
}

// Update advances the state machine. It concludes a running election once
// the collection window has elapsed and reports whether this node should
// broadcast a primary claim this cycle. It also retires an expired cooldown
// back to Idle.
func (e *GatewayElection) Update(now state.Millis) bool {
	switch e.st {
	case Cooldown:
		if state.Elapsed(now, e.cooldownStart, e.cooldownPeriod) {
			e.st = Idle
		}
		return false
	case ElectionRunning:
		if !state.Elapsed(now, e.electionStart, e.electionDuration) {
			return false
		}
	default:
		return false
	}

	// winner = argmax(rssi), ties broken by argmax(nodeId)
	var winner *GatewayCandidate
	for id := range e.candidates {
		c := e.candidates[id]
		if winner == nil || c.RSSI > winner.RSSI ||
			(c.RSSI == winner.RSSI && c.Id > winner.Id) {
			winner = &c
		}
	}

	if winner == nil {
		// an empty candidate set is a defined outcome, not an error
		e.primary = 0
		e.elected = false
	} else {
		e.primary = winner.Id
		e.elected = winner.Id == e.id
	}
	if e.onResult != nil {
		e.onResult(e.primary, e.elected)
	}
	e.st = Cooldown
	e.cooldownStart = now
	return e.elected
}

// Reset forces the machine back to Idle and clears all election state.
// Configuration, including the local candidacy, is untouched.
func (e *GatewayElection) Reset() {
	e.st = Idle
	e.primary = 0
	e.elected = false
	clear(e.candidates)
}

func (e *GatewayElection) State() ElectionState {
	return e.st
}

// PrimaryGatewayId returns the last known primary, 0 if none.
func (e *GatewayElection) PrimaryGatewayId() state.NodeId {
	return e.primary
}

func (e *GatewayElection) IsElectedPrimary() bool {
	return e.elected
}

func (e *GatewayElection) CandidateCount() int {
	return len(e.candidates)
}
