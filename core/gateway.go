package core

import (
	"github.com/embermesh/embermesh/perf"
	"github.com/embermesh/embermesh/state"
	"github.com/jellydator/ttlcache/v3"
)

type dedupKey struct {
	from state.NodeId
	ts   state.Millis
}

// Gateway owns the shared-gateway machinery on one node: the election state
// machine, the registry of known gateways, the uplink probe and the periodic
// announcement schedule. All mutation happens on the dispatch goroutine; the
// uplink probe runs on its own goroutine and is read through atomics.
type Gateway struct {
	env *state.Env
	cfg state.GatewayCfg

	// Uplink may be injected before Init; the simulator supplies a
	// StaticUplink here. Left nil, Init builds the configured probe.
	Uplink Uplink

	election *GatewayElection
	registry *GatewayRegistry
	dedup    *ttlcache.Cache[dedupKey, struct{}]

	startTime       state.Millis
	lastHeartbeat   state.Millis
	lastStatus      state.Millis
	lastPrimarySeen state.Millis
	sawPrimary      bool
	electionPending bool
}

func (g *Gateway) Init(s *state.State) error {
	g.env = s.Env
	g.cfg = s.Gateway
	g.cfg.ApplyDefaults()

	g.election = NewGatewayElection(s.Id, g.cfg.ElectionDuration, g.cfg.CooldownPeriod)
	g.registry = NewGatewayRegistry(state.MaxKnownGateways, g.cfg.HealthTimeout)

	g.election.OnElectionResult(func(winner state.NodeId, isLocal bool) {
		if isLocal {
			perf.ElectionsWon.Add(1)
		}
		s.Log.Info("gateway election concluded", "winner", winner, "local", isLocal)
	})
	g.registry.OnGatewayChanged(func(old, new state.NodeId) {
		perf.GatewayChanges.Add(1)
		s.Log.Info("primary gateway changed", "old", old, "new", new)
	})
	g.registry.OnStatusChanged(func(id state.NodeId, hasInternet bool) {
		s.Log.Info("gateway uplink changed", "node", id, "hasInternet", hasInternet)
	})

	g.dedup = ttlcache.New[dedupKey, struct{}](
		ttlcache.WithTTL[dedupKey, struct{}](state.MessageDedupTTL),
		ttlcache.WithDisableTouchOnHit[dedupKey, struct{}](),
	)
	go g.dedup.Start()

	if g.Uplink == nil && g.cfg.Enabled {
		g.Uplink = NewUplink(g.cfg)
	}
	if g.Uplink != nil {
		g.Uplink.Start(s.Log)
	}

	now := s.Now()
	g.startTime = now
	// backdate so the first announcement goes out on the first tick
	g.lastHeartbeat = now - state.Millis(g.cfg.HeartbeatInterval)
	g.lastStatus = now - state.Millis(state.BridgeStatusInterval)

	s.Env.RepeatTask(gatewayTick, state.GatewayTickDelay)
	return nil
}

func (g *Gateway) Cleanup(s *state.State) error {
	if g.Uplink != nil {
		g.Uplink.Stop()
	}
	if g.dedup != nil {
		g.dedup.Stop()
	}
	return nil
}

func gatewayTick(s *state.State) error {
	g := Get[*Gateway](s)
	now := s.Now()

	if g.Uplink != nil {
		g.election.SetLocalCandidate(g.Uplink.HasInternet(), g.Uplink.RSSI())
	}
	if g.election.IsElectedPrimary() && !g.uplinkConnected() {
		s.Log.Warn("uplink lost, relinquishing gateway role")
		g.election.Reset()
		g.broadcastStatus(s, now)
	}
	if g.election.Update(now) {
		// won: claim the role immediately instead of waiting out the cadence
		g.broadcastHeartbeat(s, now, true)
		g.broadcastStatus(s, now)
	}
	g.periodicBroadcasts(s, now)
	g.maybeStartElection(s, now)
	return nil
}

func (g *Gateway) uplinkConnected() bool {
	return g.Uplink != nil && g.Uplink.HasInternet()
}

func (g *Gateway) periodicBroadcasts(s *state.State, now state.Millis) {
	if !g.cfg.Enabled {
		return
	}
	primary := g.election.IsElectedPrimary()
	if !primary && !g.uplinkConnected() {
		return
	}
	if state.Elapsed(now, g.lastHeartbeat, g.cfg.HeartbeatInterval) {
		g.broadcastHeartbeat(s, now, primary)
	}
	if state.Elapsed(now, g.lastStatus, state.BridgeStatusInterval) {
		g.broadcastStatus(s, now)
	}
}

func (g *Gateway) broadcastHeartbeat(s *state.State, now state.Millis, isPrimary bool) {
	if s.Env.Transport == nil {
		return
	}
	rssi := int8(0)
	if g.Uplink != nil {
		rssi = g.Uplink.RSSI()
	}
	s.Env.Transport.BroadcastHeartbeat(state.Heartbeat{
		From:        s.Id,
		IsPrimary:   isPrimary,
		HasInternet: g.uplinkConnected(),
		RSSI:        rssi,
		Uptime:      uint32(state.Since(now, g.startTime)),
		Timestamp:   now,
	})
	g.lastHeartbeat = now
}

func (g *Gateway) broadcastStatus(s *state.State, now state.Millis) {
	if s.Env.Transport == nil {
		return
	}
	rssi := int8(0)
	if g.Uplink != nil {
		rssi = g.Uplink.RSSI()
	}
	connected := g.uplinkConnected()
	s.Env.Transport.BroadcastBridgeStatus(state.BridgeStatus{
		NodeId:            s.Id,
		InternetConnected: connected,
		RouterRSSI:        rssi,
		RouterChannel:     g.cfg.RouterChannel,
		Uptime:            uint32(state.Since(now, g.startTime)),
		GatewayAddress:    g.cfg.RouterAddress,
		Timestamp:         now,
	})
	// the local registry tracks this node like any other gateway
	g.registry.UpdateGateway(s.Id, connected, rssi, g.cfg.RouterChannel,
		uint32(state.Since(now, g.startTime)), g.cfg.RouterAddress, now)
	g.lastStatus = now
}

// primaryAlive reports whether a primary claim has been heard within the
// failure timeout. A live primary suppresses new elections.
func (g *Gateway) primaryAlive(now state.Millis) bool {
	return g.sawPrimary && state.Fresh(now, g.lastPrimarySeen, g.cfg.FailureTimeout)
}

// maybeStartElection schedules an election after a randomized delay once no
// primary claim has been heard within the failure timeout. The random wait
// keeps nodes that notice the failure together from opening overlapping
// windows.
func (g *Gateway) maybeStartElection(s *state.State, now state.Millis) {
	if !g.cfg.CanParticipate() || g.electionPending {
		return
	}
	if g.election.State() != Idle || g.election.IsElectedPrimary() {
		return
	}
	if !state.Elapsed(now, g.startTime, g.cfg.ElectionStartupDelay) {
		return
	}
	if !Get[*Mesh](s).HasLinks() {
		// an isolated node must not elect itself gateway for nobody
		return
	}
	if g.primaryAlive(now) {
		return
	}

	g.electionPending = true
	delay := randomDelay(g.cfg.ElectionDelayMin, g.cfg.ElectionDelayMax)
	s.Log.Info("no healthy gateway, scheduling election", "delay", delay)
	s.Env.ScheduleTask(func(s *state.State) error {
		g := Get[*Gateway](s)
		g.electionPending = false
		now := s.Now()
		if g.election.State() != Idle || g.primaryAlive(now) {
			return nil
		}
		g.election.StartElection(now)
		perf.ElectionsStarted.Add(1)
		// announce candidacy so concurrent electors count this node
		g.broadcastHeartbeat(s, now, false)
		return nil
	}, delay)
}

// HandleHeartbeat processes one received gateway heartbeat. Duplicates from
// the flood are dropped here.
func (g *Gateway) HandleHeartbeat(s *state.State, hb state.Heartbeat) {
	if hb.From == s.Id {
		return
	}
	key := dedupKey{hb.From, hb.Timestamp}
	if g.dedup.Get(key) != nil {
		return
	}
	g.dedup.Set(key, struct{}{}, ttlcache.DefaultTTL)

	now := s.Now()
	perf.HeartbeatsProcessed.Add(1)
	if hb.IsPrimary {
		g.lastPrimarySeen = now
		g.sawPrimary = true
	}

	// a candidate announcement means someone opened an election; join it so
	// both sides decide over the same candidate set
	if !hb.IsPrimary && hb.HasInternet &&
		g.election.State() == Idle && g.cfg.CanParticipate() &&
		state.Elapsed(now, g.startTime, g.cfg.ElectionStartupDelay) &&
		!g.primaryAlive(now) {
		g.election.StartElection(now)
		perf.ElectionsStarted.Add(1)
		g.broadcastHeartbeat(s, now, false)
	}

	g.election.ProcessHeartbeat(hb, now)
}

// HandleBridgeStatus folds one received uplink-state announcement into the
// gateway registry.
func (g *Gateway) HandleBridgeStatus(s *state.State, bs state.BridgeStatus) {
	if bs.NodeId == s.Id {
		return
	}
	key := dedupKey{bs.NodeId, bs.Timestamp}
	if g.dedup.Get(key) != nil {
		return
	}
	g.dedup.Set(key, struct{}{}, ttlcache.DefaultTTL)

	g.registry.UpdateGateway(bs.NodeId, bs.InternetConnected, bs.RouterRSSI,
		bs.RouterChannel, bs.Uptime, bs.GatewayAddress, s.Now())
}

// PrimaryGateway returns the best healthy gateway currently known.
func (g *Gateway) PrimaryGateway(now state.Millis) (state.NodeId, bool) {
	return g.registry.BestGateway(now)
}

// HasInternetConnection reports whether this node can currently reach the
// Internet through the mesh.
func (g *Gateway) HasInternetConnection(s *state.State) bool {
	return g.registry.HasInternetConnection(s.Now(), Get[*Mesh](s).HasLinks())
}

func (g *Gateway) IsElectedPrimary() bool {
	return g.election.IsElectedPrimary()
}

func (g *Gateway) Election() *GatewayElection {
	return g.election
}

func (g *Gateway) Registry() *GatewayRegistry {
	return g.registry
}
