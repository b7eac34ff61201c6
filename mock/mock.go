package mock

import (
	"sync"
	"time"

	"github.com/embermesh/embermesh/core"
	"github.com/embermesh/embermesh/state"
)

// Clock is a synthetic millisecond clock shared by every simulated node.
// Wire it into Env.NowFn so timing-sensitive behaviour can be driven
// deterministically from tests.
type Clock struct {
	mu  sync.Mutex
	now state.Millis
}

func NewClock() *Clock {
	return &Clock{}
}

func (c *Clock) Now() state.Millis {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += state.Millis(d / time.Millisecond)
}

// Fabric is an in-process radio fabric connecting simulated nodes. A
// broadcast floods the sender's connected component, mirroring how mesh
// floods propagate hop by hop; nodes outside the component hear nothing.
type Fabric struct {
	mu    sync.Mutex
	nodes map[state.NodeId]*state.Env
	edges map[state.Pair[state.NodeId, state.NodeId]]struct{}
}

func NewFabric() *Fabric {
	return &Fabric{
		nodes: make(map[state.NodeId]*state.Env),
		edges: make(map[state.Pair[state.NodeId, state.NodeId]]struct{}),
	}
}

// Port returns the transport bound to id. Usable before the node is
// registered; broadcasts reach only registered nodes.
func (f *Fabric) Port(id state.NodeId) state.Transport {
	return &port{fabric: f, id: id}
}

// Register makes the node reachable on the fabric.
func (f *Fabric) Register(id state.NodeId, env *state.Env) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nodes[id] = env
}

func edgeKey(a, b state.NodeId) state.Pair[state.NodeId, state.NodeId] {
	if a > b {
		a, b = b, a
	}
	return state.Pair[state.NodeId, state.NodeId]{V1: a, V2: b}
}

// Connect establishes a radio link and raises link-up on both endpoints.
func (f *Fabric) Connect(a, b state.NodeId) {
	f.mu.Lock()
	f.edges[edgeKey(a, b)] = struct{}{}
	ea, eb := f.nodes[a], f.nodes[b]
	f.mu.Unlock()

	if ea != nil {
		ea.Dispatch(func(s *state.State) error {
			core.Get[*core.Mesh](s).HandleLinkUp(s, b)
			return nil
		})
	}
	if eb != nil {
		eb.Dispatch(func(s *state.State) error {
			core.Get[*core.Mesh](s).HandleLinkUp(s, a)
			return nil
		})
	}
}

// Disconnect tears the link down and raises link-down on both endpoints.
func (f *Fabric) Disconnect(a, b state.NodeId) {
	f.mu.Lock()
	delete(f.edges, edgeKey(a, b))
	ea, eb := f.nodes[a], f.nodes[b]
	f.mu.Unlock()

	if ea != nil {
		ea.Dispatch(func(s *state.State) error {
			core.Get[*core.Mesh](s).HandleLinkDown(s, b)
			return nil
		})
	}
	if eb != nil {
		eb.Dispatch(func(s *state.State) error {
			core.Get[*core.Mesh](s).HandleLinkDown(s, a)
			return nil
		})
	}
}

// component returns every node reachable from src over the current links,
// excluding src itself.
func (f *Fabric) component(src state.NodeId) []*state.Env {
	visited := map[state.NodeId]bool{src: true}
	frontier := []state.NodeId{src}
	var out []*state.Env
	for len(frontier) > 0 {
		cur := frontier[0]
		frontier = frontier[1:]
		for edge := range f.edges {
			var next state.NodeId
			if edge.V1 == cur {
				next = edge.V2
			} else if edge.V2 == cur {
				next = edge.V1
			} else {
				continue
			}
			if visited[next] {
				continue
			}
			visited[next] = true
			frontier = append(frontier, next)
			if env := f.nodes[next]; env != nil {
				out = append(out, env)
			}
		}
	}
	return out
}

// neighbors returns the nodes one hop from src.
func (f *Fabric) neighbors(src state.NodeId) []*state.Env {
	var out []*state.Env
	for edge := range f.edges {
		var next state.NodeId
		if edge.V1 == src {
			next = edge.V2
		} else if edge.V2 == src {
			next = edge.V1
		} else {
			continue
		}
		if env := f.nodes[next]; env != nil {
			out = append(out, env)
		}
	}
	return out
}

func (f *Fabric) flood(from state.NodeId, deliver func(s *state.State) error) {
	f.mu.Lock()
	targets := f.component(from)
	f.mu.Unlock()
	for _, env := range targets {
		env.Dispatch(deliver)
	}
}

type port struct {
	fabric *Fabric
	id     state.NodeId
}

func (p *port) BroadcastHeartbeat(hb state.Heartbeat) {
	p.fabric.flood(p.id, func(s *state.State) error {
		core.Get[*core.Gateway](s).HandleHeartbeat(s, hb)
		return nil
	})
}

func (p *port) BroadcastBridgeStatus(bs state.BridgeStatus) {
	p.fabric.flood(p.id, func(s *state.State) error {
		core.Get[*core.Gateway](s).HandleBridgeStatus(s, bs)
		return nil
	})
}

// BroadcastTopology delivers to direct neighbors only; segment trees travel
// link by link, unlike the mesh-wide gateway floods.
func (p *port) BroadcastTopology(tx state.TopologyExchange) {
	p.fabric.mu.Lock()
	targets := p.fabric.neighbors(p.id)
	p.fabric.mu.Unlock()
	for _, env := range targets {
		env.Dispatch(func(s *state.State) error {
			core.Get[*core.Mesh](s).HandleTopologyExchange(s, tx)
			return nil
		})
	}
}

// MockCfg builds a five node test mesh.
func MockCfg() (state.CentralCfg, []state.LocalCfg) {
	names := []string{
		"bob",
		"jeb",
		"kat",
		"eve",
		"ada",
	}
	central := state.CentralCfg{}
	locals := make([]state.LocalCfg, 0, len(names))
	for i, name := range names {
		id := state.NodeId((i + 1) * 10000)
		central.Nodes = append(central.Nodes, state.NodeCfg{Id: id, Name: name})
		locals = append(locals, state.LocalCfg{Id: id})
	}
	central.Edges = []state.Pair[state.NodeId, state.NodeId]{
		{V1: 10000, V2: 20000},
		{V1: 10000, V2: 30000},
		{V1: 10000, V2: 40000},
		{V1: 20000, V2: 30000},
		{V1: 30000, V2: 50000},
		{V1: 30000, V2: 40000},
		{V1: 40000, V2: 50000},
	}
	// bob and kat carry router uplinks; kat has the stronger signal
	locals[0].Gateway = state.GatewayCfg{Enabled: true, RouterSSID: "attic", RouterRSSI: -60, StaticUplink: true}
	locals[2].Gateway = state.GatewayCfg{Enabled: true, RouterSSID: "attic", RouterRSSI: -45, StaticUplink: true}
	locals[0].TimeAuthority = true
	for i := range locals {
		locals[i].Gateway.ApplyDefaults()
	}
	return central, locals
}
