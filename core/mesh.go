package core

import (
	"github.com/embermesh/embermesh/perf"
	"github.com/embermesh/embermesh/state"
)

// Mesh maintains this node's view of its segment: the spanning tree it
// belongs to and the set of live radio links. When a new link joins two
// previously separate segments, both endpoints run the same adopt decision
// over the exchanged trees and re-parent accordingly, so the merged tree is
// identical on both sides without a negotiation round.
type Mesh struct {
	env   *state.Env
	tree  *state.TopologyNode
	links map[state.NodeId]struct{}

	onMerge func(root state.NodeId)
}

func (m *Mesh) Init(s *state.State) error {
	m.env = s.Env
	m.links = make(map[state.NodeId]struct{})
	m.resetTree(s)

	s.Env.RepeatTask(func(s *state.State) error {
		mesh := Get[*Mesh](s)
		if mesh.HasLinks() {
			mesh.announce(s)
		}
		return nil
	}, state.TopologyAnnounceDelay)
	return nil
}

func (m *Mesh) Cleanup(s *state.State) error {
	return nil
}

// OnMerge registers the single optional callback invoked with the segment
// root after every successful merge.
func (m *Mesh) OnMerge(cb func(root state.NodeId)) {
	m.onMerge = cb
}

func (m *Mesh) announce(s *state.State) {
	if s.Env.Transport == nil {
		return
	}
	s.Env.Transport.BroadcastTopology(state.TopologyExchange{
		From: s.Id,
		Tree: m.tree.Clone(),
	})
}

// HandleLinkUp records a new physical link and announces the local segment
// tree so the peer can run the merge decision.
func (m *Mesh) HandleLinkUp(s *state.State, peer state.NodeId) {
	if _, ok := m.links[peer]; ok {
		return
	}
	m.links[peer] = struct{}{}
	s.Log.Info("link up", "peer", peer)
	m.announce(s)
}

// HandleLinkDown drops the link and resets the segment view to this node
// alone. The tree is rebuilt from scratch through subsequent exchanges, which
// is cheaper and safer than surgically removing an unreachable subtree.
func (m *Mesh) HandleLinkDown(s *state.State, peer state.NodeId) {
	if _, ok := m.links[peer]; !ok {
		return
	}
	delete(m.links, peer)
	s.Log.Info("link down", "peer", peer)
	m.resetTree(s)
	if len(m.links) != 0 {
		m.announce(s)
	}
}

// HandleTopologyExchange merges the sender's announced segment tree into the
// local view.
func (m *Mesh) HandleTopologyExchange(s *state.State, tx state.TopologyExchange) {
	if tx.Tree == nil || tx.From == s.Id {
		return
	}
	m.links[tx.From] = struct{}{}

	remote := tx.Tree
	if remote.Id == m.tree.Id {
		// same segment; a strictly larger view from the shared root is
		// newer, as long as it still counts this node
		if remote.Size() > m.tree.Size() && remote.ContainsNode(s.Id) {
			m.tree = remote.Clone()
		}
		return
	}

	if remote.ContainsNode(s.Id) {
		// a foreign-rooted view that counts this node is a newer picture of
		// a segment this node was merged into, typically heard after a local
		// reset. When both sides hold views containing each other, the adopt
		// decision picks one survivor so the two views cannot swap forever.
		if m.tree.ContainsNode(tx.From) && !Adopt(m.tree, remote) {
			return
		}
		m.tree = remote.Clone()
		s.Log.Info("rejoined segment", "root", m.tree.Id, "via", tx.From, "size", m.tree.Size())
		m.merged(s)
		return
	}

	if m.tree.ContainsNode(tx.From) {
		// the sender re-rooted without this node; its old placement here is
		// stale and must not survive into the merge below
		if tx.From == m.tree.Id {
			m.resetTree(s)
		} else {
			m.tree.RemoveNode(tx.From)
			if !m.tree.ContainsNode(s.Id) {
				m.resetTree(s)
			}
		}
	}

	if Adopt(m.tree, remote) {
		// this segment re-parents under the sender
		merged := remote.Clone()
		attach := merged.FindNode(tx.From)
		if attach == nil {
			s.Log.Warn("sender missing from its own announced tree", "from", tx.From)
			return
		}
		sub := m.tree
		sub.Root = false
		attach.AddChild(sub)
		m.tree = merged
		s.Log.Info("adopted into segment", "root", m.tree.Id, "via", tx.From, "size", m.tree.Size())
	} else {
		// the sender's segment re-parents under this node
		sub := remote.Clone()
		sub.Root = false
		self := m.tree.FindNode(s.Id)
		if self == nil {
			s.Log.Warn("local view lost this node, rebuilding", "root", m.tree.Id)
			m.resetTree(s)
			self = m.tree
		}
		self.AddChild(sub)
		s.Log.Info("segment adopted", "root", m.tree.Id, "joined", remote.Id, "size", m.tree.Size())
	}
	m.merged(s)
}

func (m *Mesh) resetTree(s *state.State) {
	m.tree = state.NewTopologyNode(s.Id, true)
	m.tree.TimeAuthority = s.TimeAuthority
}

func (m *Mesh) merged(s *state.State) {
	perf.TopologyMerges.Add(1)
	m.announce(s)
	if m.onMerge != nil {
		m.onMerge(m.tree.Id)
	}
}

// HasLinks reports whether this node currently hears any mesh peer. An
// isolated node must not claim mesh-wide roles.
func (m *Mesh) HasLinks() bool {
	return len(m.links) != 0
}

// Tree returns a snapshot of the segment tree.
func (m *Mesh) Tree() *state.TopologyNode {
	return m.tree.Clone()
}

// RootId returns the id of the segment root this node currently follows.
func (m *Mesh) RootId() state.NodeId {
	return m.tree.Id
}

// SegmentSize returns the number of nodes in the known segment tree.
func (m *Mesh) SegmentSize() int {
	return m.tree.Size()
}
