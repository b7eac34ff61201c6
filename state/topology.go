package state

import "slices"

// TopologyNode is one node of a mesh segment's known spanning tree. Children
// are exclusively owned by their parent; the structure is strictly tree
// shaped with no back-edges.
type TopologyNode struct {
	Id NodeId `json:"nodeId"`
	// Root marks the segment's logical top node, which is not necessarily
	// the gateway.
	Root bool `json:"root,omitempty"`
	// TimeAuthority marks a node whose clock is externally verified, used to
	// arbitrate topology merges.
	TimeAuthority bool            `json:"hasTimeAuthority,omitempty"`
	Children      []*TopologyNode `json:"subs,omitempty"`
}

func NewTopologyNode(id NodeId, root bool) *TopologyNode {
	return &TopologyNode{
		Id:   id,
		Root: root,
	}
}

func (n *TopologyNode) AddChild(child *TopologyNode) {
	n.Children = append(n.Children, child)
}

// DirectChildren returns the number of immediate children. The merge rule
// compares this, not the recursive subtree size, to stay O(1).
func (n *TopologyNode) DirectChildren() int {
	return len(n.Children)
}

// Size returns the recursive node count including n itself.
func (n *TopologyNode) Size() int {
	size := 1
	for _, child := range n.Children {
		size += child.Size()
	}
	return size
}

func (n *TopologyNode) ContainsNode(id NodeId) bool {
	if n.Id == id {
		return true
	}
	for _, child := range n.Children {
		if child.ContainsNode(id) {
			return true
		}
	}
	return false
}

// FindNode returns the node with the given id anywhere in the subtree, nil
// if absent.
func (n *TopologyNode) FindNode(id NodeId) *TopologyNode {
	if n.Id == id {
		return n
	}
	for _, child := range n.Children {
		if found := child.FindNode(id); found != nil {
			return found
		}
	}
	return nil
}

// Clone returns a deep copy sharing no nodes with the original.
func (n *TopologyNode) Clone() *TopologyNode {
	cp := &TopologyNode{
		Id:            n.Id,
		Root:          n.Root,
		TimeAuthority: n.TimeAuthority,
	}
	for _, child := range n.Children {
		cp.Children = append(cp.Children, child.Clone())
	}
	return cp
}

// RemoveNode removes the node with the given id together with its subtree.
// The tree's own root cannot be removed; callers reset instead.
func (n *TopologyNode) RemoveNode(id NodeId) bool {
	for i, child := range n.Children {
		if child.Id == id {
			n.Children = slices.Delete(n.Children, i, i+1)
			return true
		}
		if child.RemoveNode(id) {
			return true
		}
	}
	return false
}

// Walk visits n and every descendant in depth-first order.
func (n *TopologyNode) Walk(visit func(node *TopologyNode)) {
	visit(n)
	for _, child := range n.Children {
		child.Walk(visit)
	}
}

// Equals compares id, root flag, time authority and children recursively.
func (n *TopologyNode) Equals(o *TopologyNode) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.Id != o.Id || n.Root != o.Root || n.TimeAuthority != o.TimeAuthority {
		return false
	}
	if len(n.Children) != len(o.Children) {
		return false
	}
	for i, child := range n.Children {
		if !child.Equals(o.Children[i]) {
			return false
		}
	}
	return true
}

// Reset restores the node to its post-disconnect defaults, dropping the
// subtree and all flags except the id.
func (n *TopologyNode) Reset() {
	n.Root = false
	n.TimeAuthority = false
	n.Children = nil
}
