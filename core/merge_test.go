package core

import (
	"testing"

	"github.com/embermesh/embermesh/state"
	"github.com/stretchr/testify/assert"
)

func tree(id state.NodeId, childCount int) *state.TopologyNode {
	n := state.NewTopologyNode(id, true)
	for i := 0; i < childCount; i++ {
		n.AddChild(state.NewTopologyNode(id+state.NodeId(i)+1, false))
	}
	return n
}

func TestAdoptTimeAuthorityWins(t *testing.T) {
	a := tree(100, 5)
	b := tree(200, 0)
	b.TimeAuthority = true

	// authority beats both the size rule and the id rule
	assert.True(t, Adopt(a, b))
	assert.False(t, Adopt(b, a))
}

func TestAdoptFewerChildrenAdopts(t *testing.T) {
	a := tree(900, 1)
	b := tree(100, 3)

	assert.True(t, Adopt(a, b))
	assert.False(t, Adopt(b, a))
}

func TestAdoptComparesDirectChildrenNotSubtreeSize(t *testing.T) {
	// a has one direct child carrying a large subtree, b has two leaves
	a := tree(900, 1)
	sub := a.Children[0]
	for i := 0; i < 10; i++ {
		sub.AddChild(state.NewTopologyNode(state.NodeId(5000+i), false))
	}
	b := tree(100, 2)

	assert.Greater(t, a.Size(), b.Size())
	assert.True(t, Adopt(a, b))
}

func TestAdoptLowerIdAdopts(t *testing.T) {
	a := tree(100, 2)
	b := tree(200, 2)

	assert.True(t, Adopt(a, b))
	assert.False(t, Adopt(b, a))
}

func TestAdoptIsAntisymmetric(t *testing.T) {
	cases := []struct {
		a, b *state.TopologyNode
	}{
		{tree(1, 0), tree(2, 0)},
		{tree(7, 3), tree(9, 1)},
		{tree(3, 2), tree(4, 2)},
	}
	cases[0].b.TimeAuthority = true
	for _, c := range cases {
		assert.NotEqual(t, Adopt(c.a, c.b), Adopt(c.b, c.a))
	}
}

func TestAdoptEqualRootsNeverAdopt(t *testing.T) {
	a := tree(42, 1)
	b := tree(42, 1)

	assert.False(t, Adopt(a, b))
	assert.False(t, Adopt(b, a))
}
