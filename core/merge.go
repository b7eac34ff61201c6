package core

import (
	"github.com/embermesh/embermesh/state"
)

// Adopt decides whether segment a should re-parent itself under segment b
// when their roots become directly linked. It is pure and deterministic:
// both endpoints evaluate it independently from the same two snapshots, and
// for distinct roots Adopt(a, b) == !Adopt(b, a), so the link converges
// without a negotiation round.
//
// Decision order, first applicable rule wins:
//  1. exactly one side has time authority: the side without authority adopts
//  2. fewer direct children adopts more (direct count, not subtree size)
//  3. the lower-id root adopts, the higher-id root becomes parent
//
// Equal root ids cannot occur with mesh-wide unique ids; if they do, a never
// adopts, so two misconfigured twins both stay put instead of re-parenting
// into a loop.
func Adopt(a, b *state.TopologyNode) bool {
	if a.TimeAuthority != b.TimeAuthority {
		return b.TimeAuthority
	}
	if a.DirectChildren() != b.DirectChildren() {
		return a.DirectChildren() < b.DirectChildren()
	}
	return a.Id < b.Id
}
