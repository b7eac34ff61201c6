package core

import (
	"testing"

	"github.com/embermesh/embermesh/state"
	"github.com/stretchr/testify/assert"
)

func TestRegistryBestGatewayPicksStrongestHealthy(t *testing.T) {
	r := NewGatewayRegistry(20, 60_000)
	r.UpdateGateway(1, true, -60, 6, 100, "10.0.0.1", 0)
	r.UpdateGateway(2, true, -40, 6, 100, "10.0.0.2", 0)
	r.UpdateGateway(3, false, -10, 6, 100, "10.0.0.3", 0)

	best, ok := r.BestGateway(1_000)
	assert.True(t, ok)
	assert.Equal(t, state.NodeId(2), best)
	assert.True(t, r.IsPrimary(2, 1_000))
	assert.False(t, r.IsPrimary(1, 1_000))
}

func TestRegistryRefreshIsNotAnError(t *testing.T) {
	r := NewGatewayRegistry(20, 60_000)
	r.UpdateGateway(1, true, -60, 6, 100, "10.0.0.1", 0)
	r.UpdateGateway(1, true, -55, 6, 200, "10.0.0.1", 1_000)

	assert.Equal(t, 1, r.CountTotal())
	all := r.AllGateways(1_500)
	assert.Len(t, all, 1)
	assert.Equal(t, int8(-55), all[0].RSSI)
	assert.Equal(t, state.Millis(1_000), all[0].LastSeen)
}

func TestRegistryHealthExpiry(t *testing.T) {
	r := NewGatewayRegistry(20, 60_000)
	r.UpdateGateway(1, true, -60, 6, 100, "10.0.0.1", 0)

	_, ok := r.BestGateway(59_999)
	assert.True(t, ok)
	_, ok = r.BestGateway(60_000)
	assert.False(t, ok)
	assert.Equal(t, 0, r.Count(60_000))
	assert.Equal(t, 1, r.CountTotal())

	r.Cleanup(60_000)
	assert.Equal(t, 0, r.CountTotal())
}

func TestRegistryEvictsWorstRSSIAtCapacity(t *testing.T) {
	r := NewGatewayRegistry(3, 60_000)
	r.UpdateGateway(1, true, -80, 6, 100, "", 0)
	r.UpdateGateway(2, true, -40, 6, 100, "", 0)
	r.UpdateGateway(3, true, -60, 6, 100, "", 0)

	// table full and everything fresh; the weakest record makes room
	r.UpdateGateway(4, true, -50, 6, 100, "", 1_000)
	assert.Equal(t, 3, r.CountTotal())
	assert.ElementsMatch(t, []state.NodeId{2, 3, 4}, r.NodesWithInternet(1_000))
}

func TestRegistryDropsStaleBeforeEvicting(t *testing.T) {
	r := NewGatewayRegistry(3, 60_000)
	r.UpdateGateway(1, true, -80, 6, 100, "", 0)
	r.UpdateGateway(2, true, -40, 6, 100, "", 70_000)
	r.UpdateGateway(3, true, -60, 6, 100, "", 70_000)

	// node 1 went stale; it is dropped instead of the weakest fresh record
	r.UpdateGateway(4, true, -90, 6, 100, "", 70_000)
	assert.ElementsMatch(t, []state.NodeId{2, 3, 4}, r.NodesWithInternet(70_000))
}

func TestRegistryGatewayChangedCallback(t *testing.T) {
	r := NewGatewayRegistry(20, 60_000)
	var changes []state.Pair[state.NodeId, state.NodeId]
	r.OnGatewayChanged(func(old, new state.NodeId) {
		changes = append(changes, state.Pair[state.NodeId, state.NodeId]{V1: old, V2: new})
	})

	r.UpdateGateway(1, true, -60, 6, 100, "", 0)
	r.UpdateGateway(2, true, -40, 6, 100, "", 0)
	// refreshing the current best is not a change
	r.UpdateGateway(2, true, -40, 6, 200, "", 1_000)
	// losing Internet hands the role back to node 1
	r.UpdateGateway(2, false, -40, 6, 300, "", 2_000)

	assert.Equal(t, []state.Pair[state.NodeId, state.NodeId]{
		{V1: 0, V2: 1},
		{V1: 1, V2: 2},
		{V1: 2, V2: 1},
	}, changes)
}

func TestRegistryStatusChangedCallback(t *testing.T) {
	r := NewGatewayRegistry(20, 60_000)
	var flips []state.Pair[state.NodeId, bool]
	r.OnStatusChanged(func(id state.NodeId, hasInternet bool) {
		flips = append(flips, state.Pair[state.NodeId, bool]{V1: id, V2: hasInternet})
	})

	r.UpdateGateway(1, true, -60, 6, 100, "", 0)
	r.UpdateGateway(1, true, -60, 6, 200, "", 1_000)
	r.UpdateGateway(1, false, -60, 6, 300, "", 2_000)
	r.UpdateGateway(1, false, -60, 6, 400, "", 3_000)
	r.UpdateGateway(1, true, -60, 6, 500, "", 4_000)

	assert.Equal(t, []state.Pair[state.NodeId, bool]{
		{V1: 1, V2: true},
		{V1: 1, V2: false},
		{V1: 1, V2: true},
	}, flips)
}

func TestRegistryHasInternetConnection(t *testing.T) {
	r := NewGatewayRegistry(20, 60_000)
	assert.False(t, r.HasInternetConnection(0, true))
	assert.False(t, r.HasInternetConnection(0, false))

	r.UpdateGateway(1, true, -60, 6, 100, "", 0)
	assert.True(t, r.HasInternetConnection(1_000, true))

	// once the record goes stale, a mesh-connected node knows it lost the
	// gateway; an isolated node keeps the last known answer
	assert.False(t, r.HasInternetConnection(61_000, true))
	assert.True(t, r.HasInternetConnection(61_000, false))
}

func TestRegistryLastKnownGatewayIgnoresStaleness(t *testing.T) {
	r := NewGatewayRegistry(20, 60_000)
	_, ok := r.LastKnownGateway()
	assert.False(t, ok)

	r.UpdateGateway(1, true, -60, 6, 100, "10.0.0.1", 0)
	r.UpdateGateway(2, true, -40, 11, 100, "10.0.0.2", 0)

	rec, ok := r.LastKnownGateway()
	assert.True(t, ok)
	assert.Equal(t, state.NodeId(2), rec.Id)
	assert.Equal(t, uint8(11), rec.Channel)
	assert.Equal(t, "10.0.0.2", rec.Address)

	// still answers long after everything expired
	rec, ok = r.LastKnownGateway()
	assert.True(t, ok)
	assert.Equal(t, state.NodeId(2), rec.Id)
}

func TestRegistryClockWraparound(t *testing.T) {
	r := NewGatewayRegistry(20, 60_000)
	lastSeen := ^state.Millis(999) // recorded just before the clock wraps
	r.UpdateGateway(1, true, -60, 6, 100, "", lastSeen)

	best, ok := r.BestGateway(500)
	assert.True(t, ok)
	assert.Equal(t, state.NodeId(1), best)
	_, ok = r.BestGateway(59_001)
	assert.False(t, ok)
}
