package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/embermesh/embermesh/state"
	"github.com/stretchr/testify/require"
)

// TransportHarness records every broadcast for inspection.
type TransportHarness struct {
	Heartbeats []state.Heartbeat
	Statuses   []state.BridgeStatus
	Topologies []state.TopologyExchange
}

func (h *TransportHarness) BroadcastHeartbeat(hb state.Heartbeat) {
	h.Heartbeats = append(h.Heartbeats, hb)
}

func (h *TransportHarness) BroadcastBridgeStatus(bs state.BridgeStatus) {
	h.Statuses = append(h.Statuses, bs)
}

func (h *TransportHarness) BroadcastTopology(tx state.TopologyExchange) {
	h.Topologies = append(h.Topologies, tx)
}

func (h *TransportHarness) LastHeartbeat() (state.Heartbeat, bool) {
	if len(h.Heartbeats) == 0 {
		return state.Heartbeat{}, false
	}
	return h.Heartbeats[len(h.Heartbeats)-1], true
}

func (h *TransportHarness) LastStatus() (state.BridgeStatus, bool) {
	if len(h.Statuses) == 0 {
		return state.BridgeStatus{}, false
	}
	return h.Statuses[len(h.Statuses)-1], true
}

func (h *TransportHarness) Clear() {
	h.Heartbeats = nil
	h.Statuses = nil
	h.Topologies = nil
}

type testClock struct {
	now state.Millis
}

func (c *testClock) Now() state.Millis {
	return c.now
}

func (c *testClock) advance(ms uint32) {
	c.now += state.Millis(ms)
}

type fixture struct {
	s        *state.State
	g        *Gateway
	m        *Mesh
	tr       *TransportHarness
	clock    *testClock
	dispatch chan func(*state.State) error
}

// newFixture builds a node whose modules are initialized but whose background
// tasks never tick; the test drives gatewayTick and the clock by hand.
func newFixture(t *testing.T, lcfg state.LocalCfg) *fixture {
	t.Helper()
	ctx, cancel := context.WithCancelCause(context.Background())
	cancel(errors.New("background tasks disabled"))

	dispatch := make(chan func(*state.State) error, 128)
	clock := &testClock{}
	tr := &TransportHarness{}

	s := &state.State{
		Modules: make(map[string]state.MeshModule),
		Env: &state.Env{
			DispatchChannel: dispatch,
			Context:         ctx,
			Cancel:          cancel,
			Log:             slog.New(slog.NewTextHandler(io.Discard, nil)),
			Transport:       tr,
			NowFn:           clock.Now,
			LocalCfg:        lcfg,
		},
	}

	m := &Mesh{}
	g := &Gateway{}
	s.Modules[reflect.TypeOf(m).String()] = m
	s.Modules[reflect.TypeOf(g).String()] = g
	require.NoError(t, m.Init(s))
	require.NoError(t, g.Init(s))
	t.Cleanup(func() {
		require.NoError(t, g.Cleanup(s))
		require.NoError(t, m.Cleanup(s))
	})

	return &fixture{s: s, g: g, m: m, tr: tr, clock: clock, dispatch: dispatch}
}

// pump runs queued dispatches inline on the test goroutine.
func (f *fixture) pump() {
	for {
		select {
		case fn := <-f.dispatch:
			_ = fn(f.s)
		default:
			return
		}
	}
}
