package state

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// NodeId is a mesh-wide unique node identifier.
type NodeId uint32

type MeshModule interface {
	Init(s *State) error
	Cleanup(s *State) error
}

// State access must be done only on a single Goroutine
type State struct {
	*Env
	Modules map[string]MeshModule
}

// Env can be read from any Goroutine
type Env struct {
	DispatchChannel chan<- func(s *State) error
	CentralCfg
	LocalCfg
	Context   context.Context
	Cancel    context.CancelCauseFunc
	Log       *slog.Logger
	Transport Transport
	Started   atomic.Bool
	Stopping  atomic.Bool

	// NowFn supplies the monotonic millisecond clock. Defaults to the wall
	// clock measured from Epoch; the mock fabric substitutes a synthetic
	// clock.
	NowFn func() Millis

	// Epoch anchors the default clock, set once at startup.
	Epoch time.Time
}

// Now returns the current monotonic millisecond timestamp. Wraps after
// ~49.7 days, so all comparisons must go through the clock helpers.
func (e *Env) Now() Millis {
	if e.NowFn != nil {
		return e.NowFn()
	}
	return Millis(time.Since(e.Epoch) / time.Millisecond)
}
