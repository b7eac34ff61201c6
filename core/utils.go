package core

import (
	"math/rand/v2"
	"reflect"
	"time"

	"github.com/embermesh/embermesh/state"
)

func Get[T state.MeshModule](s *state.State) T {
	t := reflect.TypeFor[T]()
	return s.Modules[t.String()].(T)
}

// randomDelay picks a duration uniformly in [minMs, maxMs) milliseconds.
func randomDelay(minMs, maxMs uint32) time.Duration {
	span := maxMs - minMs
	return time.Duration(minMs+rand.Uint32N(span)) * time.Millisecond
}
