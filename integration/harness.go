//go:build integration

package integration

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/embermesh/embermesh/core"
	"github.com/embermesh/embermesh/mock"
	"github.com/embermesh/embermesh/state"
)

// configureTestConstants shrinks every timing knob so elections and
// announcements play out in milliseconds instead of minutes.
func configureTestConstants() {
	state.HeartbeatInterval = 200
	state.GatewayFailureTimeout = 600
	state.GatewayHealthTimeout = 1_000
	state.BridgeStatusInterval = 300
	state.ElectionDuration = 200
	state.CooldownPeriod = 300
	state.ElectionStartupDelay = 300
	state.ElectionRandomDelayMin = 10
	state.ElectionRandomDelayMax = 50
	state.GatewayTickDelay = 20 * time.Millisecond
	state.TopologyAnnounceDelay = 200 * time.Millisecond
	state.MessageDedupTTL = 2 * time.Second
}

// VirtualMesh runs the five node mock mesh fully in-process.
type VirtualMesh struct {
	Fabric  *mock.Fabric
	Central state.CentralCfg
	Locals  []state.LocalCfg
	States  []*state.State

	wg   sync.WaitGroup
	errs chan error
}

func NewVirtualMesh() *VirtualMesh {
	central, locals := mock.MockCfg()
	return &VirtualMesh{
		Fabric:  mock.NewFabric(),
		Central: central,
		Locals:  locals,
		States:  make([]*state.State, len(locals)),
		errs:    make(chan error, len(locals)),
	}
}

// Start brings every node up and connects the configured links. The returned
// channel carries node failures.
func (v *VirtualMesh) Start() <-chan error {
	for i := range v.Locals {
		v.wg.Add(1)
		go func() {
			defer v.wg.Done()
			err := core.Start(v.Central, v.Locals[i], slog.LevelWarn, v.Fabric.Port(v.Locals[i].Id), &v.States[i])
			if err != nil {
				v.errs <- err
			}
		}()
	}
	for i := range v.States {
		for v.States[i] == nil || !v.States[i].Started.Load() {
			time.Sleep(5 * time.Millisecond)
		}
		v.Fabric.Register(v.Locals[i].Id, v.States[i].Env)
	}
	for _, edge := range v.Central.Edges {
		v.Fabric.Connect(edge.V1, edge.V2)
	}
	return v.errs
}

func (v *VirtualMesh) Stop() {
	for _, s := range v.States {
		if s != nil {
			s.Cancel(errors.New("test finished"))
		}
	}
	v.wg.Wait()
}

// Query runs f on node i's dispatch goroutine and returns its result.
func (v *VirtualMesh) Query(i int, f func(s *state.State) any) any {
	res, err := v.States[i].DispatchWait(func(s *state.State) (any, error) {
		return f(s), nil
	})
	if err != nil {
		return nil
	}
	return res
}

func (v *VirtualMesh) idx(id state.NodeId) int {
	for i, l := range v.Locals {
		if l.Id == id {
			return i
		}
	}
	return -1
}
