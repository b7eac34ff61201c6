package state

import (
	"fmt"
	"time"
)

// Dispatch queues fun to run on the dispatch goroutine without waiting for
// it to complete. A panic while queueing cancels the node.
func (e *Env) Dispatch(fun func(*State) error) {
	defer func() {
		if r := recover(); r != nil {
			e.Cancel(fmt.Errorf("panic: %v", r))
		}
	}()
	e.DispatchChannel <- fun
}

// DispatchWait queues fun on the dispatch goroutine and waits for its result.
func (e *Env) DispatchWait(fun func(*State) (any, error)) (any, error) {
	ret := make(chan Pair[any, error])
	e.DispatchChannel <- func(s *State) error {
		res, err := fun(s)
		ret <- Pair[any, error]{res, err}
		return err
	}
	select {
	case res := <-ret:
		return res.V1, res.V2
	case <-e.Context.Done():
		return nil, e.Context.Err()
	}
}

// ScheduleTask runs fun on the dispatch goroutine after delay.
func (e *Env) ScheduleTask(fun func(*State) error, delay time.Duration) {
	time.AfterFunc(delay, func() {
		e.Dispatch(fun)
	})
}

// RepeatTask runs fun on the dispatch goroutine immediately and then once per
// period until the node shuts down.
func (e *Env) RepeatTask(fun func(*State) error, period time.Duration) {
	go func() {
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for e.Context.Err() == nil {
			e.Dispatch(fun)
			select {
			case <-ticker.C:
			case <-e.Context.Done():
				return
			}
		}
	}()
}
