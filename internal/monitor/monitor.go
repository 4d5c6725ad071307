// Package monitor coordinates asynchronous crash notifications from an
// external monitor task with the iteration controller's single-threaded
// run loop. The shared state is a single atomic boolean edge plus a
// dedicated channel, deliberately separate from os/signal's SIGINT channel
// so a process interrupt and a monitor-detected crash are never conflated
// on one channel.
package monitor

import "sync/atomic"

// Edge is the one-bit "crash observed since last consumed" signal shared
// between the monitor task (writer) and the iteration controller (reader
// and sole clearer). It is read and cleared only at iteration boundaries,
// so the run engine never observes a crash mid-message-send.
type Edge struct {
	crashed atomic.Bool
	// Notify carries a value whenever the monitor wants to interrupt the
	// controller's inter-run sleep immediately rather than waiting for the
	// sleep to elapse. It is distinct from any os/signal channel: a
	// process-wide interrupt reaches the controller only as cancellation of
	// its context, never on this channel.
	Notify chan struct{}
}

// NewEdge constructs a ready-to-use Edge.
func NewEdge() *Edge {
	return &Edge{Notify: make(chan struct{}, 1)}
}

// SetCrashed is called by the monitor task when it observes a crash. It is
// safe to call from any goroutine, at any time.
func (e *Edge) SetCrashed() {
	e.crashed.Store(true)
	select {
	case e.Notify <- struct{}{}:
	default:
	}
}

// Crashed reports whether a crash has been observed since the last Consume.
func (e *Edge) Crashed() bool {
	return e.crashed.Load()
}

// Consume reports whether a crash was observed, and clears the edge. Only
// the iteration controller calls this, and only between iterations.
func (e *Edge) Consume() bool {
	return e.crashed.Swap(false)
}
