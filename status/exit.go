package status

import (
	"sync"
	"sync/atomic"
)

// Exit carries the shutdown request raised by host quit events
// Owned by the run loop and handed to the translator; replaces process-wide flags
type Exit struct {
	wantExit      atomic.Bool
	abort         atomic.Bool
	checkDynamics atomic.Bool // Sanity-check dynamic resources at shutdown

	once sync.Once
	done chan struct{}
}

// NewExit creates an Exit with the dynamic-resource check enabled
func NewExit() *Exit {
	e := &Exit{done: make(chan struct{})}
	e.checkDynamics.Store(true)
	return e
}

// Request marks the exit as wanted and aborts the engine
// Skips the dynamic-resource check since the session ends abruptly
func (e *Exit) Request() {
	e.wantExit.Store(true)
	e.abort.Store(true)
	e.checkDynamics.Store(false)
	e.once.Do(func() { close(e.done) })
}

// WantExit reports whether a quit was requested
func (e *Exit) WantExit() bool { return e.wantExit.Load() }

// Abort reports whether the engine should abort its current loop
func (e *Exit) Abort() bool { return e.abort.Load() }

// CheckDynamicResources reports whether shutdown should validate dynamic resources
func (e *Exit) CheckDynamicResources() bool { return e.checkDynamics.Load() }

// Done is closed on the first Request
func (e *Exit) Done() <-chan struct{} { return e.done }
