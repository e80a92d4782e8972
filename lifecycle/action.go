package lifecycle

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrBusy is returned when an action is started while its previous run
	// is still in flight.
	ErrBusy = errors.New("action already in progress")

	// ErrSuperseded is returned by Run when the run was cancelled or reset
	// before its result arrived. The result has been discarded.
	ErrSuperseded = errors.New("action superseded")
)

// Action tracks the lifecycle of one user-triggered operation. The zero
// value is an idle action ready for use.
type Action struct {
	mu     sync.Mutex
	state  State
	err    error
	gen    uint64
	cancel context.CancelFunc
}

// State returns the current state.
func (a *Action) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Err returns the error of the last failed run, or nil.
func (a *Action) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Reject records a failure without issuing a request, as for missing local
// input. It returns err. A run in flight is left untouched and ErrBusy is
// returned instead.
func (a *Action) Reject(err error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state.InFlight() {
		return ErrBusy
	}
	a.state = Failed
	a.err = err
	return err
}

// Begin starts a run. It fails with ErrBusy while a previous run is in
// flight. The returned ticket carries a context cancelled by Cancel.
func (a *Action) Begin(ctx context.Context) (*Ticket, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state.InFlight() {
		return nil, ErrBusy
	}
	a.gen++
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.state = Pending
	a.err = nil
	return &Ticket{action: a, gen: a.gen, ctx: runCtx}, nil
}

// Cancel aborts the run in flight, if any, and returns the action to Idle.
// The aborted run's result is discarded when it arrives.
func (a *Action) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.state.InFlight() {
		a.gen++
		a.state = Idle
	}
}

// Reset cancels any run in flight and clears the recorded error.
func (a *Action) Reset() {
	a.Cancel()
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = Idle
	a.err = nil
}

// Ticket is the handle of one run of an Action.
type Ticket struct {
	action *Action
	gen    uint64
	ctx    context.Context
}

// Context returns the run's context.
func (t *Ticket) Context() context.Context {
	return t.ctx
}

// Current reports whether the run has not been cancelled or superseded.
func (t *Ticket) Current() bool {
	t.action.mu.Lock()
	defer t.action.mu.Unlock()
	return t.action.gen == t.gen
}

// Streaming moves a current Pending run to Streaming.
func (t *Ticket) Streaming() {
	a := t.action
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.gen == t.gen && a.state == Pending {
		a.state = Streaming
	}
}

// Finish records the run's terminal state: Succeeded when err is nil,
// Failed otherwise. It returns false, leaving the action untouched, when the
// run is no longer current.
func (t *Ticket) Finish(err error) bool {
	a := t.action
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.gen != t.gen {
		return false
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if err != nil {
		a.state = Failed
		a.err = err
	} else {
		a.state = Succeeded
		a.err = nil
	}
	return true
}
