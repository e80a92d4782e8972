// Package lifecycle implements the request lifecycle shared by every view:
// validate, show status, issue one request, hide status, record the outcome.
//
// Information Hiding:
// - Per-action state and in-flight gating hidden behind Action
// - Cancellation and stale-result suppression hidden behind Ticket
// - The loading overlay is reached only through the injected Notifier
package lifecycle

// State is the lifecycle state of one user action.
type State int

const (
	Idle State = iota
	Pending
	Streaming
	Succeeded
	Failed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Streaming:
		return "streaming"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// InFlight reports whether a request is outstanding.
func (s State) InFlight() bool {
	return s == Pending || s == Streaming
}

// Terminal reports whether the action has finished.
func (s State) Terminal() bool {
	return s == Succeeded || s == Failed
}
