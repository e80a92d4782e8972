package lifecycle

import "context"

// Run executes call as one run of a. The status message is shown on n for
// the duration of the call and hidden on every exit path, before the
// action's terminal state is recorded.
//
// Run returns ErrBusy without calling anything when a is in flight, and
// ErrSuperseded when the run was cancelled before call returned; callers
// must not apply the result in either case.
func Run[T any](ctx context.Context, a *Action, n Notifier, status string, call func(context.Context) (T, error)) (T, error) {
	var zero T
	t, err := a.Begin(ctx)
	if err != nil {
		return zero, err
	}

	res, err := Notify(t.Context(), n, status, call)

	if !t.Finish(err) {
		return zero, ErrSuperseded
	}
	return res, err
}

// Notify wraps call in exactly one Show/Hide pair.
func Notify[T any](ctx context.Context, n Notifier, status string, call func(context.Context) (T, error)) (T, error) {
	if n == nil {
		n = Discard
	}
	n.Show(status)
	defer n.Hide()
	return call(ctx)
}
