package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// recorder logs every notifier transition.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) Show(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "show:"+msg)
}

func (r *recorder) Hide() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "hide")
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func assertShowHide(t *testing.T, r *recorder, msg string) {
	t.Helper()
	events := r.Events()
	if len(events) != 2 {
		t.Fatalf("expected exactly one show and one hide, got %v", events)
	}
	if events[0] != "show:"+msg {
		t.Errorf("expected first event 'show:%s', got %q", msg, events[0])
	}
	if events[1] != "hide" {
		t.Errorf("expected second event 'hide', got %q", events[1])
	}
}

func TestRunSuccess(t *testing.T) {
	var a Action
	r := &recorder{}

	got, err := Run(context.Background(), &a, r, "Working...", func(ctx context.Context) (int, error) {
		if a.State() != Pending {
			t.Errorf("expected pending during call, got %s", a.State())
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
	if a.State() != Succeeded {
		t.Errorf("expected succeeded, got %s", a.State())
	}
	if a.Err() != nil {
		t.Errorf("expected no error, got %v", a.Err())
	}
	assertShowHide(t, r, "Working...")
}

func TestRunFailureHidesBeforeRecording(t *testing.T) {
	var a Action
	r := &recorder{}
	boom := errors.New("boom")

	_, err := Run(context.Background(), &a, r, "Working...", func(ctx context.Context) (string, error) {
		return "", boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if a.State() != Failed {
		t.Errorf("expected failed, got %s", a.State())
	}
	if !errors.Is(a.Err(), boom) {
		t.Errorf("expected recorded error boom, got %v", a.Err())
	}
	assertShowHide(t, r, "Working...")
}

func TestRunClearsPreviousError(t *testing.T) {
	var a Action
	_, _ = Run(context.Background(), &a, Discard, "", func(ctx context.Context) (int, error) {
		return 0, errors.New("first")
	})
	_, err := Run(context.Background(), &a, Discard, "", func(ctx context.Context) (int, error) {
		return 1, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Err() != nil {
		t.Errorf("expected error cleared, got %v", a.Err())
	}
}

func TestRunBusy(t *testing.T) {
	var a Action
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		_, _ = Run(context.Background(), &a, Discard, "", func(ctx context.Context) (int, error) {
			close(started)
			<-release
			return 1, nil
		})
	}()
	<-started

	r := &recorder{}
	called := false
	_, err := Run(context.Background(), &a, r, "second", func(ctx context.Context) (int, error) {
		called = true
		return 2, nil
	})
	if !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
	if called {
		t.Error("second call must not run while the first is in flight")
	}
	if len(r.Events()) != 0 {
		t.Errorf("expected no notifier events for a rejected run, got %v", r.Events())
	}

	close(release)
	<-done
	if a.State() != Succeeded {
		t.Errorf("expected succeeded, got %s", a.State())
	}
}

func TestCancelDiscardsLateResult(t *testing.T) {
	var a Action
	started := make(chan struct{})
	done := make(chan error, 1)
	r := &recorder{}

	go func() {
		_, err := Run(context.Background(), &a, r, "slow", func(ctx context.Context) (int, error) {
			close(started)
			<-ctx.Done()
			return 0, ctx.Err()
		})
		done <- err
	}()
	<-started
	a.Cancel()

	err := <-done
	if !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded, got %v", err)
	}
	if a.State() != Idle {
		t.Errorf("expected idle after cancel, got %s", a.State())
	}
	if a.Err() != nil {
		t.Errorf("expected no recorded error, got %v", a.Err())
	}
	assertShowHide(t, r, "slow")
}

func TestRejectSkipsNetwork(t *testing.T) {
	var a Action
	want := errors.New("Please select a file")
	if err := a.Reject(want); err != want {
		t.Fatalf("expected Reject to return its error, got %v", err)
	}
	if a.State() != Failed {
		t.Errorf("expected failed, got %s", a.State())
	}
}

func TestStreamingTransition(t *testing.T) {
	var a Action
	ticket, err := a.Begin(context.Background())
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	ticket.Streaming()
	if a.State() != Streaming {
		t.Errorf("expected streaming, got %s", a.State())
	}
	if _, err := a.Begin(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy while streaming, got %v", err)
	}
	if !ticket.Finish(nil) {
		t.Fatal("expected current ticket to finish")
	}
	if a.State() != Succeeded {
		t.Errorf("expected succeeded, got %s", a.State())
	}
}

func TestOverlayLastWriterWins(t *testing.T) {
	var seen []Snapshot
	o := NewOverlay(func(s Snapshot) { seen = append(seen, s) })

	o.Show("Uploading...")
	o.Show("Generating quiz...")
	if got := o.Snapshot(); !got.Visible || got.Message != "Generating quiz..." {
		t.Errorf("unexpected snapshot %+v", got)
	}
	o.Hide()
	if got := o.Snapshot(); got.Visible || got.Message != "" {
		t.Errorf("expected hidden overlay, got %+v", got)
	}
	if len(seen) != 3 {
		t.Errorf("expected 3 change notifications, got %d", len(seen))
	}
}

func TestStateString(t *testing.T) {
	cases := map[State]string{
		Idle:      "idle",
		Pending:   "pending",
		Streaming: "streaming",
		Succeeded: "succeeded",
		Failed:    "failed",
	}
	for s, want := range cases {
		if s.String() != want {
			t.Errorf("expected %q, got %q", want, s.String())
		}
	}
}
