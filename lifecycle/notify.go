package lifecycle

import "sync"

// Notifier is the loading-indicator capability injected into views.
// Show publishes a status message; Hide clears it.
type Notifier interface {
	Show(message string)
	Hide()
}

// Discard is a Notifier that does nothing.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Show(string) {}
func (discard) Hide()       {}

// Snapshot is the observable state of an Overlay.
type Snapshot struct {
	Visible bool
	Message string
}

// Overlay is the process-wide loading indicator. It is advisory, not a lock:
// concurrent actions in different views race on the message and the last
// writer wins.
type Overlay struct {
	mu       sync.Mutex
	state    Snapshot
	onChange func(Snapshot)
}

// NewOverlay creates an overlay. onChange, if non-nil, is called after every
// transition with the new snapshot.
func NewOverlay(onChange func(Snapshot)) *Overlay {
	return &Overlay{onChange: onChange}
}

// Show makes the overlay visible with message.
func (o *Overlay) Show(message string) {
	o.set(Snapshot{Visible: true, Message: message})
}

// Hide clears the overlay.
func (o *Overlay) Hide() {
	o.set(Snapshot{})
}

// Snapshot returns the current overlay state.
func (o *Overlay) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Overlay) set(s Snapshot) {
	o.mu.Lock()
	o.state = s
	fn := o.onChange
	o.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}

var _ Notifier = (*Overlay)(nil)
