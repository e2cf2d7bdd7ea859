package display

import (
	"log/slog"
	"sync"
)

// View names a screen opened on top of the idle screen.
type View string

// Views the session flow opens.
const (
	ViewPinEntry         View = "pin_entry"
	ViewWelcome          View = "welcome"
	ViewOperation        View = "operation"
	ViewReauthentication View = "reauthentication"
	ViewConfirmation     View = "confirmation"
)

// Terminal is the handle to the idle screen and the views stacked on it.
// Flows return control through it and the card-blocked recovery uses it to
// force every open view closed.
type Terminal struct {
	sink   Sink
	logger *slog.Logger

	mu   sync.Mutex
	open []View
}

// NewTerminal creates a terminal showing nothing but the idle screen.
func NewTerminal(sink Sink, logger *slog.Logger) *Terminal {
	if logger == nil {
		logger = slog.Default()
	}
	return &Terminal{
		sink:   sink,
		logger: logger.With("component", "terminal"),
	}
}

// Sink returns the output sink.
func (t *Terminal) Sink() Sink {
	return t.sink
}

// Open pushes v unless it is already open.
func (t *Terminal) Open(v View) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, o := range t.open {
		if o == v {
			return
		}
	}
	t.open = append(t.open, v)
}

// Close removes v and reports whether it was open.
func (t *Terminal) Close(v View) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, o := range t.open {
		if o == v {
			t.open = append(t.open[:i], t.open[i+1:]...)
			return true
		}
	}
	return false
}

// IsOpen reports whether v is open.
func (t *Terminal) IsOpen(v View) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, o := range t.open {
		if o == v {
			return true
		}
	}
	return false
}

// OpenViews returns the open views, oldest first.
func (t *Terminal) OpenViews() []View {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]View, len(t.open))
	copy(out, t.open)
	return out
}

// ReturnToIdle closes every open view and shows the idle screen.
func (t *Terminal) ReturnToIdle() {
	t.mu.Lock()
	t.open = t.open[:0]
	t.mu.Unlock()
	t.sink.ShowIdle()
}

// Sweep force-closes every open view, newest first, and returns what it closed.
func (t *Terminal) Sweep() []View {
	t.mu.Lock()
	closed := make([]View, 0, len(t.open))
	for i := len(t.open) - 1; i >= 0; i-- {
		closed = append(closed, t.open[i])
	}
	t.open = t.open[:0]
	t.mu.Unlock()

	for _, v := range closed {
		t.logger.Info("force-closing view", "view", string(v))
	}
	return closed
}
