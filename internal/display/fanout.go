package display

import (
	"log/slog"
	"sync"

	"github.com/phrazzld/atm-session/internal/domain"
)

// Fanout is a Sink that forwards every call to all registered sinks.
type Fanout struct {
	sinks  []Sink
	mu     sync.RWMutex
	logger *slog.Logger
}

// Ensure Fanout implements Sink
var _ Sink = (*Fanout)(nil)

// NewFanout creates a new instance of Fanout.
func NewFanout(logger *slog.Logger, sinks ...Sink) *Fanout {
	if logger == nil {
		logger = slog.Default()
	}
	f := &Fanout{
		sinks:  make([]Sink, 0, len(sinks)),
		logger: logger.With("component", "display_fanout"),
	}
	for _, s := range sinks {
		f.Register(s)
	}
	return f
}

// Register adds a sink to receive output.
func (f *Fanout) Register(sink Sink) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sinks = append(f.sinks, sink)
	f.logger.Debug("registered new sink", "sink_count", len(f.sinks))
}

func (f *Fanout) each(call string, fn func(Sink)) {
	f.mu.RLock()
	sinks := make([]Sink, len(f.sinks))
	copy(sinks, f.sinks)
	f.mu.RUnlock()

	if len(sinks) == 0 {
		f.logger.Warn("no sinks registered for output", "call", call)
		return
	}
	for _, s := range sinks {
		fn(s)
	}
}

// ShowIdle implements Sink.
func (f *Fanout) ShowIdle() {
	f.each("show_idle", func(s Sink) { s.ShowIdle() })
}

// ShowPinEntry implements Sink.
func (f *Fanout) ShowPinEntry(remaining int, masked string) {
	f.each("show_pin_entry", func(s Sink) { s.ShowPinEntry(remaining, masked) })
}

// ShowIdentity implements Sink.
func (f *Fanout) ShowIdentity(identity domain.Identity) {
	f.each("show_identity", func(s Sink) { s.ShowIdentity(identity) })
}

// ShowOperationResult implements Sink.
func (f *Fanout) ShowOperationResult(text string) {
	f.each("show_operation_result", func(s Sink) { s.ShowOperationResult(text) })
}

// ShowError implements Sink.
func (f *Fanout) ShowError(text string) {
	f.each("show_error", func(s Sink) { s.ShowError(text) })
}
