package display

import (
	"fmt"
	"strings"
	"sync"

	"github.com/phrazzld/atm-session/internal/domain"
)

// Recorder is a Sink that keeps every call as a line of text, for tests.
type Recorder struct {
	mu    sync.Mutex
	lines []string
}

// Ensure Recorder implements Sink
var _ Sink = (*Recorder)(nil)

func (r *Recorder) record(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

// ShowIdle implements Sink.
func (r *Recorder) ShowIdle() { r.record("idle") }

// ShowPinEntry implements Sink.
func (r *Recorder) ShowPinEntry(remaining int, masked string) {
	r.record("pin %s %d", masked, remaining)
}

// ShowIdentity implements Sink.
func (r *Recorder) ShowIdentity(identity domain.Identity) {
	r.record("identity %s %d %s", identity.FullName(), identity.AccountID, identity.CardType)
}

// ShowOperationResult implements Sink.
func (r *Recorder) ShowOperationResult(text string) { r.record("result %s", text) }

// ShowError implements Sink.
func (r *Recorder) ShowError(text string) { r.record("error %s", text) }

// Lines returns everything recorded so far.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}

// Last returns the most recent line, or "".
func (r *Recorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.lines) == 0 {
		return ""
	}
	return r.lines[len(r.lines)-1]
}

// HasPrefix reports whether any line starts with prefix.
func (r *Recorder) HasPrefix(prefix string) bool {
	for _, l := range r.Lines() {
		if strings.HasPrefix(l, prefix) {
			return true
		}
	}
	return false
}

// Reset forgets everything recorded.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = nil
}
