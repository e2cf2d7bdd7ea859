package display

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/phrazzld/atm-session/internal/domain"
)

// ConsoleSink writes plain text lines for a character terminal.
type ConsoleSink struct {
	w      io.Writer
	mu     sync.Mutex
	logger *slog.Logger
}

// Ensure ConsoleSink implements Sink
var _ Sink = (*ConsoleSink)(nil)

// NewConsoleSink creates a sink writing to w.
func NewConsoleSink(w io.Writer, logger *slog.Logger) *ConsoleSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsoleSink{w: w, logger: logger.With("component", "console_sink")}
}

func (c *ConsoleSink) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintf(c.w, format+"\n", args...); err != nil {
		c.logger.Error("failed to write to console", "error", err)
	}
}

// ShowIdle implements Sink.
func (c *ConsoleSink) ShowIdle() {
	c.printf("Waiting for card...")
}

// ShowPinEntry implements Sink.
func (c *ConsoleSink) ShowPinEntry(remaining int, masked string) {
	c.printf("PIN: %s  Time left: %d s", masked, remaining)
}

// ShowIdentity implements Sink.
func (c *ConsoleSink) ShowIdentity(identity domain.Identity) {
	c.printf("Welcome, %s (account %d)", identity.FullName(), identity.AccountID)
	if identity.CardType != "" {
		c.printf("Card type: %s", identity.CardType)
	}
}

// ShowOperationResult implements Sink.
func (c *ConsoleSink) ShowOperationResult(text string) {
	c.printf("%s", text)
}

// ShowError implements Sink.
func (c *ConsoleSink) ShowError(text string) {
	c.printf("Error: %s", text)
}

// LogSink records display output as structured log entries.
type LogSink struct {
	logger *slog.Logger
}

// Ensure LogSink implements Sink
var _ Sink = (*LogSink)(nil)

// NewLogSink creates a sink logging to logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger.With("component", "display")}
}

// ShowIdle implements Sink.
func (l *LogSink) ShowIdle() {
	l.logger.Debug("display idle")
}

// ShowPinEntry implements Sink. The buffer is never logged, only its length.
func (l *LogSink) ShowPinEntry(remaining int, masked string) {
	entered := 0
	for _, r := range masked {
		if r == '*' {
			entered++
		}
	}
	l.logger.Debug("display pin entry", "remaining", remaining, "entered", entered)
}

// ShowIdentity implements Sink.
func (l *LogSink) ShowIdentity(identity domain.Identity) {
	l.logger.Info("display identity", "account_id", identity.AccountID, "card_type", identity.CardType)
}

// ShowOperationResult implements Sink.
func (l *LogSink) ShowOperationResult(text string) {
	l.logger.Info("display operation result", "lines", countLines(text))
}

// ShowError implements Sink.
func (l *LogSink) ShowError(text string) {
	l.logger.Warn("display error", "text", text)
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := 1
	for _, r := range text {
		if r == '\n' {
			n++
		}
	}
	return n
}
