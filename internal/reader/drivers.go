package reader

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"sync"
)

// ErrAlreadySubscribed is returned when a driver already has a handler.
var ErrAlreadySubscribed = errors.New("driver already has a subscriber")

// LineDriver reads one identifier per line, as keyboard-wedge and serial
// readers emit them.
type LineDriver struct {
	r      io.Reader
	logger *slog.Logger

	mu         sync.Mutex
	subscribed bool
}

// NewLineDriver creates a driver over r. The driver owns r while subscribed.
func NewLineDriver(r io.Reader, logger *slog.Logger) *LineDriver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LineDriver{r: r, logger: logger.With("component", "line_driver")}
}

// Subscribe starts reading lines and passing them to handler. Unsubscribing
// stops delivery; a blocked read returns when r is closed.
func (d *LineDriver) Subscribe(handler func(raw string)) (func(), error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.subscribed {
		return nil, ErrAlreadySubscribed
	}
	d.subscribed = true

	done := make(chan struct{})
	var once sync.Once

	go func() {
		scanner := bufio.NewScanner(d.r)
		for scanner.Scan() {
			select {
			case <-done:
				return
			default:
			}
			handler(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			d.logger.Error("reader input failed", "error", err)
		}
	}()

	return func() {
		once.Do(func() {
			close(done)
			if c, ok := d.r.(io.Closer); ok {
				_ = c.Close()
			}
			d.mu.Lock()
			d.subscribed = false
			d.mu.Unlock()
		})
	}, nil
}

// ManualDriver delivers identifiers passed to Present. It backs the console
// "card" command and tests.
type ManualDriver struct {
	mu      sync.Mutex
	handler func(raw string)
}

// NewManualDriver creates a driver with no subscriber.
func NewManualDriver() *ManualDriver {
	return &ManualDriver{}
}

// Subscribe registers handler.
func (d *ManualDriver) Subscribe(handler func(raw string)) (func(), error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.handler != nil {
		return nil, ErrAlreadySubscribed
	}
	d.handler = handler
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.handler = nil
	}, nil
}

// Present delivers raw to the subscriber, if any. It reports whether a
// subscriber received it.
func (d *ManualDriver) Present(raw string) bool {
	d.mu.Lock()
	handler := d.handler
	d.mu.Unlock()
	if handler == nil {
		return false
	}
	handler(raw)
	return true
}
