package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Common errors returned by the Queue
var (
	ErrQueueClosed = errors.New("event queue is closed")
	ErrQueueFull   = errors.New("event queue is full")
)

// Queue is a bounded, ordered event buffer with many writers and one reader.
//
// Input from outside the terminal goes through Post and is dropped when the
// queue is full. Completions the controller is waiting for go through
// PostWait, which blocks until there is room.
type Queue struct {
	events  chan Event
	logger  *slog.Logger
	closing chan struct{}

	// mu is held for reading by every sender and for writing by Close, so
	// the events channel is never closed under a pending send.
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// NewQueue creates a new event queue with the specified buffer size
func NewQueue(size int, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		events:  make(chan Event, size),
		logger:  logger.With("component", "event_queue"),
		closing: make(chan struct{}),
	}
}

// Post wraps payload in an Event and appends it to the queue.
// Returns an error if the queue is full or closed; Post never blocks.
func (q *Queue) Post(payload Payload) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	event := New(payload)
	select {
	case q.events <- event:
		q.posted(event)
		return nil
	default:
		q.logger.Warn("event dropped",
			"event_kind", event.Kind(),
			"queue_cap", cap(q.events))
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(q.events))
	}
}

// PostWait appends payload, waiting for room while the queue is full. It
// returns ErrQueueClosed once the queue is closed, or ctx.Err() when ctx ends
// first.
func (q *Queue) PostWait(ctx context.Context, payload Payload) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	event := New(payload)
	select {
	case q.events <- event:
		q.posted(event)
		return nil
	default:
	}

	q.logger.Debug("queue full, waiting to post", "event_kind", event.Kind())
	select {
	case q.events <- event:
		q.posted(event)
		return nil
	case <-q.closing:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) posted(event Event) {
	q.logger.Debug("event posted",
		"event_id", event.ID,
		"event_kind", event.Kind(),
		"queue_len", len(q.events),
		"queue_cap", cap(q.events))
}

// Close closes the queue, preventing further posts and releasing waiting
// PostWait calls. Events already queued can still be read.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		close(q.closing)

		q.mu.Lock()
		defer q.mu.Unlock()
		q.closed = true
		close(q.events)
		q.logger.Info("event queue closed")
	})
}

// C returns a read-only channel for consuming events
func (q *Queue) C() <-chan Event {
	return q.events
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	return len(q.events)
}
