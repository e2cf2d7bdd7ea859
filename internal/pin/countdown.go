package pin

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/atm-session/internal/events"
)

// Ticker is the subset of *time.Ticker the countdown needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a Ticker firing every interval.
type TickerFactory func(interval time.Duration) Ticker

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// RealTicker is the TickerFactory backed by time.NewTicker.
func RealTicker(interval time.Duration) Ticker {
	return realTicker{t: time.NewTicker(interval)}
}

// Countdown posts one tick per interval for a capture token until stopped.
type Countdown struct {
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// StartCountdown begins ticking for token. post receives the token on every
// tick. A post failing with events.ErrQueueFull is retried on the next tick;
// any other error stops the countdown.
func StartCountdown(
	token uuid.UUID,
	interval time.Duration,
	factory TickerFactory,
	post func(token uuid.UUID) error,
	logger *slog.Logger,
) *Countdown {
	if factory == nil {
		factory = RealTicker
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Countdown{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	ticker := factory(interval)

	go func() {
		defer close(c.done)
		defer ticker.Stop()

		// owed counts ticks refused by a full queue, re-posted on the next fire.
		owed := 0
		for {
			select {
			case <-c.stop:
				return
			case <-ticker.C():
				owed++
				for owed > 0 {
					err := post(token)
					if err == nil {
						owed--
						continue
					}
					if errors.Is(err, events.ErrQueueFull) {
						logger.Debug("tick deferred: queue full", "token", token, "owed", owed)
						break
					}
					logger.Warn("countdown stopped: tick not delivered",
						"token", token,
						"error", err)
					return
				}
			}
		}
	}()

	return c
}

// Stop halts the countdown and waits for its goroutine to exit.
// It is safe to call more than once.
func (c *Countdown) Stop() {
	if c == nil {
		return
	}
	c.stopOnce.Do(func() {
		close(c.stop)
	})
	<-c.done
}
