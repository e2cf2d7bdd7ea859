// Package reader turns card reader input into card-presented events.
//
// A Driver delivers raw identifiers through a subscription. Source normalizes
// them, suppresses repeats of the card whose session is still open and posts
// the rest to the controller's queue. Which card is open is reported by the
// controller through Opened and Release.
package reader

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/phrazzld/atm-session/internal/domain"
	"github.com/phrazzld/atm-session/internal/redact"
)

// ErrAlreadyStarted is returned by Start on a running Source.
var ErrAlreadyStarted = errors.New("card source already started")

// Driver is a card reader integration. Subscribe registers handler to receive
// each raw identifier the reader yields and returns a function that removes
// the registration.
type Driver interface {
	Subscribe(handler func(raw string)) (unsubscribe func(), err error)
}

// PostFunc delivers a card identifier to the controller.
type PostFunc func(card domain.CardIdentifier) error

// Source deduplicates reader input for the single active session.
type Source struct {
	driver Driver
	post   PostFunc
	logger *slog.Logger

	mu          sync.Mutex
	active      domain.CardIdentifier
	unsubscribe func()
}

// NewSource creates a card source reading from driver and posting through post.
func NewSource(driver Driver, post PostFunc, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{
		driver: driver,
		post:   post,
		logger: logger.With("component", "card_source"),
	}
}

// Start subscribes to the driver.
func (s *Source) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unsubscribe != nil {
		return ErrAlreadyStarted
	}
	unsubscribe, err := s.driver.Subscribe(s.Present)
	if err != nil {
		return err
	}
	s.unsubscribe = unsubscribe
	s.logger.Info("card source started")
	return nil
}

// Stop unsubscribes from the driver.
func (s *Source) Stop() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
		s.logger.Info("card source stopped")
	}
}

// Present handles one raw identifier from the reader. The identifier of the
// card whose session is open is suppressed until Release is called for it.
func (s *Source) Present(raw string) {
	card, err := domain.NewCardIdentifier(raw)
	if err != nil {
		s.logger.Debug("ignoring empty reader input")
		return
	}

	s.mu.Lock()
	open := s.active == card
	s.mu.Unlock()
	if open {
		s.logger.Debug("suppressing repeated card", "card", redact.Card(card.String()))
		return
	}

	if err := s.post(card); err != nil {
		s.logger.Warn("card event not delivered", "card", redact.Card(card.String()), "error", err)
		return
	}
	s.logger.Info("card presented", "card", redact.Card(card.String()))
}

// Opened starts suppressing card. The controller calls it once a session is
// open for the card.
func (s *Source) Opened(card domain.CardIdentifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = card
}

// Release ends suppression for card once its session has closed.
func (s *Source) Release(card domain.CardIdentifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == card {
		s.active = ""
	}
}
