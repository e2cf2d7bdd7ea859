package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/atm-session/internal/domain"
)

// State is the controller's position in the session lifecycle.
type State int

// Controller states.
const (
	Idle State = iota
	PinEntry
	Authenticated
	OperationSelected
	ReAuthenticating
	Executing
	// Confirming holds a successful top-up on its confirmation view.
	Confirming
)

// String returns a log-friendly name for the state.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PinEntry:
		return "pin_entry"
	case Authenticated:
		return "authenticated"
	case OperationSelected:
		return "operation_selected"
	case ReAuthenticating:
		return "reauthenticating"
	case Executing:
		return "executing"
	case Confirming:
		return "confirming"
	default:
		return "unknown"
	}
}

// Session is the single live customer interaction.
type Session struct {
	ID       uuid.UUID
	Card     domain.CardIdentifier
	Pin      domain.PinCode
	Identity domain.Identity

	// Operation is nil until one is chosen.
	Operation *domain.Operation

	OpenedAt time.Time
}

func newSession(card domain.CardIdentifier) *Session {
	return &Session{
		ID:       uuid.New(),
		Card:     card,
		Identity: domain.NoIdentity,
		OpenedAt: time.Now(),
	}
}

// snapshot returns a copy safe to hand out.
func (s *Session) snapshot() Session {
	out := *s
	if s.Operation != nil {
		op := *s.Operation
		out.Operation = &op
	}
	return out
}
