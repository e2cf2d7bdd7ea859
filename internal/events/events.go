package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/atm-session/internal/domain"
	"github.com/phrazzld/atm-session/internal/operation"
)

// Kind names an event type for logging and dispatch.
type Kind string

// Event kinds.
const (
	KindCardPresented            Kind = "card_presented"
	KindDigitEntered             Kind = "digit_entered"
	KindPinCleared               Kind = "pin_cleared"
	KindPinSubmitted             Kind = "pin_submitted"
	KindTimerTick                Kind = "timer_tick"
	KindVerificationCompleted    Kind = "verification_completed"
	KindOperationChosen          Kind = "operation_chosen"
	KindOperationStarted         Kind = "operation_started"
	KindExecutionCompleted       Kind = "execution_completed"
	KindCancelled                Kind = "cancelled"
	KindConfirmationAcknowledged Kind = "confirmation_acknowledged"
)

// Payload is the typed content of an Event.
type Payload interface {
	Kind() Kind
}

// Event wraps a payload with identity and timing for tracing.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID

	Payload Payload

	// CreatedAt is the timestamp when the event was posted
	CreatedAt time.Time
}

// Kind returns the payload's kind.
func (e Event) Kind() Kind {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.Kind()
}

// New wraps payload in a fresh Event.
func New(payload Payload) Event {
	return Event{
		ID:        uuid.New(),
		Payload:   payload,
		CreatedAt: time.Now(),
	}
}

// CardPresented is emitted by the card source.
type CardPresented struct {
	Card domain.CardIdentifier
}

// DigitEntered is one keypad digit.
type DigitEntered struct {
	Digit rune
}

// PinCleared empties the PIN buffer.
type PinCleared struct{}

// PinSubmitted asks for the buffered PIN to be verified.
type PinSubmitted struct{}

// TimerTick is one countdown unit of the PIN capture identified by Token.
type TimerTick struct {
	Token uuid.UUID
}

// VerificationCompleted carries the outcome of the exchange started for Token.
type VerificationCompleted struct {
	Token  uuid.UUID
	Result domain.AuthResult
}

// OperationChosen selects an operation. For withdrawals Preset (1-based)
// picks a configured amount; otherwise Amount is free-form entry.
type OperationChosen struct {
	Operation domain.OperationKind
	Preset    int
	Amount    string
}

// OperationStarted confirms the chosen operation and begins re-authentication.
type OperationStarted struct{}

// ExecutionCompleted carries the outcome of the operation started for Token.
type ExecutionCompleted struct {
	Token  uuid.UUID
	Result operation.Result
}

// Cancelled is an explicit cancel or the closing of an open view.
type Cancelled struct {
	Reason string
}

// ConfirmationAcknowledged dismisses the top-up confirmation.
type ConfirmationAcknowledged struct{}

// Kind implementations.

func (CardPresented) Kind() Kind            { return KindCardPresented }
func (DigitEntered) Kind() Kind             { return KindDigitEntered }
func (PinCleared) Kind() Kind               { return KindPinCleared }
func (PinSubmitted) Kind() Kind             { return KindPinSubmitted }
func (TimerTick) Kind() Kind                { return KindTimerTick }
func (VerificationCompleted) Kind() Kind    { return KindVerificationCompleted }
func (OperationChosen) Kind() Kind          { return KindOperationChosen }
func (OperationStarted) Kind() Kind         { return KindOperationStarted }
func (ExecutionCompleted) Kind() Kind       { return KindExecutionCompleted }
func (Cancelled) Kind() Kind                { return KindCancelled }
func (ConfirmationAcknowledged) Kind() Kind { return KindConfirmationAcknowledged }
