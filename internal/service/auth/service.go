// Package auth provides the PIN verification facade over the banking API.
// Authentication and re-authentication are the same exchange; Purpose only
// distinguishes them in logs.
package auth

import (
	"context"

	"github.com/phrazzld/atm-session/internal/domain"
	"github.com/phrazzld/atm-session/internal/platform/logger"
	"github.com/phrazzld/atm-session/internal/redact"
	"github.com/phrazzld/atm-session/internal/remote"
)

// PathAuth is the card authentication endpoint.
const PathAuth = "/cards/auth"

// Purpose labels why a PIN is being verified.
type Purpose string

// Verification purposes.
const (
	PurposeLogin  Purpose = "login"
	PurposeStepUp Purpose = "step_up"
)

// Service verifies a card and PIN against the banking API.
// Every call is one request/response exchange without retries.
type Service interface {
	// Verify performs one verification exchange.
	Verify(ctx context.Context, card domain.CardIdentifier, pin domain.PinCode, purpose Purpose) domain.AuthResult

	// Authenticate verifies a freshly presented card.
	Authenticate(ctx context.Context, card domain.CardIdentifier, pin domain.PinCode) domain.AuthResult

	// Reauthenticate verifies the card of an existing session before a sensitive operation.
	Reauthenticate(ctx context.Context, card domain.CardIdentifier, pin domain.PinCode) domain.AuthResult
}

type authRequest struct {
	CardNumber string `json:"card_number"`
	PinCode    string `json:"pin_code"`
}

type customerReply struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"  validate:"required"`
}

type authReply struct {
	Success   bool           `json:"success"`
	Customer  *customerReply `json:"customer"   validate:"required"`
	AccountID *int           `json:"account_id" validate:"required"`
	CardType  string         `json:"card_type"  validate:"required"`
}

type remoteService struct {
	transport  remote.Transport
	classifier *remote.Classifier
}

// Ensure remoteService implements Service interface
var _ Service = (*remoteService)(nil)

// NewService creates an authentication facade over transport.
// Log output goes to the logger carried by each call's context.
func NewService(transport remote.Transport, classifier *remote.Classifier) Service {
	return &remoteService{
		transport:  transport,
		classifier: classifier,
	}
}

// Authenticate implements Service.
func (s *remoteService) Authenticate(ctx context.Context, card domain.CardIdentifier, pin domain.PinCode) domain.AuthResult {
	return s.Verify(ctx, card, pin, PurposeLogin)
}

// Reauthenticate implements Service.
func (s *remoteService) Reauthenticate(ctx context.Context, card domain.CardIdentifier, pin domain.PinCode) domain.AuthResult {
	return s.Verify(ctx, card, pin, PurposeStepUp)
}

// Verify implements Service.
func (s *remoteService) Verify(
	ctx context.Context,
	card domain.CardIdentifier,
	pin domain.PinCode,
	purpose Purpose,
) domain.AuthResult {
	log := logger.FromContext(ctx).With(
		"component", "auth_service",
		"card", redact.Card(card.String()),
		"purpose", string(purpose))

	if err := pin.Validate(); err != nil {
		log.Warn("refusing to verify incomplete PIN")
		return domain.AuthResult{Status: domain.AuthWrongCredentials, Identity: domain.NoIdentity, Message: err.Error()}
	}

	resp, err := s.transport.Post(ctx, PathAuth, authRequest{
		CardNumber: card.String(),
		PinCode:    string(pin),
	})
	payload, err := s.classifier.Classify(resp, err, func(p remote.Payload) bool {
		return p.Bool("success")
	})
	if err != nil {
		result := failure(err)
		log.Info("verification failed", "status", result.Status.String(), "error", redact.Error(err))
		return result
	}

	var reply authReply
	if err := remote.DecodeValid(payload, &reply); err != nil {
		log.Warn("verification reply incomplete", "error", err)
		return failure(err)
	}

	identity := domain.Identity{
		FirstName: reply.Customer.FirstName,
		LastName:  reply.Customer.LastName,
		AccountID: *reply.AccountID,
		CardType:  reply.CardType,
	}
	if !identity.IsValid() {
		log.Warn("verification reply carries sentinel identity", "account_id", identity.AccountID)
		return failure(remote.NewError(remote.ErrMalformedResponse, msgMalformed))
	}

	log.Info("verification succeeded", "account_id", identity.AccountID)
	return domain.AuthResult{Status: domain.AuthSuccess, Identity: identity}
}
