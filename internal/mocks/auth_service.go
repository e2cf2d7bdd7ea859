package mocks

import (
	"context"

	"github.com/phrazzld/atm-session/internal/domain"
	"github.com/phrazzld/atm-session/internal/service/auth"
	"github.com/stretchr/testify/mock"
)

// TestifyMockAuthService is a mock of auth.Service for use with testify/mock.
// Authenticate and Reauthenticate delegate to Verify so expectations only
// need to be set once.
type TestifyMockAuthService struct {
	mock.Mock
}

// Ensure the mock implements auth.Service
var _ auth.Service = (*TestifyMockAuthService)(nil)

// Verify is a mock implementation of auth.Service.Verify
func (m *TestifyMockAuthService) Verify(
	ctx context.Context,
	card domain.CardIdentifier,
	pin domain.PinCode,
	purpose auth.Purpose,
) domain.AuthResult {
	args := m.Called(ctx, card, pin, purpose)
	return args.Get(0).(domain.AuthResult)
}

// Authenticate is a mock implementation of auth.Service.Authenticate
func (m *TestifyMockAuthService) Authenticate(ctx context.Context, card domain.CardIdentifier, pin domain.PinCode) domain.AuthResult {
	return m.Verify(ctx, card, pin, auth.PurposeLogin)
}

// Reauthenticate is a mock implementation of auth.Service.Reauthenticate
func (m *TestifyMockAuthService) Reauthenticate(ctx context.Context, card domain.CardIdentifier, pin domain.PinCode) domain.AuthResult {
	return m.Verify(ctx, card, pin, auth.PurposeStepUp)
}
