package auth

import (
	"errors"

	"github.com/phrazzld/atm-session/internal/domain"
	"github.com/phrazzld/atm-session/internal/remote"
)

// Generic messages used when the server supplies none.
const (
	msgMalformed = "Invalid response from server"
	msgTransport = "Could not reach the bank"
)

// statusFor maps a classified exchange error onto an authentication status.
// The card-blocked signal is checked first.
func statusFor(err error) domain.AuthStatus {
	switch {
	case errors.Is(err, remote.ErrCardBlocked):
		return domain.AuthCardBlocked
	case errors.Is(err, remote.ErrTransport):
		return domain.AuthTransportError
	case errors.Is(err, remote.ErrMalformedResponse):
		return domain.AuthMalformedResponse
	default:
		return domain.AuthWrongCredentials
	}
}

// failure converts a classified error into a failed AuthResult.
func failure(err error) domain.AuthResult {
	status := statusFor(err)
	msg := remote.MessageOf(err)
	if msg == "" {
		switch status {
		case domain.AuthTransportError:
			msg = msgTransport
		case domain.AuthMalformedResponse:
			msg = msgMalformed
		default:
			msg = remote.UnknownErrorMessage
		}
	}
	return domain.AuthResult{
		Status:   status,
		Identity: domain.NoIdentity,
		Message:  msg,
	}
}
