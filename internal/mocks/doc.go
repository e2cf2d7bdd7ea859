// Package mocks provides shared test doubles for the terminal's collaborators.
//
// MockTransport replays canned API responses and records every request, so
// service tests can assert on paths and bodies without a server.
// TestifyMockAuthService and TestifyMockTransactionService are testify/mock
// implementations of the auth and transaction services, used by the
// operation executor and session controller tests:
//
//	verifier := new(mocks.TestifyMockAuthService)
//	verifier.On("Verify", mock.Anything, card, pin, auth.PurposeStepUp).
//	    Return(domain.AuthResult{Status: domain.AuthSuccess, Identity: holder})
package mocks
