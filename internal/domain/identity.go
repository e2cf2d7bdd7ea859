package domain

// NoAccount is the sentinel account ID carried by a failed or timed-out authentication.
const NoAccount = -1

// Identity is the authenticated card holder, produced only by a successful
// exchange with the remote API.
type Identity struct {
	FirstName string
	LastName  string
	AccountID int
	CardType  string
}

// NoIdentity is the sentinel value meaning "not authenticated".
var NoIdentity = Identity{AccountID: NoAccount}

// IsValid reports whether the identity is a real authenticated holder.
// An empty first name or the sentinel account ID is never valid.
func (i Identity) IsValid() bool {
	return i.FirstName != "" && i.AccountID != NoAccount
}

// FullName joins first and last name for display.
func (i Identity) FullName() string {
	if i.LastName == "" {
		return i.FirstName
	}
	return i.FirstName + " " + i.LastName
}

// AuthStatus tags the outcome of a PIN verification exchange.
type AuthStatus int

// Possible authentication outcomes.
const (
	AuthSuccess AuthStatus = iota
	AuthWrongCredentials
	AuthCardBlocked
	AuthTransportError
	AuthMalformedResponse
	// AuthTimedOut is synthesized locally when the PIN countdown expires.
	AuthTimedOut
)

// String returns a log-friendly name for the status.
func (s AuthStatus) String() string {
	switch s {
	case AuthSuccess:
		return "success"
	case AuthWrongCredentials:
		return "wrong_credentials"
	case AuthCardBlocked:
		return "card_blocked"
	case AuthTransportError:
		return "transport_error"
	case AuthMalformedResponse:
		return "malformed_response"
	case AuthTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// AuthResult is the tagged outcome of authenticate/reauthenticate.
// Identity is NoIdentity for every status except AuthSuccess.
type AuthResult struct {
	Status   AuthStatus
	Identity Identity
	// Message is the user-facing text: the server message, the transport
	// diagnostic, or a generic description.
	Message string
}

// Succeeded reports whether the result carries a valid identity.
func (r AuthResult) Succeeded() bool {
	return r.Status == AuthSuccess && r.Identity.IsValid()
}

// TimedOutResult is the failure synthesized when PIN entry runs out of time.
// It never involves the remote API.
func TimedOutResult() AuthResult {
	return AuthResult{
		Status:   AuthTimedOut,
		Identity: NoIdentity,
		Message:  "PIN entry timed out",
	}
}
