// Package remote talks to the banking API on behalf of the terminal.
//
// It provides the Transport abstraction (a JSON request goes out, a JSON
// response or a transport error comes back), the net/http implementation
// that carries the session cookie between calls, and the Classifier that
// turns every response into either an accepted payload or one of the
// classification errors defined in errors.go. Both service facades share the
// same Classifier so that the card-blocked signal is detected identically at
// every call site.
package remote
