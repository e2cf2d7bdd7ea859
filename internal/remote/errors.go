package remote

import (
	"errors"
	"fmt"
)

// Classification errors. Every failed exchange is reported as an *Error whose
// Kind is one of these.
var (
	// ErrTransport indicates that no usable response was received.
	ErrTransport = errors.New("transport error")

	// ErrMalformedResponse indicates a response that is not valid structured
	// data or lacks a required field.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrCardBlocked indicates that the server reported the card as blocked.
	ErrCardBlocked = errors.New("card blocked")

	// ErrRejected indicates a well-formed response that was not a success.
	ErrRejected = errors.New("request rejected")
)

// UnknownErrorMessage is reported when a rejection carries no server message.
const UnknownErrorMessage = "Unknown error"

// Error is a classified exchange failure. Message is safe to show on the
// display.
type Error struct {
	Kind    error
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

// Unwrap returns the classification sentinel so errors.Is works.
func (e *Error) Unwrap() error {
	return e.Kind
}

// NewError builds a classified error.
func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// MessageOf returns the user-facing message carried by err.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var re *Error
	if errors.As(err, &re) {
		if re.Message != "" {
			return re.Message
		}
		return re.Kind.Error()
	}
	return err.Error()
}
