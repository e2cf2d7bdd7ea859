package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/atm-session/internal/redact"
)

// validate checks required fields of decoded success payloads.
var validate = validator.New()

// Payload is a structurally valid JSON reply.
type Payload struct {
	StatusCode int
	Raw        json.RawMessage

	// Object holds the top-level fields when the reply is a JSON object.
	Object map[string]json.RawMessage

	// Array holds the elements when the reply is a JSON array.
	Array []json.RawMessage
}

// IsArray reports whether the reply is a JSON array.
func (p Payload) IsArray() bool {
	return p.Array != nil
}

// String returns the named top-level field as a string, or "" if it is
// missing or not a string.
func (p Payload) String(field string) string {
	raw, ok := p.Object[field]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Bool returns the named top-level field as a bool, or false.
func (p Payload) Bool(field string) bool {
	raw, ok := p.Object[field]
	if !ok {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false
	}
	return b
}

// Classifier applies the response classification shared by every facade.
type Classifier struct {
	blockedMarker string
}

// NewClassifier creates a classifier that treats any error message
// containing blockedMarker as the card-blocked signal.
func NewClassifier(blockedMarker string) *Classifier {
	return &Classifier{blockedMarker: blockedMarker}
}

// Blocked reports whether message carries the card-blocked signal.
func (c *Classifier) Blocked(message string) bool {
	return c.blockedMarker != "" && strings.Contains(message, c.blockedMarker)
}

// Classify turns the result of a Transport.Post into an accepted payload or
// a classified *Error. accept decides whether a well-formed 2xx reply is a
// success for the calling endpoint.
//
// Checks run in order: transport failure, unparsable body, card-blocked
// signal, accepted success, rejection.
func (c *Classifier) Classify(resp *Response, err error, accept func(Payload) bool) (Payload, error) {
	if err != nil {
		return Payload{}, NewError(ErrTransport, redact.Error(err))
	}
	if resp == nil {
		return Payload{}, NewError(ErrTransport, "no response")
	}

	payload, ok := parse(resp)
	if !ok {
		if !resp.OK() {
			return Payload{}, NewError(ErrTransport, httpStatusText(resp))
		}
		return Payload{}, NewError(ErrMalformedResponse, "response is not valid JSON")
	}

	if blocked, ok := c.blockedMessage(payload); ok {
		return payload, NewError(ErrCardBlocked, blocked)
	}
	message := errorMessage(payload)

	if resp.OK() && accept(payload) {
		return payload, nil
	}

	if message == "" {
		message = UnknownErrorMessage
	}
	return payload, NewError(ErrRejected, message)
}

// DecodeValid decodes an accepted payload into v and checks its required
// fields. A success missing a required field is a malformed response.
func DecodeValid(p Payload, v any) error {
	if err := json.Unmarshal(p.Raw, v); err != nil {
		return NewError(ErrMalformedResponse, fmt.Sprintf("unexpected payload shape: %v", err))
	}
	if err := validate.Struct(v); err != nil {
		return NewError(ErrMalformedResponse, fmt.Sprintf("missing required fields: %v", err))
	}
	return nil
}

// DecodeElements decodes every element of an array payload into a T and
// checks its required fields.
func DecodeElements[T any](p Payload) ([]T, error) {
	out := make([]T, 0, len(p.Array))
	for i, raw := range p.Array {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, NewError(ErrMalformedResponse, fmt.Sprintf("element %d: %v", i, err))
		}
		if err := validate.Struct(item); err != nil {
			return nil, NewError(ErrMalformedResponse, fmt.Sprintf("element %d missing required fields: %v", i, err))
		}
		out = append(out, item)
	}
	return out, nil
}

func parse(resp *Response) (Payload, bool) {
	body := bytes.TrimSpace(resp.Body)
	if len(body) == 0 || !json.Valid(body) {
		return Payload{}, false
	}

	p := Payload{StatusCode: resp.StatusCode, Raw: json.RawMessage(body)}
	switch body[0] {
	case '{':
		if err := json.Unmarshal(body, &p.Object); err != nil {
			return Payload{}, false
		}
	case '[':
		if err := json.Unmarshal(body, &p.Array); err != nil {
			return Payload{}, false
		}
		if p.Array == nil {
			p.Array = []json.RawMessage{}
		}
	}
	return p, true
}

// blockedMessage returns the first of "error" and "message" that carries the
// blocked marker.
func (c *Classifier) blockedMessage(p Payload) (string, bool) {
	for _, field := range []string{"error", "message"} {
		if msg := p.String(field); c.Blocked(msg) {
			return msg, true
		}
	}
	return "", false
}

// errorMessage extracts the server-supplied text, preferring "error".
func errorMessage(p Payload) string {
	if msg := p.String("error"); msg != "" {
		return msg
	}
	return p.String("message")
}

func httpStatusText(resp *Response) string {
	if resp.Status != "" {
		return "HTTP " + resp.Status
	}
	return fmt.Sprintf("HTTP %d", resp.StatusCode)
}
