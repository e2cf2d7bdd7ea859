package domain

import "strings"

// PinLength is the number of decimal digits in a PIN code.
const PinLength = 4

// CardIdentifier is the opaque token a card reader yields for a presented card.
// It is immutable once captured and lives only as long as the session it opened.
type CardIdentifier string

// NewCardIdentifier normalizes a raw reader value into a CardIdentifier.
// Surrounding whitespace (readers commonly terminate with CR/LF) is removed.
func NewCardIdentifier(raw string) (CardIdentifier, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrEmptyCardIdentifier
	}
	return CardIdentifier(trimmed), nil
}

// String returns the identifier as a plain string.
func (c CardIdentifier) String() string {
	return string(c)
}

// PinCode is a PIN of exactly PinLength decimal digits.
type PinCode string

// Validate reports ErrIncompletePin unless the code is exactly four decimal digits.
func (p PinCode) Validate() error {
	if len(p) != PinLength {
		return ErrIncompletePin
	}
	for _, r := range p {
		if !IsDigit(r) {
			return ErrIncompletePin
		}
	}
	return nil
}

// IsDigit reports whether r is an ASCII decimal digit.
func IsDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
