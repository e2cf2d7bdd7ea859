// Package redact provides utilities for masking card holder secrets in strings
// before they are logged or shown on the display. PIN codes never leave the
// process in clear text and card identifiers keep only their last four
// characters.
package redact

import (
	"regexp"
	"strings"
)

// Constants for redaction placeholders
const (
	RedactionPlaceholder    = "[REDACTED]"
	RedactedPINPlaceholder  = "[REDACTED_PIN]"
	RedactedJWTPlaceholder  = "[REDACTED_JWT]"
	RedactedCardPlaceholder = "[REDACTED_CARD]"

	// visibleCardChars is how many trailing characters of a card identifier stay readable.
	visibleCardChars = 4
)

// Precompiled regex patterns
var (
	// "pin_code":"1234" or pin_code=1234 in request dumps and error texts
	pinFieldRegex = regexp.MustCompile(`(?i)("?pin(?:_code)?"?\s*[:=]\s*"?)[0-9]+("?)`)

	// "card_number":"1234567890"
	cardFieldRegex = regexp.MustCompile(`(?i)("?card_number"?\s*[:=]\s*"?)([0-9A-Za-z]+)("?)`)

	// JWT token pattern - matches the standard three-part base64url-encoded JWT token format
	jwtTokenRegex = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`)

	// token=<value> cookies
	tokenCookieRegex = regexp.MustCompile(`(?i)(token=)[^;\s"]+`)

	// Bare runs of 8+ digits look like card numbers.
	digitRunRegex = regexp.MustCompile(`\b[0-9]{8,19}\b`)
)

// String redacts PINs, card numbers and session tokens from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := pinFieldRegex.ReplaceAllString(input, "${1}"+RedactedPINPlaceholder+"${2}")
	result = cardFieldRegex.ReplaceAllStringFunc(result, func(m string) string {
		parts := cardFieldRegex.FindStringSubmatch(m)
		return parts[1] + Card(parts[2]) + parts[3]
	})
	result = jwtTokenRegex.ReplaceAllString(result, RedactedJWTPlaceholder)
	result = tokenCookieRegex.ReplaceAllString(result, "${1}"+RedactionPlaceholder)
	result = digitRunRegex.ReplaceAllStringFunc(result, Card)

	return result
}

// Error redacts sensitive information from an error's Error() output
func Error(err error) string {
	if err == nil {
		return ""
	}

	return String(err.Error())
}

// Card masks all but the last four characters of a card identifier.
// Identifiers of four characters or fewer are replaced entirely.
func Card(card string) string {
	if card == "" {
		return ""
	}
	if len(card) <= visibleCardChars {
		return RedactedCardPlaceholder
	}
	return strings.Repeat("*", len(card)-visibleCardChars) + card[len(card)-visibleCardChars:]
}
