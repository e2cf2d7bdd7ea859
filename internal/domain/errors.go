package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when local input fails validation.
	// It is the root of every input error below and is never sent to the remote API.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyCardIdentifier is returned when the reader yields a blank identifier.
	ErrEmptyCardIdentifier = fmt.Errorf("%w: card identifier cannot be empty", ErrValidation)

	// ErrIncompletePin is returned when a PIN is submitted without exactly four digits.
	ErrIncompletePin = fmt.Errorf("%w: PIN must be exactly %d digits", ErrValidation, PinLength)

	// ErrInvalidAmount is returned when an amount is unparsable or not positive.
	ErrInvalidAmount = fmt.Errorf("%w: amount must be a positive number", ErrValidation)

	// ErrUnknownOperation is returned for an operation kind outside the supported set.
	ErrUnknownOperation = fmt.Errorf("%w: unknown operation", ErrValidation)

	// ErrUnknownPreset is returned when a withdrawal preset index does not exist.
	ErrUnknownPreset = fmt.Errorf("%w: unknown withdrawal preset", ErrValidation)
)
