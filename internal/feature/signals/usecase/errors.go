// Package usecase implements the business logic for the signals feature.
package usecase

import "errors"

var (
	// ErrSignalNotFound is returned when a signal cannot be found by ID.
	ErrSignalNotFound = errors.New("signal not found")

	// ErrInvalidSignal is returned when a signal fails validation before being stored.
	ErrInvalidSignal = errors.New("invalid signal")

	// ErrInvalidDirection is returned when a screener direction is not up, down or empty.
	ErrInvalidDirection = errors.New("invalid direction")

	// ErrDuplicateSignal is returned when a batch insert collides with an existing signal ID.
	ErrDuplicateSignal = errors.New("duplicate signal")
)
