// Package usecase implements the business logic for the IMI Lab feature.
package usecase

import "errors"

var (
	// ErrMissingSignal is returned when a lab run names no signal.
	ErrMissingSignal = errors.New("signal or signal_id is required")

	// ErrInvalidWatchlist is returned when a watchlist fails validation.
	ErrInvalidWatchlist = errors.New("invalid watchlist")

	// ErrWatchlistNotFound is returned when a watchlist ID belongs to no watchlist of the user.
	ErrWatchlistNotFound = errors.New("watchlist not found")
)
