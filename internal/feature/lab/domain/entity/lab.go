// Package entity defines the domain models for the IMI Lab feature.
package entity

import (
	"time"

	sigentity "imi_backend/internal/feature/signals/domain/entity"
)

// UserAnalysis is one lab run: a user's own median guess recorded against a signal.
type UserAnalysis struct {
	ID           string
	UserID       string
	SignalID     string
	UserGuessP50 *float64
	Notes        string
	Tags         []string
	CreatedAt    time.Time
}

// NewAnalysis is the input for recording a lab run.
// Signal, when present, takes precedence over SignalID.
type NewAnalysis struct {
	Signal       *sigentity.Signal
	SignalID     string
	UserGuessP50 *float64
	Notes        string
	Tags         []string
}

// UserStats compares the model's and the user's mean absolute error against realized returns.
type UserStats struct {
	Count    int
	ModelMAE *float64
	UserMAE  *float64
}

// Watchlist is a named set of tickers owned by one user.
type Watchlist struct {
	ID        string
	UserID    string
	Name      string
	Tickers   []string
	CreatedAt time.Time
}
