// Package entity defines the domain models for the signals feature.
package entity

import "time"

// DefaultHorizonDays is the forecast horizon applied when a signal does not specify one.
const DefaultHorizonDays = 10

// Signal is one Impact Move Index forecast for a news item.
// P20/P50/P80 are percent excess-return quantiles over HorizonDays.
type Signal struct {
	ID          string
	Ticker      string
	Title       string
	URL         string
	Source      string
	Summary     string
	Drivers     string
	P20         float64
	P50         float64
	P80         float64
	Confidence  float64
	HorizonDays int
	CreatedDate time.Time

	// RealizedExcessReturn is nil until the horizon has elapsed and the outcome is known.
	RealizedExcessReturn *float64
	RealizedAt           *time.Time
}

// HorizonEnd returns the date at which the forecast horizon closes.
func (s Signal) HorizonEnd() time.Time {
	return s.CreatedDate.AddDate(0, 0, s.HorizonDays)
}

// IsRealized reports whether the realized outcome is recorded.
func (s Signal) IsRealized() bool {
	return s.RealizedExcessReturn != nil
}

// IsDue reports whether the horizon has elapsed at now and the outcome is still missing.
func (s Signal) IsDue(now time.Time) bool {
	return !s.IsRealized() && !s.HorizonEnd().After(now)
}
