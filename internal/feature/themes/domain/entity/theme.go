// Package entity defines the domain models for the themes feature.
package entity

import "strings"

// Theme groups tickers under a named investment theme addressed by Slug.
type Theme struct {
	ID          string
	Slug        string
	Name        string
	Description string
	Tickers     []string
}

// HasTicker reports whether ticker belongs to the theme, ignoring case.
func (t Theme) HasTicker(ticker string) bool {
	ticker = strings.TrimSpace(ticker)
	for _, x := range t.Tickers {
		if strings.EqualFold(x, ticker) {
			return true
		}
	}
	return false
}
