// Package entity defines the domain models for the clusters feature.
package entity

import "time"

// Cluster is a hand-curated group of signals about the same event.
type Cluster struct {
	ID          string
	Name        string
	Description string
	SignalIDs   []string
	CreatedAt   time.Time
}

// AddSignal appends id unless it is already a member and reports whether it was added.
func (c *Cluster) AddSignal(id string) bool {
	for _, existing := range c.SignalIDs {
		if existing == id {
			return false
		}
	}
	c.SignalIDs = append(c.SignalIDs, id)
	return true
}
