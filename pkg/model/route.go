package model

import (
	"strings"
	"time"
)

// Route is a source/destination pair with its stops.
type Route struct {
	ID            string    `json:"id,omitempty"`
	OwnerID       string    `json:"ownerId"`
	Source        string    `json:"source"`
	Destination   string    `json:"destination"`
	Distance      float64   `json:"distance"`
	EstimatedTime float64   `json:"estimatedTime"`
	PickupStops   []string  `json:"pickupStops"`
	DropStops     []string  `json:"dropStops"`
	CreatedAt     time.Time `json:"createdAt,omitzero"`
}

// RecordID returns the route identifier.
func (r Route) RecordID() string { return r.ID }

// Label renders the route as "Source - Destination".
func (r Route) Label() string {
	return r.Source + " - " + r.Destination
}

// JoinStops renders a stop list the way the tables show it.
func JoinStops(stops []string) string {
	return strings.Join(stops, " → ")
}

// SplitStops parses a comma separated stop list, trimming each entry.
func SplitStops(s string) []string {
	parts := strings.Split(s, ",")
	stops := make([]string, 0, len(parts))
	for _, p := range parts {
		stops = append(stops, strings.TrimSpace(p))
	}
	return stops
}
