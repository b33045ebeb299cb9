package model

import "time"

// BusType is the seating layout of a bus.
type BusType string

const (
	BusSeater  BusType = "seater"
	BusSleeper BusType = "sleeper"
)

// BusStatus is the operational status of a bus.
type BusStatus string

const (
	BusActive   BusStatus = "Active"
	BusInactive BusStatus = "Inactive"
)

// Bus is a vehicle in an owner's fleet.
type Bus struct {
	ID         string    `json:"id,omitempty"`
	OwnerID    string    `json:"ownerId"`
	Name       string    `json:"name"`
	Type       BusType   `json:"type"`
	Status     BusStatus `json:"status"`
	AC         bool      `json:"ac"`
	SeatsTotal int       `json:"seatsTotal"`
	CreatedAt  time.Time `json:"createdAt,omitzero"`
}

// RecordID returns the bus identifier.
func (b Bus) RecordID() string { return b.ID }

// IsInactive reports whether the bus is taken out of service.
func (b Bus) IsInactive() bool { return b.Status == BusInactive }
