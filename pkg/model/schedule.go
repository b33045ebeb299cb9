package model

import "time"

// ScheduleStatusScheduled is the status assigned to newly created schedules.
const ScheduleStatusScheduled = "Scheduled"

// Schedule is a priced departure of a bus on a route.
type Schedule struct {
	ID         string      `json:"id,omitempty"`
	OwnerID    string      `json:"ownerId"`
	BusID      string      `json:"busId"`
	RouteID    string      `json:"routeId"`
	OperatorID string      `json:"operatorId"`
	Price      float64     `json:"price"`
	StartTime  string      `json:"startTime"` // HH:MM
	EndTime    string      `json:"endTime"`   // HH:MM
	Status     string      `json:"status"`
	IsActive   bool        `json:"isActive"`
	DateSlots  []time.Time `json:"dateSlots,omitempty"`
	CreatedAt  time.Time   `json:"createdAt,omitzero"`
}

// RecordID returns the schedule identifier.
func (s Schedule) RecordID() string { return s.ID }

// SeatSlot marks one departure date as bookable.
type SeatSlot struct {
	Date        time.Time `json:"date"`
	IsAvailable bool      `json:"isAvailable"`
}
