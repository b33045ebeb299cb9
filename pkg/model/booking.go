package model

import "time"

// Booking is a passenger reservation on a schedule. Bookings are read-only
// in the console.
type Booking struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	ScheduleID  string    `json:"scheduleId"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	PickupStop  string    `json:"pickupStops"`
	DropStop    string    `json:"dropStops"`
	Status      string    `json:"status"`
	SeatsBooked []string  `json:"seatsBooked"`
	TotalAmount float64   `json:"totalAmount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RecordID returns the booking identifier, falling back to the user id the
// way the bookings table keys its rows.
func (b Booking) RecordID() string {
	if b.ID != "" {
		return b.ID
	}
	return b.UserID
}

// IsConfirmed reports whether payment succeeded.
func (b Booking) IsConfirmed() bool { return b.Status == "success" }
