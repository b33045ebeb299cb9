package model

import "time"

// User is a platform account as returned by the booking API.
// Owners (fleet operators managed by admins) and operators (staff assigned
// to schedules) share this shape.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	IsBlocked bool      `json:"isBlocked"`
	CreatedAt time.Time `json:"createdAt"`
}

// RecordID returns the user identifier.
func (u User) RecordID() string { return u.ID }

// StatusLabel is the label shown in the status column.
func (u User) StatusLabel() string {
	if u.IsBlocked {
		return "Inactive"
	}
	return "Active"
}
