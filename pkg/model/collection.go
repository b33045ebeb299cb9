package model

import "fmt"

// Collection names an entity list managed by the console.
type Collection string

const (
	CollectionOwners    Collection = "owners"
	CollectionOperators Collection = "operators"
	CollectionBuses     Collection = "buses"
	CollectionRoutes    Collection = "routes"
	CollectionSchedules Collection = "schedules"
	CollectionBookings  Collection = "bookings"
)

// Collections lists every known collection.
var Collections = []Collection{
	CollectionOwners,
	CollectionOperators,
	CollectionBuses,
	CollectionRoutes,
	CollectionSchedules,
	CollectionBookings,
}

// ParseCollection validates a collection name.
func ParseCollection(s string) (Collection, error) {
	for _, c := range Collections {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown collection %q", s)
}

// OwnerScoped reports whether the collection is listed per owner.
func (c Collection) OwnerScoped() bool {
	switch c {
	case CollectionBuses, CollectionRoutes, CollectionSchedules, CollectionBookings:
		return true
	}
	return false
}

// Singular returns the human noun for one record, used in messages.
func (c Collection) Singular() string {
	switch c {
	case CollectionOwners:
		return "owner"
	case CollectionOperators:
		return "operator"
	case CollectionBuses:
		return "bus"
	case CollectionRoutes:
		return "route"
	case CollectionSchedules:
		return "schedule"
	case CollectionBookings:
		return "booking"
	}
	return string(c)
}
