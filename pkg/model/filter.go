package model

import "strings"

// StatusFilter restricts a list to active or blocked records.
type StatusFilter string

const (
	StatusAny     StatusFilter = ""
	StatusActive  StatusFilter = "active"
	StatusBlocked StatusFilter = "blocked"
)

// ParseStatusFilter normalizes a user supplied status value. "inactive" is
// accepted as an alias for "blocked"; anything else means no constraint.
func ParseStatusFilter(s string) StatusFilter {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active":
		return StatusActive
	case "blocked", "inactive":
		return StatusBlocked
	default:
		return StatusAny
	}
}

// DateFilter restricts a list to records created within a trailing window.
type DateFilter string

const (
	DateAny        DateFilter = ""
	DateLast7Days  DateFilter = "last_7_days"
	DateLast30Days DateFilter = "last_30_days"
	DateLast90Days DateFilter = "last_90_days"
)

var dateFilterDays = map[DateFilter]int{
	DateLast7Days:  7,
	DateLast30Days: 30,
	DateLast90Days: 90,
}

// Days returns the window length for the filter. ok is false for the empty
// filter and for unrecognized tokens, both of which apply no constraint.
func (d DateFilter) Days() (days int, ok bool) {
	days, ok = dateFilterDays[d]
	return days, ok
}

// FilterCriteria is the combination of text, status, and date constraints
// applied to a list view. The zero value matches everything.
type FilterCriteria struct {
	SearchText   string       `json:"searchText,omitempty"`
	StatusFilter StatusFilter `json:"statusFilter,omitempty"`
	DateFilter   DateFilter   `json:"dateFilter,omitempty"`
}

// IsZero reports whether no constraint is set.
func (c FilterCriteria) IsZero() bool {
	return c.SearchText == "" && c.StatusFilter == StatusAny && c.DateFilter == DateAny
}
