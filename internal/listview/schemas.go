package listview

import (
	"time"

	"github.com/me/busdesk/pkg/model"
)

// UserFields filters owners and operators by name, email, and phone.
var UserFields = Fields[model.User]{
	Folded:  []func(model.User) string{func(u model.User) string { return u.Name }, func(u model.User) string { return u.Email }},
	Raw:     []func(model.User) string{func(u model.User) string { return u.Phone }},
	Flag:    func(u model.User) bool { return u.IsBlocked },
	Created: func(u model.User) time.Time { return u.CreatedAt },
}

// BusFields filters buses by name; inactive buses count as blocked.
var BusFields = Fields[model.Bus]{
	Folded:  []func(model.Bus) string{func(b model.Bus) string { return b.Name }},
	Flag:    model.Bus.IsInactive,
	Created: func(b model.Bus) time.Time { return b.CreatedAt },
}

// RouteFields filters routes by source and destination. Routes carry no
// status, so the status filter does not apply.
var RouteFields = Fields[model.Route]{
	Folded: []func(model.Route) string{
		func(r model.Route) string { return r.Source },
		func(r model.Route) string { return r.Destination },
	},
	Created: func(r model.Route) time.Time { return r.CreatedAt },
}

// ScheduleFields filters schedules by status text and departure time.
var ScheduleFields = Fields[model.Schedule]{
	Folded:  []func(model.Schedule) string{func(s model.Schedule) string { return s.Status }},
	Raw:     []func(model.Schedule) string{func(s model.Schedule) string { return s.StartTime }},
	Flag:    func(s model.Schedule) bool { return !s.IsActive },
	Created: func(s model.Schedule) time.Time { return s.CreatedAt },
}

// BookingFields filters bookings by passenger name and phone.
var BookingFields = Fields[model.Booking]{
	Folded:  []func(model.Booking) string{func(b model.Booking) string { return b.Name }},
	Raw:     []func(model.Booking) string{func(b model.Booking) string { return b.Phone }},
	Created: func(b model.Booking) time.Time { return b.CreatedAt },
}
