package validate

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/me/busdesk/pkg/model"
)

// BusForm is the add-bus form as submitted.
type BusForm struct {
	Name       string `json:"name" validate:"required,no_leading_space,not_blank"`
	Type       string `json:"type" validate:"required,oneof=seater sleeper"`
	Status     string `json:"status" validate:"required,oneof=Active Inactive"`
	AC         string `json:"ac" validate:"required,oneof=true false"`
	SeatsTotal string `json:"seatsTotal" validate:"required,seat_count"`
}

var busMessages = Messages{
	"name": {
		"required":         "Bus name is required",
		"no_leading_space": "Bus name must not start with spaces",
		"not_blank":        "Bus name cannot be only spaces",
	},
	"type":       {"required": "Bus type is required", "*": "Invalid bus type"},
	"status":     {"required": "Status is required", "*": "Invalid status"},
	"ac":         {"required": "ac or not is required", "*": "Invalid AC option"},
	"seatsTotal": {"required": "Total seats is required", "*": "Seats must be greater than 0 and not start with 0"},
}

// Bus validates f.
func (v *Validator) Bus(f BusForm) []model.FieldError {
	return v.Struct(f, busMessages)
}

// ToBus converts a valid form into the create payload.
func (f BusForm) ToBus(ownerID string) model.Bus {
	seats, _ := strconv.Atoi(f.SeatsTotal)
	return model.Bus{
		OwnerID:    ownerID,
		Name:       f.Name,
		Type:       model.BusType(f.Type),
		Status:     model.BusStatus(f.Status),
		AC:         f.AC == "true",
		SeatsTotal: seats,
	}
}

// RouteForm is the add-route form as submitted.
type RouteForm struct {
	Source        string `json:"source" validate:"required,no_leading_space,letters"`
	Destination   string `json:"destination" validate:"required,no_leading_space,letters"`
	Distance      string `json:"distance" validate:"required,positive_number"`
	EstimatedTime string `json:"estimatedTime" validate:"required,positive_number"`
	PickupStops   string `json:"pickupStops" validate:"required,stop_list"`
	DropStops     string `json:"dropStops" validate:"required,stop_list"`
}

var routeMessages = Messages{
	"source": {
		"required":         "Source is required",
		"no_leading_space": "Source cannot start with a space",
		"letters":          "Source must contain only letters",
	},
	"destination": {
		"required":         "Destination is required",
		"no_leading_space": "Destination cannot start with a space",
		"letters":          "Destination must contain only letters",
	},
	"distance":      {"required": "Distance is required", "*": "Must be a number greater than 0"},
	"estimatedTime": {"required": "Estimated time is required", "*": "Must be a number greater than 0"},
	"pickupStops":   {"required": "Pickup stops are required", "*": "Must contain at least one stop"},
	"dropStops":     {"required": "Drop stops are required", "*": "Must contain at least one stop"},
}

// Route validates f. Source and destination are trimmed first.
func (v *Validator) Route(f RouteForm) []model.FieldError {
	f.Source = strings.TrimSpace(f.Source)
	f.Destination = strings.TrimSpace(f.Destination)
	return v.Struct(f, routeMessages)
}

// ToRoute converts a valid form into the create payload.
func (f RouteForm) ToRoute(ownerID string) model.Route {
	dist, _ := parseNumber(f.Distance)
	eta, _ := parseNumber(f.EstimatedTime)
	return model.Route{
		OwnerID:       ownerID,
		Source:        strings.TrimSpace(f.Source),
		Destination:   strings.TrimSpace(f.Destination),
		Distance:      dist,
		EstimatedTime: eta,
		PickupStops:   model.SplitStops(f.PickupStops),
		DropStops:     model.SplitStops(f.DropStops),
	}
}

// ScheduleForm is the add-schedule form as submitted. Dates are
// YYYY-MM-DD departure days.
type ScheduleForm struct {
	Price      string   `json:"price" validate:"required,min_price"`
	StartTime  string   `json:"startTime" validate:"required,clock"`
	EndTime    string   `json:"endTime" validate:"required,clock"`
	BusID      string   `json:"busId" validate:"required"`
	RouteID    string   `json:"routeId" validate:"required"`
	OperatorID string   `json:"operatorId"`
	Dates      []string `json:"dates" validate:"min=1,dive,date"`
}

var scheduleMessages = Messages{
	"price":     {"required": "Price is required", "*": "Price must be greater than 0"},
	"startTime": {"required": "Start time is required", "*": "Enter the start time as HH:MM"},
	"endTime": {
		"required":    "End time is required",
		"after_start": "End time must be later than start time",
		"*":           "Enter the end time as HH:MM",
	},
	"busId":   {"*": "Bus selection is required"},
	"routeId": {"*": "Route selection is required"},
	"dates":   {"min": "At least one departure date is required", "*": "Invalid date format"},
}

func scheduleTimes(sl validator.StructLevel) {
	f := sl.Current().Interface().(ScheduleForm)
	if !clockRe.MatchString(f.StartTime) || !clockRe.MatchString(f.EndTime) {
		return
	}
	// HH:MM compares correctly as text.
	if f.EndTime <= f.StartTime {
		sl.ReportError(f.EndTime, "endTime", "EndTime", "after_start", "")
	}
}

// Schedule validates f.
func (v *Validator) Schedule(f ScheduleForm) []model.FieldError {
	return v.Struct(f, scheduleMessages)
}

// ToSchedule converts a valid form into the create payload.
func (f ScheduleForm) ToSchedule(ownerID string) model.Schedule {
	price, _ := parseNumber(f.Price)
	dates := make([]time.Time, 0, len(f.Dates))
	for _, d := range f.Dates {
		if t, err := time.Parse(time.DateOnly, d); err == nil {
			dates = append(dates, t)
		}
	}
	return model.Schedule{
		OwnerID:    ownerID,
		BusID:      f.BusID,
		RouteID:    f.RouteID,
		OperatorID: f.OperatorID,
		Price:      price,
		StartTime:  f.StartTime,
		EndTime:    f.EndTime,
		Status:     model.ScheduleStatusScheduled,
		IsActive:   true,
		DateSlots:  dates,
	}
}

// SeatSlots returns the seat availability to initialize for a new schedule.
func (f ScheduleForm) SeatSlots() []model.SeatSlot {
	s := f.ToSchedule("")
	slots := make([]model.SeatSlot, len(s.DateSlots))
	for i, d := range s.DateSlots {
		slots[i] = model.SeatSlot{Date: d, IsAvailable: true}
	}
	return slots
}
