package validate

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/me/busdesk/pkg/model"
)

func messages(errs []model.FieldError) map[string]string {
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		out[e.Field] = e.Message
	}
	return out
}

func TestBusForm(t *testing.T) {
	v := New()
	tests := []struct {
		name string
		form BusForm
		want map[string]string
	}{
		{
			name: "valid",
			form: BusForm{Name: "Volvo 9600", Type: "sleeper", Status: "Active", AC: "true", SeatsTotal: "36"},
			want: map[string]string{},
		},
		{
			name: "leading space and zero seats",
			form: BusForm{Name: " Volvo", Type: "sleeper", Status: "Active", AC: "false", SeatsTotal: "036"},
			want: map[string]string{
				"name":       "Bus name must not start with spaces",
				"seatsTotal": "Seats must be greater than 0 and not start with 0",
			},
		},
		{
			name: "missing and bad enums",
			form: BusForm{Type: "double-decker", Status: "Retired", AC: "maybe"},
			want: map[string]string{
				"name":       "Bus name is required",
				"type":       "Invalid bus type",
				"status":     "Invalid status",
				"ac":         "Invalid AC option",
				"seatsTotal": "Total seats is required",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, messages(v.Bus(tt.form))); diff != "" {
				t.Errorf("errors mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRouteForm(t *testing.T) {
	v := New()
	valid := RouteForm{Source: " Kochi ", Destination: "Munnar", Distance: "130", EstimatedTime: "4.5", PickupStops: "Kochi, Aluva", DropStops: "Adimali,Munnar"}
	if errs := v.Route(valid); len(errs) != 0 {
		t.Fatalf("valid route rejected: %v", errs)
	}

	bad := RouteForm{Source: "Kochi1", Destination: "", Distance: "-3", EstimatedTime: "soon", PickupStops: "Kochi,,Aluva", DropStops: "Munnar"}
	want := map[string]string{
		"source":        "Source must contain only letters",
		"destination":   "Destination is required",
		"distance":      "Must be a number greater than 0",
		"estimatedTime": "Must be a number greater than 0",
		"pickupStops":   "Must contain at least one stop",
	}
	if diff := cmp.Diff(want, messages(v.Route(bad))); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}

	r := valid.ToRoute("own_1")
	if diff := cmp.Diff([]string{"Kochi", "Aluva"}, r.PickupStops); diff != "" {
		t.Errorf("pickup stops (-want +got):\n%s", diff)
	}
	if r.Source != "Kochi" || r.EstimatedTime != 4.5 {
		t.Errorf("route = %+v", r)
	}
}

func TestScheduleForm(t *testing.T) {
	v := New()
	valid := ScheduleForm{Price: "450", StartTime: "08:00", EndTime: "12:30", BusID: "b1", RouteID: "r1", Dates: []string{"2025-07-01", "2025-07-02"}}
	if errs := v.Schedule(valid); len(errs) != 0 {
		t.Fatalf("valid schedule rejected: %v", errs)
	}

	tests := []struct {
		name  string
		patch func(*ScheduleForm)
		field string
		msg   string
	}{
		{"price below one", func(f *ScheduleForm) { f.Price = "0.5" }, "price", "Price must be greater than 0"},
		{"end before start", func(f *ScheduleForm) { f.EndTime = "07:59" }, "endTime", "End time must be later than start time"},
		{"end equals start", func(f *ScheduleForm) { f.EndTime = "08:00" }, "endTime", "End time must be later than start time"},
		{"bad clock", func(f *ScheduleForm) { f.StartTime = "8am" }, "startTime", "Enter the start time as HH:MM"},
		{"no bus", func(f *ScheduleForm) { f.BusID = "" }, "busId", "Bus selection is required"},
		{"no dates", func(f *ScheduleForm) { f.Dates = nil }, "dates", "At least one departure date is required"},
		{"bad date", func(f *ScheduleForm) { f.Dates = []string{"07/01/2025"} }, "dates", "Invalid date format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid
			f.Dates = append([]string(nil), valid.Dates...)
			tt.patch(&f)
			got := messages(v.Schedule(f))
			if got[tt.field] != tt.msg {
				t.Errorf("%s = %q, want %q (all: %v)", tt.field, got[tt.field], tt.msg, got)
			}
		})
	}

	s := valid.ToSchedule("own_1")
	if s.Status != model.ScheduleStatusScheduled || !s.IsActive || len(s.DateSlots) != 2 {
		t.Errorf("schedule = %+v", s)
	}
	if slots := valid.SeatSlots(); len(slots) != 2 || !slots[0].IsAvailable {
		t.Errorf("slots = %+v", slots)
	}
}

func TestField(t *testing.T) {
	v := New()
	tests := []struct {
		name    string
		coll    model.Collection
		field   string
		value   string
		choices []string
		want    string
	}{
		{"empty price", model.CollectionSchedules, "price", "   ", nil, "Schedule price cannot be empty."},
		{"zero price", model.CollectionSchedules, "price", "0", nil, "Price must be greater than 0"},
		{"good price", model.CollectionSchedules, "price", "499", nil, ""},
		{"bad time", model.CollectionSchedules, "startTime", "25:00", nil, "Enter the start time as HH:MM"},
		{"empty end", model.CollectionSchedules, "endTime", "", nil, "Schedule end time cannot be empty."},
		{"unknown bus", model.CollectionSchedules, "busId", "b9", []string{"b1", "b2"}, "Select one of your buses"},
		{"known bus", model.CollectionSchedules, "busId", "b2", []string{"b1", "b2"}, ""},
		{"bus type", model.CollectionBuses, "type", "double", nil, "Invalid bus type"},
		{"bus status", model.CollectionBuses, "status", "Inactive", nil, ""},
		{"route stops", model.CollectionRoutes, "dropStops", "A,,B", nil, "Must contain at least one stop"},
		{"not editable", model.CollectionBookings, "name", "x", nil, "This field cannot be edited."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fe := v.Field(tt.coll, tt.field, tt.value, tt.choices)
			got := ""
			if fe != nil {
				got = fe.Message
				if fe.Field != tt.field {
					t.Errorf("Field = %q, want %q", fe.Field, tt.field)
				}
			}
			if got != tt.want {
				t.Errorf("message = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEditableFields(t *testing.T) {
	got := EditableFields(model.CollectionSchedules)
	want := []string{"busId", "endTime", "price", "startTime"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
	if len(EditableFields(model.CollectionBookings)) != 0 {
		t.Error("bookings should not be editable")
	}
}
