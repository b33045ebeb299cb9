package validate

import (
	"slices"
	"strings"

	"github.com/me/busdesk/pkg/model"
)

// FieldRule describes how one editable field is prompted and checked.
type FieldRule struct {
	Label string // prompt label, e.g. "schedule price"
	Input string // HTML input type: text, number, time, select
	Empty string // message when the answer is blank
	Tag   string // validator tag applied to the trimmed answer
	Bad   string // message when Tag fails
	// Choices, when set, restricts the answer to a fixed set. Fields whose
	// choices come from a sibling collection get them at call time.
	Choices []string
}

var fieldRules = map[model.Collection]map[string]FieldRule{
	model.CollectionSchedules: {
		"price":     {Label: "schedule price", Input: "number", Empty: "Schedule price cannot be empty.", Tag: "min_price", Bad: "Price must be greater than 0"},
		"startTime": {Label: "schedule start time", Input: "time", Empty: "Schedule start time cannot be empty.", Tag: "clock", Bad: "Enter the start time as HH:MM"},
		"endTime":   {Label: "schedule end time", Input: "time", Empty: "Schedule end time cannot be empty.", Tag: "clock", Bad: "Enter the end time as HH:MM"},
		"busId":     {Label: "schedule bus", Input: "select", Empty: "Schedule bus cannot be empty.", Bad: "Select one of your buses"},
	},
	model.CollectionBuses: {
		"name":   {Label: "bus name", Input: "text", Empty: "Bus name cannot be empty.", Tag: "no_leading_space,not_blank", Bad: "Bus name must not start with spaces"},
		"type":   {Label: "bus type", Input: "select", Empty: "Bus type cannot be empty.", Bad: "Invalid bus type", Choices: []string{string(model.BusSeater), string(model.BusSleeper)}},
		"status": {Label: "bus status", Input: "select", Empty: "Bus status cannot be empty.", Bad: "Invalid status", Choices: []string{string(model.BusActive), string(model.BusInactive)}},
	},
	model.CollectionRoutes: {
		"source":        {Label: "route source", Input: "text", Empty: "Route source cannot be empty.", Tag: "letters", Bad: "Source must contain only letters"},
		"destination":   {Label: "route destination", Input: "text", Empty: "Route destination cannot be empty.", Tag: "letters", Bad: "Destination must contain only letters"},
		"distance":      {Label: "route distance", Input: "number", Empty: "Route distance cannot be empty.", Tag: "positive_number", Bad: "Must be a number greater than 0"},
		"estimatedTime": {Label: "estimated time", Input: "number", Empty: "Estimated time cannot be empty.", Tag: "positive_number", Bad: "Must be a number greater than 0"},
		"pickupStops":   {Label: "pickup stops", Input: "text", Empty: "Pickup stops cannot be empty.", Tag: "stop_list", Bad: "Must contain at least one stop"},
		"dropStops":     {Label: "drop stops", Input: "text", Empty: "Drop stops cannot be empty.", Tag: "stop_list", Bad: "Must contain at least one stop"},
	},
}

// Rule returns the edit rule for a collection field.
func Rule(coll model.Collection, field string) (FieldRule, bool) {
	r, ok := fieldRules[coll][field]
	return r, ok
}

// EditableFields lists the editable fields of a collection in a stable order.
func EditableFields(coll model.Collection) []string {
	fields := make([]string, 0, len(fieldRules[coll]))
	for f := range fieldRules[coll] {
		fields = append(fields, f)
	}
	slices.Sort(fields)
	return fields
}

// Field checks an edit answer. choices, when non-nil, overrides the rule's
// fixed choices (e.g. the ids of the owner's buses).
func (v *Validator) Field(coll model.Collection, field, value string, choices []string) *model.FieldError {
	rule, ok := Rule(coll, field)
	if !ok {
		return &model.FieldError{Field: field, Message: "This field cannot be edited."}
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return &model.FieldError{Field: field, Message: rule.Empty}
	}
	if rule.Tag != "" && !v.Var(value, rule.Tag) {
		return &model.FieldError{Field: field, Message: rule.Bad}
	}
	if choices == nil {
		choices = rule.Choices
	}
	if choices != nil && !slices.Contains(choices, value) {
		return &model.FieldError{Field: field, Message: rule.Bad}
	}
	return nil
}
