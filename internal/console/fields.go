package console

import (
	"context"
	"strconv"
	"strings"

	"github.com/me/busdesk/internal/rowaction"
	"github.com/me/busdesk/internal/validate"
	"github.com/me/busdesk/pkg/model"
)

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func textValue(s string) any   { return s }
func numberValue(s string) any { return parseFloat(s) }
func stopsValue(s string) any  { return model.SplitStops(s) }

func joinStops(stops []string) string { return strings.Join(stops, ", ") }

// fixedChoices offers a rule's fixed answers.
func fixedChoices(coll model.Collection, field string) func(context.Context, Scope) ([]rowaction.Choice, error) {
	rule, _ := validate.Rule(coll, field)
	choices := make([]rowaction.Choice, len(rule.Choices))
	for i, c := range rule.Choices {
		choices[i] = rowaction.Choice{Value: c, Label: c}
	}
	return func(context.Context, Scope) ([]rowaction.Choice, error) {
		return choices, nil
	}
}

func (s *Service) busAccessors() map[string]accessor[model.Bus] {
	return map[string]accessor[model.Bus]{
		"name": {
			get:    func(b model.Bus) string { return b.Name },
			set:    func(b model.Bus, v string) model.Bus { b.Name = v; return b },
			encode: textValue,
		},
		"type": {
			get:     func(b model.Bus) string { return string(b.Type) },
			set:     func(b model.Bus, v string) model.Bus { b.Type = model.BusType(v); return b },
			encode:  textValue,
			choices: fixedChoices(model.CollectionBuses, "type"),
		},
		"status": {
			get:     func(b model.Bus) string { return string(b.Status) },
			set:     func(b model.Bus, v string) model.Bus { b.Status = model.BusStatus(v); return b },
			encode:  textValue,
			choices: fixedChoices(model.CollectionBuses, "status"),
		},
	}
}

func routeAccessors() map[string]accessor[model.Route] {
	return map[string]accessor[model.Route]{
		"source": {
			get:    func(r model.Route) string { return r.Source },
			set:    func(r model.Route, v string) model.Route { r.Source = v; return r },
			encode: textValue,
		},
		"destination": {
			get:    func(r model.Route) string { return r.Destination },
			set:    func(r model.Route, v string) model.Route { r.Destination = v; return r },
			encode: textValue,
		},
		"distance": {
			get:    func(r model.Route) string { return formatFloat(r.Distance) },
			set:    func(r model.Route, v string) model.Route { r.Distance = parseFloat(v); return r },
			encode: numberValue,
		},
		"estimatedTime": {
			get:    func(r model.Route) string { return formatFloat(r.EstimatedTime) },
			set:    func(r model.Route, v string) model.Route { r.EstimatedTime = parseFloat(v); return r },
			encode: numberValue,
		},
		"pickupStops": {
			get:    func(r model.Route) string { return joinStops(r.PickupStops) },
			set:    func(r model.Route, v string) model.Route { r.PickupStops = model.SplitStops(v); return r },
			encode: stopsValue,
		},
		"dropStops": {
			get:    func(r model.Route) string { return joinStops(r.DropStops) },
			set:    func(r model.Route, v string) model.Route { r.DropStops = model.SplitStops(v); return r },
			encode: stopsValue,
		},
	}
}

func (s *Service) scheduleAccessors() map[string]accessor[model.Schedule] {
	return map[string]accessor[model.Schedule]{
		"price": {
			get:    func(sc model.Schedule) string { return formatFloat(sc.Price) },
			set:    func(sc model.Schedule, v string) model.Schedule { sc.Price = parseFloat(v); return sc },
			encode: numberValue,
		},
		"startTime": {
			get:    func(sc model.Schedule) string { return sc.StartTime },
			set:    func(sc model.Schedule, v string) model.Schedule { sc.StartTime = v; return sc },
			encode: textValue,
		},
		"endTime": {
			get:    func(sc model.Schedule) string { return sc.EndTime },
			set:    func(sc model.Schedule, v string) model.Schedule { sc.EndTime = v; return sc },
			encode: textValue,
		},
		"busId": {
			get:     func(sc model.Schedule) string { return sc.BusID },
			set:     func(sc model.Schedule, v string) model.Schedule { sc.BusID = v; return sc },
			encode:  textValue,
			choices: s.busChoices,
		},
	}
}

// busChoices offers the owner's buses for a schedule's bus field.
func (s *Service) busChoices(ctx context.Context, sc Scope) ([]rowaction.Choice, error) {
	buses, err := s.loadBuses(ctx, sc, false)
	if err != nil {
		return nil, err
	}
	choices := make([]rowaction.Choice, 0, len(buses))
	for _, b := range buses {
		choices = append(choices, rowaction.Choice{Value: b.ID, Label: b.Name})
	}
	return choices, nil
}
