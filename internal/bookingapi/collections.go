package bookingapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/me/busdesk/pkg/model"
)

// ListOwners returns every platform owner.
func (c *Client) ListOwners(ctx context.Context) ([]model.User, error) {
	var out struct {
		Owners []model.User `json:"owners"`
	}
	if err := c.get(ctx, "list owners", "/admin/owners", &out); err != nil {
		return nil, err
	}
	return out.Owners, nil
}

// ToggleOwnerBlock flips an owner's blocked flag and returns the
// server-confirmed value.
func (c *Client) ToggleOwnerBlock(ctx context.Context, id string) (bool, error) {
	op := "toggle owner block"
	resp, err := c.send(ctx, op, "PATCH", "/admin/owners/"+url.PathEscape(id)+"/block", nil)
	if err != nil {
		return false, err
	}
	if resp.status < 200 || resp.status > 299 {
		return false, &RemoteError{Op: op, StatusCode: resp.status, Message: remoteMessage(resp.body)}
	}
	var out struct {
		ID        string `json:"id"`
		IsBlocked bool   `json:"isBlocked"`
	}
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return false, fmt.Errorf("%s: decoding response: %w", op, err)
	}
	return out.IsBlocked, nil
}

// ListOperators returns the operators that can be assigned to schedules.
func (c *Client) ListOperators(ctx context.Context) ([]model.User, error) {
	var out struct {
		Operators []model.User `json:"operators"`
	}
	if err := c.get(ctx, "list operators", "/owner/operators", &out); err != nil {
		return nil, err
	}
	return out.Operators, nil
}

// ListBuses returns an owner's fleet.
func (c *Client) ListBuses(ctx context.Context, ownerID string) ([]model.Bus, error) {
	var out struct {
		Buses []model.Bus `json:"buses"`
	}
	if err := c.get(ctx, "list buses", ownerPath(ownerID, model.CollectionBuses), &out); err != nil {
		return nil, err
	}
	return out.Buses, nil
}

// ListRoutes returns an owner's routes.
func (c *Client) ListRoutes(ctx context.Context, ownerID string) ([]model.Route, error) {
	var out struct {
		Routes []model.Route `json:"routes"`
	}
	if err := c.get(ctx, "list routes", ownerPath(ownerID, model.CollectionRoutes), &out); err != nil {
		return nil, err
	}
	return out.Routes, nil
}

// ListSchedules returns an owner's schedules.
func (c *Client) ListSchedules(ctx context.Context, ownerID string) ([]model.Schedule, error) {
	var out struct {
		Schedules []model.Schedule `json:"schedules"`
	}
	if err := c.get(ctx, "list schedules", ownerPath(ownerID, model.CollectionSchedules), &out); err != nil {
		return nil, err
	}
	return out.Schedules, nil
}

// ListBookings returns the bookings on an owner's schedules.
func (c *Client) ListBookings(ctx context.Context, ownerID string) ([]model.Booking, error) {
	var out struct {
		Bookings []model.Booking `json:"bookings"`
	}
	if err := c.get(ctx, "list bookings", ownerPath(ownerID, model.CollectionBookings), &out); err != nil {
		return nil, err
	}
	return out.Bookings, nil
}

// UpdateField sets one field of a bus, route, or schedule.
func (c *Client) UpdateField(ctx context.Context, coll model.Collection, id, field string, value any) (MutationResult, error) {
	return c.mutate(ctx, "update "+coll.Singular(), "PATCH", recordPath(coll, id), map[string]any{field: value})
}

// Delete removes a bus, route, or schedule.
func (c *Client) Delete(ctx context.Context, coll model.Collection, id string) (MutationResult, error) {
	return c.mutate(ctx, "delete "+coll.Singular(), "DELETE", recordPath(coll, id), nil)
}

// Create adds a bus, route, or schedule for the owner named in body.
func (c *Client) Create(ctx context.Context, coll model.Collection, body any) (MutationResult, error) {
	return c.mutate(ctx, "create "+coll.Singular(), "POST", "/owner/"+string(coll), body)
}

// SetSeats initializes seat availability for a schedule's departure dates.
func (c *Client) SetSeats(ctx context.Context, scheduleID, busID string, slots []model.SeatSlot) (MutationResult, error) {
	body := struct {
		BusID string           `json:"busId"`
		Slots []model.SeatSlot `json:"slots"`
	}{BusID: busID, Slots: slots}
	return c.mutate(ctx, "set seats", "POST", "/owner/schedules/"+url.PathEscape(scheduleID)+"/seats", body)
}

func ownerPath(ownerID string, coll model.Collection) string {
	return "/owner/" + url.PathEscape(ownerID) + "/" + string(coll)
}

func recordPath(coll model.Collection, id string) string {
	return "/owner/" + string(coll) + "/" + url.PathEscape(id)
}

// FieldValue returns the server-confirmed value of field from the result
// object, rendered as text.
func (m MutationResult) FieldValue(field string) (string, bool) {
	if len(m.Result) == 0 {
		return "", false
	}
	var obj map[string]any
	if err := json.Unmarshal(m.Result, &obj); err != nil {
		// Creates answer with a one-element array.
		var list []map[string]any
		if err := json.Unmarshal(m.Result, &list); err != nil || len(list) == 0 {
			return "", false
		}
		obj = list[0]
	}
	v, ok := obj[field]
	if !ok || v == nil {
		return "", false
	}
	switch x := v.(type) {
	case string:
		return x, true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(x), true
	case []any:
		parts := make([]string, 0, len(x))
		for _, e := range x {
			parts = append(parts, fmt.Sprint(e))
		}
		return strings.Join(parts, ", "), true
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}

// ResultID returns the id of a created record, if the result carries one.
func (m MutationResult) ResultID() string {
	id, _ := m.FieldValue("id")
	return id
}
