package bookingapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/me/busdesk/pkg/model"
)

func testClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg := DefaultConfig().WithRetries(2, time.Millisecond)
	cfg.BaseURL = srv.URL
	cfg.Token = "secret"
	return NewClient(cfg, nil)
}

func TestListOwners(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/owners", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{
			"owners": []map[string]any{
				{"id": "o1", "name": "Anita", "isBlocked": false, "createdAt": "2025-01-02T03:04:05Z"},
				{"id": "o2", "name": "Binu", "isBlocked": true, "createdAt": "2025-02-02T03:04:05Z"},
			},
		})
	}))

	owners, err := c.ListOwners(context.Background())
	require.NoError(t, err)
	require.Len(t, owners, 2)
	assert.Equal(t, "o2", owners[1].ID)
	assert.True(t, owners[1].IsBlocked)
	assert.Equal(t, 2025, owners[0].CreatedAt.Year())
}

func TestListRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/owner/own-1/buses", r.URL.Path)
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"buses": []map[string]any{{"id": "b1", "name": "Volvo", "status": "Active"}}})
	}))

	buses, err := c.ListBuses(context.Background(), "own-1")
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	require.Len(t, buses, 1)
	assert.Equal(t, model.BusActive, buses[0].Status)
}

func TestListDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"owner not found"}`))
	}))

	_, err := c.ListRoutes(context.Background(), "nobody")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, int32(1), calls.Load())

	var re *RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "owner not found", re.Message)
}

func TestMutationsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := c.UpdateField(context.Background(), model.CollectionSchedules, "s1", "price", 500.0)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, IsUnavailable(err))
}

func TestUpdateField(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/owner/schedules/s1", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 500.0, body["price"])
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"message": "Schedule updated",
			"result":  map[string]any{"id": "s1", "price": 500},
		})
	}))

	res, err := c.UpdateField(context.Background(), model.CollectionSchedules, "s1", "price", 500.0)
	require.NoError(t, err)
	assert.True(t, res.Success)
	v, ok := res.FieldValue("price")
	assert.True(t, ok)
	assert.Equal(t, "500", v)
	assert.Equal(t, "s1", res.ResultID())
}

func TestBusinessRejectionIsData(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"message":"Bus has active schedules"}`))
	}))

	res, err := c.Delete(context.Background(), model.CollectionBuses, "b1")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Bus has active schedules", res.Message)
}

func TestToggleOwnerBlock(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/owners/o1/block", r.URL.Path)
		w.Write([]byte(`{"id":"o1","isBlocked":true}`))
	}))

	blocked, err := c.ToggleOwnerBlock(context.Background(), "o1")
	require.NoError(t, err)
	assert.True(t, blocked)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := DefaultConfig().WithRetries(0, time.Millisecond)
	cfg.BaseURL = srv.URL
	cfg.BreakerTrip = 2
	cfg.BreakerTimeout = time.Minute
	c := NewClient(cfg, nil)

	for range 2 {
		_, err := c.Delete(context.Background(), model.CollectionRoutes, "r1")
		require.Error(t, err)
	}
	_, err := c.Delete(context.Background(), model.CollectionRoutes, "r1")
	require.Error(t, err)
	assert.True(t, IsUnavailable(err))
	assert.Equal(t, int32(2), calls.Load())
}

func TestFieldValueMissing(t *testing.T) {
	var m MutationResult
	_, ok := m.FieldValue("price")
	assert.False(t, ok)

	m.Result = json.RawMessage(`{"startTime":"09:30","isActive":false}`)
	v, ok := m.FieldValue("startTime")
	assert.True(t, ok)
	assert.Equal(t, "09:30", v)
	v, _ = m.FieldValue("isActive")
	assert.Equal(t, "false", v)

	m.Result = json.RawMessage(`{"pickupStops":["Kochi","Aluva"]}`)
	v, _ = m.FieldValue("pickupStops")
	assert.Equal(t, "Kochi, Aluva", v)
}

func TestResultIDFromArray(t *testing.T) {
	m := MutationResult{Success: true, Result: json.RawMessage(`[{"id":"sch_9","busId":"b1"}]`)}
	assert.Equal(t, "sch_9", m.ResultID())
	v, ok := m.FieldValue("busId")
	assert.True(t, ok)
	assert.Equal(t, "b1", v)
}
