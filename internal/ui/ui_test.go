package ui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/me/busdesk/internal/bookingapi"
	"github.com/me/busdesk/internal/console"
	"github.com/me/busdesk/internal/logging"
	"github.com/me/busdesk/internal/store"
	"github.com/me/busdesk/pkg/model"
)

var testNow = time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)

type stubAPI struct {
	mu      sync.Mutex
	updates []string
	deletes []string

	// When release is set, UpdateField signals entered and waits.
	entered chan struct{}
	release chan struct{}
}

func (s *stubAPI) ListOwners(context.Context) ([]model.User, error) {
	return []model.User{
		{ID: "o1", Name: "Anand Travels", CreatedAt: testNow},
		{ID: "o2", Name: "Kerala Lines", IsBlocked: true, CreatedAt: testNow},
	}, nil
}

func (s *stubAPI) ToggleOwnerBlock(context.Context, string) (bool, error) { return true, nil }

func (s *stubAPI) ListOperators(context.Context) ([]model.User, error) { return nil, nil }

func (s *stubAPI) ListBuses(context.Context, string) ([]model.Bus, error) {
	return []model.Bus{
		{ID: "b1", OwnerID: "o1", Name: "Night Rider", Type: model.BusSleeper, Status: model.BusActive, CreatedAt: testNow},
		{ID: "b2", OwnerID: "o1", Name: "Day Express", Type: model.BusSeater, Status: model.BusInactive, CreatedAt: testNow},
	}, nil
}

func (s *stubAPI) ListRoutes(context.Context, string) ([]model.Route, error) { return nil, nil }

func (s *stubAPI) ListSchedules(context.Context, string) ([]model.Schedule, error) { return nil, nil }

func (s *stubAPI) ListBookings(context.Context, string) ([]model.Booking, error) { return nil, nil }

func (s *stubAPI) UpdateField(_ context.Context, _ model.Collection, id, field string, _ any) (bookingapi.MutationResult, error) {
	if s.release != nil {
		close(s.entered)
		<-s.release
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, id+"."+field)
	return bookingapi.MutationResult{Success: true}, nil
}

func (s *stubAPI) Delete(_ context.Context, _ model.Collection, id string) (bookingapi.MutationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, id)
	return bookingapi.MutationResult{Success: true}, nil
}

func (s *stubAPI) Create(context.Context, model.Collection, any) (bookingapi.MutationResult, error) {
	return bookingapi.MutationResult{Success: true}, nil
}

func (s *stubAPI) SetSeats(context.Context, string, string, []model.SeatSlot) (bookingapi.MutationResult, error) {
	return bookingapi.MutationResult{Success: true}, nil
}

func setupTestUI(t *testing.T, defaultOwner string) (http.Handler, *stubAPI) {
	t.Helper()
	logger := logging.Discard()
	st, err := store.NewSQLiteStore(":memory:", logger)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	api := &stubAPI{}
	svc, err := console.New(api, st, logger, console.WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("console.New failed: %v", err)
	}
	t.Cleanup(svc.Close)

	r := chi.NewRouter()
	New(svc, logger, Config{DefaultOwner: defaultOwner}).RegisterRoutes(r)
	return r, api
}

// client replays the client cookie so notices and menus follow one browser.
type client struct {
	t       *testing.T
	h       http.Handler
	cookies []*http.Cookie
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	if set := rec.Result().Cookies(); len(set) > 0 {
		c.cookies = append(c.cookies, set...)
	}
	return rec
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func TestOwnersPage(t *testing.T) {
	h, _ := setupTestUI(t, "")
	c := &client{t: t, h: h}

	rec := c.get("/admin/owners")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"Anand Travels", "Kerala Lines", "Showing 1 to 2 of 2 results"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected page to contain %q", want)
		}
	}

	var found bool
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == ClientCookieName && ck.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("expected client cookie to be set")
	}
}

func TestOwnersStatusFilter(t *testing.T) {
	h, _ := setupTestUI(t, "")
	c := &client{t: t, h: h}

	body := c.get("/admin/owners?status=blocked").Body.String()
	if strings.Contains(body, "Anand Travels") {
		t.Error("active owner should be filtered out")
	}
	if !strings.Contains(body, "Kerala Lines") {
		t.Error("blocked owner should be listed")
	}
}

func TestOwnerTableNeedsOwner(t *testing.T) {
	h, _ := setupTestUI(t, "")
	c := &client{t: t, h: h}

	rec := c.get("/owner/buses")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Owner id") {
		t.Error("expected owner selection page")
	}

	rec = c.get("/owner/buses?owner=o1")
	if !strings.Contains(rec.Body.String(), "Night Rider") {
		t.Error("expected buses of o1")
	}

	// The owner is remembered by cookie.
	rec = c.get("/owner/buses")
	if !strings.Contains(rec.Body.String(), "Day Express") {
		t.Error("expected remembered owner to be used")
	}
}

func TestUnknownTable(t *testing.T) {
	h, _ := setupTestUI(t, "o1")
	c := &client{t: t, h: h}

	if rec := c.get("/owner/tickets"); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if rec := c.get("/owner/bookings/new"); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for bookings form, got %d", rec.Code)
	}
}

func TestEditBusName(t *testing.T) {
	h, api := setupTestUI(t, "o1")
	c := &client{t: t, h: h}

	rec := c.get("/owner/buses/b1/edit/name?return=%2Fowner%2Fbuses%3Fpage%3D1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Edit bus name") {
		t.Error("expected prompt title")
	}

	rec = c.post("/owner/buses/b1/edit/name", url.Values{"value": {""}, "return": {"/owner/buses"}})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Bus name cannot be empty.") {
		t.Error("expected validation message")
	}

	rec = c.post("/owner/buses/b1/edit/name", url.Values{"value": {"Night Owl"}, "return": {"/owner/buses"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/owner/buses" {
		t.Errorf("expected redirect to /owner/buses, got %q", loc)
	}
	if len(api.updates) != 1 || api.updates[0] != "b1.name" {
		t.Errorf("expected one update of b1.name, got %v", api.updates)
	}

	body := c.get("/owner/buses").Body.String()
	if !strings.Contains(body, "Night Owl") {
		t.Error("expected patched name in table")
	}
}

func TestBusyRowDisablesActions(t *testing.T) {
	h, api := setupTestUI(t, "o1")
	api.entered = make(chan struct{})
	api.release = make(chan struct{})
	c := &client{t: t, h: h}

	c.get("/owner/buses")
	c.get("/owner/buses/b1/menu?return=%2Fowner%2Fbuses")

	done := make(chan int, 1)
	go func() {
		req := httptest.NewRequest(http.MethodPost, "/owner/buses/b1/edit/name",
			strings.NewReader(url.Values{"value": {"Night Owl"}, "return": {"/owner/buses"}}.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		done <- rec.Code
	}()
	<-api.entered

	body := c.get("/owner/buses").Body.String()
	if !strings.Contains(body, `aria-disabled="true"`) {
		t.Error("expected disabled actions on the busy row")
	}
	if strings.Contains(body, "/owner/buses/b1/edit/name") {
		t.Error("expected no edit link while b1 is busy")
	}
	if !strings.Contains(body, "/owner/buses/b2/menu") {
		t.Error("expected b2 actions to stay enabled")
	}

	close(api.release)
	if code := <-done; code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", code)
	}
	body = c.get("/owner/buses").Body.String()
	if strings.Contains(body, `aria-disabled="true"`) {
		t.Error("expected actions enabled after the update finished")
	}
}

func TestEditCancelMakesNoCall(t *testing.T) {
	h, api := setupTestUI(t, "o1")
	c := &client{t: t, h: h}

	rec := c.post("/owner/buses/b1/edit/name", url.Values{"value": {"Other"}, "action": {"cancel"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if len(api.updates) != 0 {
		t.Errorf("expected no update, got %v", api.updates)
	}
}

func TestDeleteBus(t *testing.T) {
	h, api := setupTestUI(t, "o1")
	c := &client{t: t, h: h}

	rec := c.get("/owner/buses/b2/delete")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = c.post("/owner/buses/b2/delete", url.Values{"action": {"confirm"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if len(api.deletes) != 1 || api.deletes[0] != "b2" {
		t.Errorf("expected b2 deleted, got %v", api.deletes)
	}

	body := c.get("/owner/buses").Body.String()
	if strings.Contains(body, "Day Express") {
		t.Error("deleted bus should be gone")
	}
	if !strings.Contains(body, "Deleted bus.") {
		t.Error("expected success notice")
	}
}

func TestMenuToggles(t *testing.T) {
	h, _ := setupTestUI(t, "")
	c := &client{t: t, h: h}

	c.get("/admin/owners")
	rec := c.get("/admin/owners/o1/menu?return=%2Fadmin%2Fowners")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if !strings.Contains(c.get("/admin/owners").Body.String(), "/admin/owners/o1/toggle") {
		t.Error("expected open menu for o1")
	}

	c.get("/admin/owners/o1/menu")
	if strings.Contains(c.get("/admin/owners").Body.String(), "/admin/owners/o1/toggle") {
		t.Error("expected menu closed after second click")
	}
}

func TestExportCSV(t *testing.T) {
	h, _ := setupTestUI(t, "")
	c := &client{t: t, h: h}

	rec := c.get("/admin/owners/export.csv?search=anand")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("expected text/csv, got %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Anand Travels") || strings.Contains(body, "Kerala Lines") {
		t.Errorf("unexpected export body: %s", body)
	}
}

func TestReturnToStaysLocal(t *testing.T) {
	tests := []struct {
		ret  string
		want string
	}{
		{"/owner/buses?page=2", "/owner/buses?page=2"},
		{"/admin/owners", "/admin/owners"},
		{"//evil.example", "/fallback"},
		{"/\\evil.example", "/fallback"},
		{"/\\/evil.example", "/fallback"},
		{"\\\\evil.example", "/fallback"},
		{"/\t/evil.example", "/fallback"},
		{"https://evil.example/x", "/fallback"},
		{"owner/buses", "/fallback"},
		{"", "/fallback"},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/?return="+url.QueryEscape(tt.ret), nil)
		if got := returnTo(r, "/fallback"); got != tt.want {
			t.Errorf("returnTo(%q) = %q, want %q", tt.ret, got, tt.want)
		}
	}
}

func TestMenuRejectsBackslashReturn(t *testing.T) {
	h, _ := setupTestUI(t, "")
	c := &client{t: t, h: h}

	rec := c.get("/admin/owners/o1/menu?return=" + url.QueryEscape("/\\evil.example"))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/admin/owners" {
		t.Errorf("expected redirect to /admin/owners, got %q", loc)
	}
}
