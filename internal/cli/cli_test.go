package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/me/busdesk/internal/bookingapi"
	"github.com/me/busdesk/internal/config"
	"github.com/me/busdesk/internal/console"
	"github.com/me/busdesk/internal/logging"
	"github.com/me/busdesk/internal/rowaction"
	"github.com/me/busdesk/internal/server"
	"github.com/me/busdesk/internal/store"
	"github.com/me/busdesk/pkg/model"
)

var testNow = time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)

type fakeAPI struct {
	mu           sync.Mutex
	updates      int
	deletes      int
	ownerFetches int
}

func (f *fakeAPI) ListOwners(context.Context) ([]model.User, error) {
	f.mu.Lock()
	f.ownerFetches++
	f.mu.Unlock()
	return []model.User{
		{ID: "o1", Name: "Asha Travels", Email: "asha@example.com", CreatedAt: testNow},
		{ID: "o2", Name: "Blue Line", Email: "blue@example.com", IsBlocked: true, CreatedAt: testNow.AddDate(0, 0, -40)},
	}, nil
}

func (f *fakeAPI) ToggleOwnerBlock(context.Context, string) (bool, error) { return true, nil }

func (f *fakeAPI) ListOperators(context.Context) ([]model.User, error) {
	return []model.User{{ID: "op1", Name: "Ravi Kumar", CreatedAt: testNow}}, nil
}

func (f *fakeAPI) ListBuses(context.Context, string) ([]model.Bus, error) {
	return []model.Bus{
		{ID: "b1", OwnerID: "o1", Name: "Night Rider", Type: model.BusSleeper, Status: model.BusActive, CreatedAt: testNow},
	}, nil
}

func (f *fakeAPI) ListRoutes(context.Context, string) ([]model.Route, error) {
	return []model.Route{
		{ID: "r1", OwnerID: "o1", Source: "Kochi", Destination: "Chennai", Distance: 690, CreatedAt: testNow},
	}, nil
}

func (f *fakeAPI) ListSchedules(context.Context, string) ([]model.Schedule, error) {
	return []model.Schedule{
		{ID: "s1", OwnerID: "o1", BusID: "b1", RouteID: "r1", OperatorID: "op1", Price: 850, StartTime: "21:00", EndTime: "07:30", Status: "scheduled", IsActive: true, CreatedAt: testNow},
	}, nil
}

func (f *fakeAPI) ListBookings(context.Context, string) ([]model.Booking, error) { return nil, nil }

func (f *fakeAPI) UpdateField(context.Context, model.Collection, string, string, any) (bookingapi.MutationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	return bookingapi.MutationResult{Success: true}, nil
}

func (f *fakeAPI) Delete(context.Context, model.Collection, string) (bookingapi.MutationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	return bookingapi.MutationResult{Success: true}, nil
}

func (f *fakeAPI) Create(context.Context, model.Collection, any) (bookingapi.MutationResult, error) {
	return bookingapi.MutationResult{Success: true}, nil
}

func (f *fakeAPI) SetSeats(context.Context, string, string, []model.SeatSlot) (bookingapi.MutationResult, error) {
	return bookingapi.MutationResult{Success: true}, nil
}

// startTestServer starts a server with an in-memory SQLite store and returns the URL.
func startTestServer(t *testing.T) (string, *fakeAPI) {
	t.Helper()
	logger := logging.Discard()
	st, err := store.NewSQLiteStore(":memory:", logger)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	api := &fakeAPI{}
	svc, err := console.New(api, st, logger, console.WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("console.New: %v", err)
	}
	t.Cleanup(svc.Close)

	srv := server.New(config.DefaultServerConfig(), svc, logger)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL, api
}

// scriptedPrompter answers prompts from a fixed script.
type scriptedPrompter struct {
	answer  rowaction.Answer
	confirm bool
	lines   []string
	asked   []rowaction.Question
}

func (s *scriptedPrompter) Prompt(_ context.Context, q rowaction.Question) (rowaction.Answer, error) {
	s.asked = append(s.asked, q)
	return s.answer, nil
}

func (s *scriptedPrompter) Confirm(_ context.Context, q rowaction.Question) (bool, error) {
	s.asked = append(s.asked, q)
	return s.confirm, nil
}

func (s *scriptedPrompter) ReadLine(string) (string, bool, error) {
	if len(s.lines) == 0 {
		return "", false, nil
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, true, nil
}

func (s *scriptedPrompter) Close() error { return nil }

func usePrompter(t *testing.T, p *scriptedPrompter) {
	t.Helper()
	old := newPrompter
	newPrompter = func(io.Writer) terminalPrompter { return p }
	t.Cleanup(func() { newPrompter = old })
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BUSDESK_SERVER", "")
	t.Setenv("BUSDESK_OWNER", "")
	root := NewRootCmd()

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)

	err := root.Execute()
	return buf.String(), err
}

func TestOwnersList(t *testing.T) {
	url, _ := startTestServer(t)

	out, err := runCLI(t, "--server", url, "owners", "list")
	if err != nil {
		t.Fatalf("owners list: %v\n%s", err, out)
	}
	for _, want := range []string{"Asha Travels", "Blue Line", "Showing 1 to 2 of 2 results"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestOwnersListStatusFilter(t *testing.T) {
	url, _ := startTestServer(t)

	out, err := runCLI(t, "--server", url, "owners", "list", "--status", "blocked")
	if err != nil {
		t.Fatalf("owners list: %v", err)
	}
	if strings.Contains(out, "Asha Travels") || !strings.Contains(out, "Blue Line") {
		t.Errorf("status filter not applied:\n%s", out)
	}
}

func TestOwnersListEmptyPage(t *testing.T) {
	url, _ := startTestServer(t)

	out, err := runCLI(t, "--server", url, "owners", "list", "--page", "4")
	if err != nil {
		t.Fatalf("owners list: %v", err)
	}
	if !strings.Contains(out, "No owners found.") {
		t.Errorf("output = %q", out)
	}
}

func TestOwnersBrowse(t *testing.T) {
	url, api := startTestServer(t)
	usePrompter(t, &scriptedPrompter{lines: []string{"s blocked", "/asha", "c", "q"}})

	out, err := runCLI(t, "--server", url, "owners", "browse")
	if err != nil {
		t.Fatalf("browse: %v\n%s", err, out)
	}
	for _, want := range []string{
		"Showing 1 to 2 of 2 results (page 1 of 1)",
		"Showing 1 to 1 of 1 results (page 1 of 1) [status=blocked]",
		"No matching records.",
		`[search="asha" status=blocked]`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if got := strings.Count(out, "Showing 1 to 2 of 2 results (page 1 of 1)\n"); got != 2 {
		t.Errorf("unfiltered page shown %d times, want 2 (start and after clear)", got)
	}
	if api.ownerFetches != 1 {
		t.Errorf("owner fetches = %d, want 1", api.ownerFetches)
	}
}

func TestSchedulesResolveNames(t *testing.T) {
	url, _ := startTestServer(t)
	usePrompter(t, &scriptedPrompter{lines: []string{"q"}})

	for _, sub := range []string{"list", "browse"} {
		out, err := runCLI(t, "--server", url, "--owner", "o1", "schedules", sub)
		if err != nil {
			t.Fatalf("schedules %s: %v\n%s", sub, err, out)
		}
		for _, want := range []string{"Night Rider", "Kochi - Chennai", "Ravi Kumar"} {
			if !strings.Contains(out, want) {
				t.Errorf("schedules %s output missing %q:\n%s", sub, want, out)
			}
		}
	}
}

func TestBusesListJSON(t *testing.T) {
	url, _ := startTestServer(t)

	out, err := runCLI(t, "--server", url, "--owner", "o1", "-o", "json", "buses", "list")
	if err != nil {
		t.Fatalf("buses list: %v", err)
	}
	var buses []model.Bus
	if err := json.Unmarshal([]byte(out), &buses); err != nil {
		t.Fatalf("parse output: %v\n%s", err, out)
	}
	if len(buses) != 1 || buses[0].Name != "Night Rider" {
		t.Errorf("buses = %+v", buses)
	}
}

func TestBusesListNeedsOwner(t *testing.T) {
	url, _ := startTestServer(t)

	_, err := runCLI(t, "--server", url, "buses", "list")
	if err == nil || !strings.Contains(err.Error(), "owner") {
		t.Errorf("err = %v, want owner required", err)
	}
}

func TestEditWithValue(t *testing.T) {
	url, api := startTestServer(t)

	out, err := runCLI(t, "--server", url, "--owner", "o1", "buses", "edit", "b1", "name", "Night Owl")
	if err != nil {
		t.Fatalf("edit: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Updated bus name.") {
		t.Errorf("output = %q", out)
	}
	if api.updates != 1 {
		t.Errorf("updates = %d, want 1", api.updates)
	}
}

func TestEditPromptPrefillsCurrent(t *testing.T) {
	url, api := startTestServer(t)
	p := &scriptedPrompter{answer: rowaction.Answer{Value: "Night Rider", OK: true}}
	usePrompter(t, p)

	out, err := runCLI(t, "--server", url, "--owner", "o1", "buses", "edit", "b1", "name")
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if len(p.asked) != 1 || p.asked[0].Current != "Night Rider" {
		t.Fatalf("asked = %+v", p.asked)
	}
	if !strings.Contains(out, "No changes were made.") {
		t.Errorf("output = %q", out)
	}
	if api.updates != 0 {
		t.Errorf("updates = %d, want 0 for an unchanged value", api.updates)
	}
}

func TestEditCancelled(t *testing.T) {
	url, api := startTestServer(t)
	usePrompter(t, &scriptedPrompter{answer: rowaction.Answer{OK: false}})

	out, err := runCLI(t, "--server", url, "--owner", "o1", "buses", "edit", "b1", "name")
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if !strings.Contains(out, "No changes were made.") || api.updates != 0 {
		t.Errorf("output = %q, updates = %d", out, api.updates)
	}
}

func TestEditInvalid(t *testing.T) {
	url, api := startTestServer(t)

	_, err := runCLI(t, "--server", url, "--owner", "o1", "buses", "edit", "b1", "name", " ")
	if err == nil || !strings.Contains(err.Error(), "cannot be empty") {
		t.Errorf("err = %v, want validation message", err)
	}
	if api.updates != 0 {
		t.Errorf("updates = %d, want 0", api.updates)
	}
}

func TestDeleteDeclined(t *testing.T) {
	url, api := startTestServer(t)
	p := &scriptedPrompter{confirm: false}
	usePrompter(t, p)

	out, err := runCLI(t, "--server", url, "--owner", "o1", "buses", "delete", "b1")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(p.asked) != 1 || p.asked[0].Title != "Delete bus?" {
		t.Errorf("asked = %+v", p.asked)
	}
	if !strings.Contains(out, "No changes were made.") || api.deletes != 0 {
		t.Errorf("output = %q, deletes = %d", out, api.deletes)
	}
}

func TestDeleteYes(t *testing.T) {
	url, api := startTestServer(t)

	out, err := runCLI(t, "--server", url, "--owner", "o1", "buses", "delete", "b1", "--yes")
	if err != nil {
		t.Fatalf("delete: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Deleted bus.") || api.deletes != 1 {
		t.Errorf("output = %q, deletes = %d", out, api.deletes)
	}
}

func TestDeleteMissingRecord(t *testing.T) {
	url, api := startTestServer(t)

	_, err := runCLI(t, "--server", url, "--owner", "o1", "buses", "delete", "b9", "--yes")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("err = %v, want not found", err)
	}
	if api.deletes != 0 {
		t.Errorf("deletes = %d, want 0", api.deletes)
	}
}

func TestOwnersToggle(t *testing.T) {
	url, _ := startTestServer(t)

	out, err := runCLI(t, "--server", url, "owners", "toggle", "o1")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !strings.Contains(out, "Owner blocked successfully.") {
		t.Errorf("output = %q", out)
	}
}

func TestExportToFile(t *testing.T) {
	url, _ := startTestServer(t)
	path := filepath.Join(t.TempDir(), "buses.csv")

	out, err := runCLI(t, "--server", url, "--owner", "o1", "export", "buses", "--file", path)
	if err != nil {
		t.Fatalf("export: %v\n%s", err, out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.HasPrefix(string(data), "ID,") || !strings.Contains(string(data), "Night Rider") {
		t.Errorf("csv = %q", data)
	}
}

func TestExportUnknownCollection(t *testing.T) {
	url, _ := startTestServer(t)

	if _, err := runCLI(t, "--server", url, "export", "tickets"); err == nil {
		t.Error("expected error for unknown collection")
	}
}

func TestSummary(t *testing.T) {
	url, _ := startTestServer(t)

	out, err := runCLI(t, "--server", url, "--owner", "o1", "summary")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !strings.Contains(out, "Blocked owners") || !strings.Contains(out, "Buses") {
		t.Errorf("output = %q", out)
	}
}

func TestActivityAfterEdit(t *testing.T) {
	url, _ := startTestServer(t)

	if _, err := runCLI(t, "--server", url, "--owner", "o1", "buses", "edit", "b1", "name", "Night Owl"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	out, err := runCLI(t, "--server", url, "activity", "--collection", "buses")
	if err != nil {
		t.Fatalf("activity: %v", err)
	}
	if !strings.Contains(out, "Night Rider -> Night Owl") {
		t.Errorf("output = %q", out)
	}
}

func TestUnknownOutputFormat(t *testing.T) {
	url, _ := startTestServer(t)

	if _, err := runCLI(t, "--server", url, "-o", "xml", "owners", "list"); err == nil {
		t.Error("expected error for unknown output format")
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.jsonc")

	out, err := runCLI(t, "--config", path, "config", "init")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("output = %q", out)
	}
	if _, err := config.LoadFile(path, true); err != nil {
		t.Errorf("starter config does not parse: %v", err)
	}

	_, err = runCLI(t, "--config", path, "config", "init")
	if !errors.Is(err, config.ErrConfigExists) {
		t.Errorf("second init err = %v, want ErrConfigExists", err)
	}
}

func TestPickChoice(t *testing.T) {
	choices := []rowaction.Choice{{Value: "sleeper", Label: "Sleeper"}, {Value: "seater", Label: "Seater"}}
	tests := []struct {
		in, want string
	}{
		{"seater", "seater"},
		{"1", "sleeper"},
		{"2", "seater"},
		{"3", "3"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := pickChoice(tt.in, choices); got != tt.want {
			t.Errorf("pickChoice(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
