package ui

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/me/busdesk/internal/console"
	"github.com/me/busdesk/internal/listview"
	"github.com/me/busdesk/internal/rowaction"
	"github.com/me/busdesk/internal/store"
	"github.com/me/busdesk/pkg/model"
)

// UI handles the web user interface.
type UI struct {
	svc          *console.Service
	logger       *slog.Logger
	startTime    time.Time
	secure       bool
	defaultOwner string
}

// Config holds UI configuration.
type Config struct {
	Secure       bool   // Use secure cookies for HTTPS
	DefaultOwner string // Owner shown when none is selected
}

// New creates a new UI handler.
func New(svc *console.Service, logger *slog.Logger, cfg Config) *UI {
	return &UI{
		svc:          svc,
		logger:       logger.With("component", "ui"),
		startTime:    time.Now(),
		secure:       cfg.Secure,
		defaultOwner: cfg.DefaultOwner,
	}
}

func (ui *UI) scope(w http.ResponseWriter, r *http.Request) console.Scope {
	return console.Scope{ClientID: ClientFromContext(r.Context()), OwnerID: ui.ownerID(w, r)}
}

// HandleDashboard renders the dashboard counts.
func (ui *UI) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	sc := ui.scope(w, r)
	sum, err := ui.svc.Summary(r.Context(), sc, r.URL.Query().Get("refresh") == "1")
	data := ui.page(r, sc, "Dashboard")
	data["Summary"] = sum
	data["Uptime"] = time.Since(ui.startTime).Round(time.Second).String()
	if err != nil {
		ui.logger.Warn("dashboard counts incomplete", "error", err)
		data["LoadError"] = "Some counts could not be loaded from the booking service."
	}
	ui.render(w, "dashboard", data)
}

// HandleOwners renders the admin owners table.
func (ui *UI) HandleOwners(w http.ResponseWriter, r *http.Request) {
	sc := ui.scope(w, r)
	q := parseQuery(r)
	v, err := ui.svc.Owners(r.Context(), sc, q)
	if err != nil {
		ui.renderError(w, "Failed to load owners", err)
		return
	}
	data := ui.page(r, sc, "Owners")
	data["List"] = newListState(r, "/admin/owners", v.Page, v.TotalPages, v.RangeLabel,
		ui.svc.Menu(sc.ClientID, model.CollectionOwners), ui.busy(model.CollectionOwners))
	data["Items"] = v.Items
	ui.render(w, "owners", data)
}

// HandleList renders one of the owner-scoped tables.
func (ui *UI) HandleList(w http.ResponseWriter, r *http.Request) {
	coll, ok := ownerCollection(r)
	if !ok {
		ui.renderNotFound(w, "Unknown table")
		return
	}
	sc := ui.scope(w, r)
	q := parseQuery(r)
	ctx := r.Context()
	data := ui.page(r, sc, titleFor(coll))
	menu := ui.svc.Menu(sc.ClientID, coll)
	busy := ui.busy(coll)
	base := "/owner/" + string(coll)

	var err error
	switch coll {
	case model.CollectionBuses:
		var v listview.View[model.Bus]
		if v, err = ui.svc.Buses(ctx, sc, q); err == nil {
			data["Items"] = v.Items
			data["List"] = newListState(r, base, v.Page, v.TotalPages, v.RangeLabel, menu, busy)
		}
	case model.CollectionRoutes:
		var v listview.View[model.Route]
		if v, err = ui.svc.Routes(ctx, sc, q); err == nil {
			data["Items"] = v.Items
			data["List"] = newListState(r, base, v.Page, v.TotalPages, v.RangeLabel, menu, busy)
		}
	case model.CollectionSchedules:
		var v listview.View[model.Schedule]
		if v, err = ui.svc.Schedules(ctx, sc, q); err == nil {
			data["Items"] = v.Items
			data["List"] = newListState(r, base, v.Page, v.TotalPages, v.RangeLabel, menu, busy)
			data["Siblings"], err = ui.svc.Siblings(ctx, sc, false)
		}
	case model.CollectionBookings:
		var v listview.View[model.Booking]
		if v, err = ui.svc.Bookings(ctx, sc, q); err == nil {
			data["Items"] = v.Items
			data["List"] = newListState(r, base, v.Page, v.TotalPages, v.RangeLabel, menu, busy)
		}
	}
	if err != nil {
		if needsOwner(err) {
			ui.render(w, "select_owner", data)
			return
		}
		ui.renderError(w, "Failed to load "+string(coll), err)
		return
	}
	data["Collection"] = coll
	ui.render(w, string(coll), data)
}

// HandleActivity renders the action journal.
func (ui *UI) HandleActivity(w http.ResponseWriter, r *http.Request) {
	sc := ui.scope(w, r)
	opts := ui.parseListOptions(r)
	f := store.ActionFilter{OwnerID: r.URL.Query().Get("owner")}
	if c, err := model.ParseCollection(r.URL.Query().Get("collection")); err == nil {
		f.Collection = c
	}
	if r.URL.Query().Get("mine") == "1" {
		f.ClientID = sc.ClientID
	}

	actions, total, err := ui.svc.Actions(r.Context(), f, opts)
	if err != nil {
		ui.renderError(w, "Failed to load activity", err)
		return
	}
	data := ui.page(r, sc, "Activity")
	data["Actions"] = actions
	data["Pagination"] = ui.buildPagination(r, opts, total)
	ui.render(w, "activity", data)
}

// --- Helper Methods ---

// page builds the data shared by every page: title, owner scope, and the
// client's pending notices.
func (ui *UI) page(r *http.Request, sc console.Scope, title string) map[string]any {
	notices, err := ui.svc.Notices(r.Context(), sc.ClientID)
	if err != nil {
		ui.logger.Warn("load notices", "client", sc.ClientID, "error", err)
	}
	return map[string]any{
		"Title":   title + " - Busdesk",
		"Heading": title,
		"Owner":   sc.OwnerID,
		"Notices": notices,
		"Path":    r.URL.Path,
	}
}

// parseQuery reads the filter and page parameters of a list page.
func parseQuery(r *http.Request) console.Query {
	return console.ParseQuery(r.URL.Query())
}

func (ui *UI) parseListOptions(r *http.Request) model.ListOptions {
	opts := model.DefaultListOptions()
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil {
			opts.Limit = n
		}
	}
	if offset := r.URL.Query().Get("offset"); offset != "" {
		if n, err := strconv.Atoi(offset); err == nil {
			opts.Offset = n
		}
	}
	opts.Clamp()
	return opts
}

func (ui *UI) buildPagination(r *http.Request, opts model.ListOptions, total int) map[string]any {
	link := func(offset int) string {
		q := r.URL.Query()
		q.Set("offset", strconv.Itoa(offset))
		return r.URL.Path + "?" + q.Encode()
	}
	return map[string]any{
		"Total":   total,
		"Limit":   opts.Limit,
		"Offset":  opts.Offset,
		"HasMore": opts.Offset+opts.Limit < total,
		"HasPrev": opts.Offset > 0,
		"Next":    link(opts.Offset + opts.Limit),
		"Prev":    link(max(0, opts.Offset-opts.Limit)),
	}
}

// ownerCollection reads the {collection} route parameter of an owner table.
func ownerCollection(r *http.Request) (model.Collection, bool) {
	c, err := model.ParseCollection(chi.URLParam(r, "collection"))
	if err != nil || !c.OwnerScoped() {
		return "", false
	}
	return c, true
}

func titleFor(c model.Collection) string {
	s := string(c)
	return strings.ToUpper(s[:1]) + s[1:]
}

func needsOwner(err error) bool {
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrValidation {
		return false
	}
	for _, d := range apiErr.Details {
		if d.Field == "owner" {
			return true
		}
	}
	return false
}

func (ui *UI) busy(coll model.Collection) func(string) bool {
	return func(id string) bool { return ui.svc.Busy(coll, id) }
}

// returnTo is the local page to go back to after an action.
func returnTo(r *http.Request, fallback string) string {
	ret := r.FormValue("return")
	// Browsers read a backslash as a slash, so "/\host" leaves the site.
	if ret == "" || ret[0] != '/' || strings.ContainsRune(ret, '\\') {
		return fallback
	}
	u, err := url.Parse(ret)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil || strings.HasPrefix(u.Path, "//") {
		return fallback
	}
	if u.RawQuery == "" {
		return u.EscapedPath()
	}
	return u.EscapedPath() + "?" + u.RawQuery
}

// isInvalid unwraps field validation failures.
func isInvalid(err error) (*rowaction.InvalidError, bool) {
	var inv *rowaction.InvalidError
	ok := errors.As(err, &inv)
	return inv, ok
}

func (ui *UI) render(w http.ResponseWriter, template string, data map[string]any) {
	ui.renderStatus(w, http.StatusOK, template, data)
}

func (ui *UI) renderStatus(w http.ResponseWriter, status int, template string, data map[string]any) {
	var buf bytes.Buffer
	if err := renderTemplate(&buf, template, data); err != nil {
		ui.logger.Error("template render failed", "template", template, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (ui *UI) renderError(w http.ResponseWriter, message string, err error) {
	ui.logger.Error(message, "error", err)
	data := map[string]any{
		"Title":   "Error - Busdesk",
		"Message": message,
	}
	status := http.StatusBadGateway
	var apiErr *model.APIError
	switch {
	case console.IsNotFound(err):
		status = http.StatusNotFound
	case errors.As(err, &apiErr) && apiErr.Code == model.ErrValidation:
		status = http.StatusBadRequest
		data["Message"] = message + ": " + apiErr.Message
	}
	ui.renderStatus(w, status, "error", data)
}

func (ui *UI) renderNotFound(w http.ResponseWriter, message string) {
	data := map[string]any{
		"Title":   "Not Found - Busdesk",
		"Message": message,
	}
	ui.renderStatus(w, http.StatusNotFound, "error", data)
}
