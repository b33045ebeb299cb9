// Package console composes the booking API client, the snapshot caches, the
// row-action runner and the console store into the operations shared by the
// web UI, the JSON API and the CLI.
package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/maypok86/otter"

	"github.com/me/busdesk/internal/bookingapi"
	"github.com/me/busdesk/internal/export"
	"github.com/me/busdesk/internal/listcache"
	"github.com/me/busdesk/internal/listview"
	"github.com/me/busdesk/internal/rowaction"
	"github.com/me/busdesk/internal/store"
	"github.com/me/busdesk/internal/validate"
	"github.com/me/busdesk/pkg/model"
)

// API is the subset of the booking API the console calls.
type API interface {
	ListOwners(ctx context.Context) ([]model.User, error)
	ToggleOwnerBlock(ctx context.Context, id string) (bool, error)
	ListOperators(ctx context.Context) ([]model.User, error)
	ListBuses(ctx context.Context, ownerID string) ([]model.Bus, error)
	ListRoutes(ctx context.Context, ownerID string) ([]model.Route, error)
	ListSchedules(ctx context.Context, ownerID string) ([]model.Schedule, error)
	ListBookings(ctx context.Context, ownerID string) ([]model.Booking, error)
	UpdateField(ctx context.Context, coll model.Collection, id, field string, value any) (bookingapi.MutationResult, error)
	Delete(ctx context.Context, coll model.Collection, id string) (bookingapi.MutationResult, error)
	Create(ctx context.Context, coll model.Collection, body any) (bookingapi.MutationResult, error)
	SetSeats(ctx context.Context, scheduleID, busID string, slots []model.SeatSlot) (bookingapi.MutationResult, error)
}

// Scope identifies whose view an operation works on: the browser or
// terminal session, and the owner whose fleet is shown.
type Scope struct {
	ClientID string
	OwnerID  string
}

func (sc Scope) key() listcache.Key {
	return listcache.Key{ClientID: sc.ClientID, OwnerID: sc.OwnerID}
}

// globalKey is used for collections that do not belong to an owner.
func (sc Scope) globalKey() listcache.Key {
	return listcache.Key{ClientID: sc.ClientID}
}

func (sc Scope) requireOwner() error {
	if sc.OwnerID == "" {
		return model.NewValidationError("owner is required",
			model.FieldError{Field: "owner", Message: "Select the owner whose fleet to show"})
	}
	return nil
}

// Query selects one page of a filtered view.
type Query struct {
	Criteria model.FilterCriteria
	Page     int
	Refresh  bool
}

// ParseQuery reads search, status, date, page and refresh parameters.
// Unknown status or date tokens apply no constraint; a missing or
// non-positive page means page 1.
func ParseQuery(v url.Values) Query {
	q := Query{
		Criteria: model.FilterCriteria{
			SearchText:   v.Get("search"),
			StatusFilter: model.ParseStatusFilter(v.Get("status")),
			DateFilter:   model.DateFilter(v.Get("date")),
		},
		Page:    1,
		Refresh: v.Get("refresh") == "1",
	}
	if n, err := strconv.Atoi(v.Get("page")); err == nil && n > 0 {
		q.Page = n
	}
	if _, ok := q.Criteria.DateFilter.Days(); !ok {
		q.Criteria.DateFilter = model.DateAny
	}
	return q
}

type menuKey struct {
	clientID   string
	collection model.Collection
}

// Service is the console's application layer.
type Service struct {
	api       API
	store     store.Store
	runner    *rowaction.Runner
	validator *validate.Validator
	publisher *export.Publisher
	logger    *slog.Logger
	now       func() time.Time
	pageSize  int
	ttl       time.Duration

	owners    *table[model.User]
	operators *listcache.Cache[model.User]
	buses     *table[model.Bus]
	routes    *table[model.Route]
	schedules *table[model.Schedule]
	bookings  *table[model.Booking]
	tables    map[model.Collection]tableOps

	menus otter.Cache[menuKey, *rowaction.Menu]
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher enables uploading exports to object storage.
func WithPublisher(p *export.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithClock overrides the clock used by the date filter.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithPageSize overrides the number of rows per page.
func WithPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithCacheTTL overrides how long fetched collections are reused.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// New creates a Service. Notices and the action journal go to st.
func New(api API, st store.Store, logger *slog.Logger, opts ...Option) (*Service, error) {
	s := &Service{
		api:       api,
		store:     st,
		validator: validate.New(),
		logger:    logger.With("component", "console"),
		now:       time.Now,
		pageSize:  listview.DefaultPageSize,
		ttl:       5 * time.Minute,
	}
	for _, o := range opts {
		o(s)
	}
	s.runner = rowaction.NewRunner(logger, rowaction.WithNotifier(st), rowaction.WithJournal(st))

	var err error
	if s.operators, err = listcache.New[model.User]("operators", 0, s.ttl, logger); err != nil {
		return nil, err
	}
	if s.owners, err = newTable(s, model.CollectionOwners, listview.UserFields, s.loadOwners); err != nil {
		return nil, err
	}
	if s.buses, err = newTable(s, model.CollectionBuses, listview.BusFields, s.loadBuses); err != nil {
		return nil, err
	}
	if s.routes, err = newTable(s, model.CollectionRoutes, listview.RouteFields, s.loadRoutes); err != nil {
		return nil, err
	}
	if s.schedules, err = newTable(s, model.CollectionSchedules, listview.ScheduleFields, s.loadSchedules); err != nil {
		return nil, err
	}
	if s.bookings, err = newTable(s, model.CollectionBookings, listview.BookingFields, s.loadBookings); err != nil {
		return nil, err
	}

	s.buses.edits = s.busAccessors()
	s.buses.render = func(_ context.Context, _ Scope, items []model.Bus) (export.Table, error) {
		return export.Buses(items), nil
	}
	s.routes.edits = routeAccessors()
	s.routes.render = func(_ context.Context, _ Scope, items []model.Route) (export.Table, error) {
		return export.Routes(items), nil
	}
	s.schedules.edits = s.scheduleAccessors()
	s.schedules.render = func(ctx context.Context, sc Scope, items []model.Schedule) (export.Table, error) {
		sib, err := s.Siblings(ctx, sc, false)
		if err != nil {
			return export.Table{}, err
		}
		return export.Schedules(items, sib), nil
	}
	s.owners.render = func(_ context.Context, _ Scope, items []model.User) (export.Table, error) {
		return export.Owners(items), nil
	}
	s.bookings.render = func(_ context.Context, _ Scope, items []model.Booking) (export.Table, error) {
		return export.Bookings(items), nil
	}
	s.buses.deletable = true
	s.routes.deletable = true
	s.schedules.deletable = true

	s.tables = map[model.Collection]tableOps{
		model.CollectionOwners:    s.owners,
		model.CollectionBuses:     s.buses,
		model.CollectionRoutes:    s.routes,
		model.CollectionSchedules: s.schedules,
		model.CollectionBookings:  s.bookings,
	}

	s.menus, err = otter.MustBuilder[menuKey, *rowaction.Menu](listcache.DefaultCapacity).
		WithTTL(s.ttl).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build menu cache: %w", err)
	}
	return s, nil
}

// Close releases the caches.
func (s *Service) Close() {
	s.owners.cache.Close()
	s.operators.Close()
	s.buses.cache.Close()
	s.routes.cache.Close()
	s.schedules.cache.Close()
	s.bookings.cache.Close()
	s.menus.Close()
}

// PageSize is the number of rows per page.
func (s *Service) PageSize() int { return s.pageSize }

// Busy reports whether an action on the record is awaiting the remote service.
func (s *Service) Busy(coll model.Collection, id string) bool {
	return s.runner.Busy(coll, id)
}

func (s *Service) lookup(coll model.Collection) (tableOps, error) {
	t, ok := s.tables[coll]
	if !ok {
		return nil, model.NewNotFoundError("collection", string(coll))
	}
	return t, nil
}

func (s *Service) loadOwners(ctx context.Context, sc Scope, refresh bool) ([]model.User, error) {
	return s.owners.cache.Load(ctx, sc.globalKey(), refresh, s.api.ListOwners)
}

func (s *Service) loadBuses(ctx context.Context, sc Scope, refresh bool) ([]model.Bus, error) {
	if err := sc.requireOwner(); err != nil {
		return nil, err
	}
	return s.buses.cache.Load(ctx, sc.key(), refresh, func(ctx context.Context) ([]model.Bus, error) {
		return s.api.ListBuses(ctx, sc.OwnerID)
	})
}

func (s *Service) loadRoutes(ctx context.Context, sc Scope, refresh bool) ([]model.Route, error) {
	if err := sc.requireOwner(); err != nil {
		return nil, err
	}
	return s.routes.cache.Load(ctx, sc.key(), refresh, func(ctx context.Context) ([]model.Route, error) {
		return s.api.ListRoutes(ctx, sc.OwnerID)
	})
}

func (s *Service) loadSchedules(ctx context.Context, sc Scope, refresh bool) ([]model.Schedule, error) {
	if err := sc.requireOwner(); err != nil {
		return nil, err
	}
	return s.schedules.cache.Load(ctx, sc.key(), refresh, func(ctx context.Context) ([]model.Schedule, error) {
		return s.api.ListSchedules(ctx, sc.OwnerID)
	})
}

func (s *Service) loadBookings(ctx context.Context, sc Scope, refresh bool) ([]model.Booking, error) {
	if err := sc.requireOwner(); err != nil {
		return nil, err
	}
	return s.bookings.cache.Load(ctx, sc.key(), refresh, func(ctx context.Context) ([]model.Booking, error) {
		return s.api.ListBookings(ctx, sc.OwnerID)
	})
}

// Operators returns the operator directory used to resolve schedule rows.
func (s *Service) Operators(ctx context.Context, sc Scope, refresh bool) ([]model.User, error) {
	return s.operators.Load(ctx, sc.globalKey(), refresh, s.api.ListOperators)
}

// Siblings loads the collections schedule rows refer to.
func (s *Service) Siblings(ctx context.Context, sc Scope, refresh bool) (export.Siblings, error) {
	var (
		sib export.Siblings
		err error
	)
	if sib.Buses, err = s.loadBuses(ctx, sc, refresh); err != nil {
		return sib, err
	}
	if sib.Routes, err = s.loadRoutes(ctx, sc, refresh); err != nil {
		return sib, err
	}
	if sib.Operators, err = s.Operators(ctx, sc, refresh); err != nil {
		// Operator names are cosmetic; rows fall back to ids.
		s.logger.Warn("load operators", "error", err)
		sib.Operators = nil
	}
	return sib, nil
}

// Owners returns one page of the owners view.
func (s *Service) Owners(ctx context.Context, sc Scope, q Query) (listview.View[model.User], error) {
	return s.owners.view(ctx, sc, q)
}

// Buses returns one page of the buses view.
func (s *Service) Buses(ctx context.Context, sc Scope, q Query) (listview.View[model.Bus], error) {
	return s.buses.view(ctx, sc, q)
}

// Routes returns one page of the routes view.
func (s *Service) Routes(ctx context.Context, sc Scope, q Query) (listview.View[model.Route], error) {
	return s.routes.view(ctx, sc, q)
}

// Schedules returns one page of the schedules view.
func (s *Service) Schedules(ctx context.Context, sc Scope, q Query) (listview.View[model.Schedule], error) {
	return s.schedules.view(ctx, sc, q)
}

// Bookings returns one page of the bookings view.
func (s *Service) Bookings(ctx context.Context, sc Scope, q Query) (listview.View[model.Booking], error) {
	return s.bookings.view(ctx, sc, q)
}

// View returns one page of any collection with the items left untyped.
func (s *Service) View(ctx context.Context, sc Scope, coll model.Collection, q Query) (ViewResult, error) {
	t, err := s.lookup(coll)
	if err != nil {
		return ViewResult{}, err
	}
	return t.viewAny(ctx, sc, q)
}

// Items returns the whole cached collection, unfiltered, for clients that
// filter and page locally.
func (s *Service) Items(ctx context.Context, sc Scope, coll model.Collection, refresh bool) (any, error) {
	t, err := s.lookup(coll)
	if err != nil {
		return nil, err
	}
	return t.itemsAny(ctx, sc, refresh)
}

// Record returns one loaded record of a collection.
func (s *Service) Record(ctx context.Context, sc Scope, coll model.Collection, id string) (any, error) {
	t, err := s.lookup(coll)
	if err != nil {
		return nil, err
	}
	return t.record(ctx, sc, id)
}

// Menu returns the action-menu state for a client's table.
func (s *Service) Menu(clientID string, coll model.Collection) *rowaction.Menu {
	k := menuKey{clientID: clientID, collection: coll}
	if m, ok := s.menus.Get(k); ok {
		return m
	}
	m := &rowaction.Menu{}
	if !s.menus.SetIfAbsent(k, m) {
		if existing, ok := s.menus.Get(k); ok {
			return existing
		}
	}
	return m
}

// ClickMenu toggles the action menu of one row.
func (s *Service) ClickMenu(clientID string, coll model.Collection, id string) string {
	m := s.Menu(clientID, coll)
	m.Click(id)
	return m.OpenID()
}

// ToggleOwner blocks or unblocks an owner.
func (s *Service) ToggleOwner(ctx context.Context, sc Scope, id string) (rowaction.Outcome, error) {
	items, err := s.loadOwners(ctx, sc, false)
	if err != nil {
		return rowaction.Outcome{}, err
	}
	u, ok := listview.Lookup(items, id)
	if !ok {
		return rowaction.Outcome{}, model.NewNotFoundError("owner", id)
	}
	return rowaction.ToggleFlag(ctx, s.runner, s.owners.cache.Bind(sc.globalKey()), rowaction.Toggle[model.User]{
		Target: rowaction.Target{
			ClientID:   sc.ClientID,
			Collection: model.CollectionOwners,
			ID:         id,
			Menu:       s.Menu(sc.ClientID, model.CollectionOwners),
		},
		Field:   "isBlocked",
		Current: u.IsBlocked,
		Flip: func(ctx context.Context) (bool, error) {
			return s.api.ToggleOwnerBlock(ctx, id)
		},
		Apply: func(u model.User, blocked bool) model.User {
			u.IsBlocked = blocked
			return u
		},
		Message: func(blocked bool) string {
			if blocked {
				return "Owner blocked successfully."
			}
			return "Owner unblocked successfully."
		},
	})
}

// Prompt describes the question for editing one field of one record.
func (s *Service) Prompt(ctx context.Context, sc Scope, coll model.Collection, id, field string) (FieldPrompt, error) {
	t, err := s.lookup(coll)
	if err != nil {
		return FieldPrompt{}, err
	}
	return t.prompt(ctx, sc, id, field)
}

// Edit runs the single-field edit flow for one record.
func (s *Service) Edit(ctx context.Context, sc Scope, coll model.Collection, id, field string, p rowaction.Prompter) (rowaction.Outcome, error) {
	t, err := s.lookup(coll)
	if err != nil {
		return rowaction.Outcome{}, err
	}
	return t.edit(ctx, sc, id, field, p)
}

// Delete runs the delete flow for one record.
func (s *Service) Delete(ctx context.Context, sc Scope, coll model.Collection, id string, c rowaction.Confirmer) (rowaction.Outcome, error) {
	t, err := s.lookup(coll)
	if err != nil {
		return rowaction.Outcome{}, err
	}
	return t.remove(ctx, sc, id, c)
}

// DeleteQuestion is the confirmation shown before deleting a record.
func DeleteQuestion(coll model.Collection) rowaction.Question {
	noun := coll.Singular()
	return rowaction.Question{
		Title: "Delete " + noun + "?",
		Label: fmt.Sprintf("This %s will be removed permanently.", noun),
	}
}

// Notices pops the pending notices of a client.
func (s *Service) Notices(ctx context.Context, clientID string) ([]model.Notice, error) {
	return s.store.PopNotices(ctx, clientID)
}

// PushNotice queues a notice for a client's next page render.
func (s *Service) PushNotice(ctx context.Context, clientID string, level model.NoticeLevel, msg string) {
	n := model.Notice{ClientID: clientID, Level: level, Message: msg, CreatedAt: s.now()}
	if err := s.store.PushNotice(ctx, n); err != nil {
		s.logger.Warn("push notice", "client", clientID, "error", err)
	}
}

// Actions lists journaled row actions, newest first.
func (s *Service) Actions(ctx context.Context, f store.ActionFilter, opts model.ListOptions) ([]model.ActionRecord, int, error) {
	opts.Clamp()
	return s.store.ListActions(ctx, f, opts)
}

// PruneNotices drops notices older than maxAge that were never shown.
func (s *Service) PruneNotices(ctx context.Context, maxAge time.Duration) (int64, error) {
	return s.store.PruneNotices(ctx, s.now().Add(-maxAge))
}

// IsNotFound reports whether err means a record or collection is unknown.
func IsNotFound(err error) bool {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == model.ErrNotFound
	}
	return bookingapi.IsNotFound(err)
}
