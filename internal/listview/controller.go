package listview

import (
	"sync"
	"time"

	"github.com/me/busdesk/pkg/model"
)

// Controller owns the local state of one list page: the raw collection of
// the last fetch, the active criteria, and the current page. Views are
// derived on demand and never stored.
type Controller[T Record] struct {
	mu       sync.Mutex
	fields   Fields[T]
	pageSize int
	now      func() time.Time

	items    []T
	criteria model.FilterCriteria
	page     int
}

// Option configures a Controller.
type Option[T Record] func(*Controller[T])

// WithPageSize overrides DefaultPageSize.
func WithPageSize[T Record](n int) Option[T] {
	return func(c *Controller[T]) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithClock injects the time source used by the date filter.
func WithClock[T Record](now func() time.Time) Option[T] {
	return func(c *Controller[T]) { c.now = now }
}

// NewController creates a controller for a collection described by fields.
func NewController[T Record](fields Fields[T], opts ...Option[T]) *Controller[T] {
	c := &Controller[T]{
		fields:   fields,
		pageSize: DefaultPageSize,
		now:      time.Now,
		page:     1,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Replace installs a freshly fetched collection. The page is kept; callers
// navigate or change criteria to move it.
func (c *Controller[T]) Replace(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
}

// Items returns the raw collection.
func (c *Controller[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items
}

// Criteria returns the active filter criteria.
func (c *Controller[T]) Criteria() model.FilterCriteria {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.criteria
}

// SetCriteria replaces the filter criteria. Any change returns the view to
// the first page.
func (c *Controller[T]) SetCriteria(fc model.FilterCriteria) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if fc != c.criteria {
		c.page = 1
	}
	c.criteria = fc
}

// Page returns the current page number.
func (c *Controller[T]) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// Navigate moves to page, clamped into the range of the filtered set, and
// returns the page actually selected.
func (c *Controller[T]) Navigate(page int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := len(Filter(c.items, c.fields, c.criteria, c.now()))
	c.page = ClampPage(page, TotalPages(total, c.pageSize))
	return c.page
}

// View computes the current page of the filtered collection.
func (c *Controller[T]) View() View[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ComputeView(c.items, c.fields, c.criteria, c.page, c.pageSize, c.now())
}

// Find returns the record with the given id.
func (c *Controller[T]) Find(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Lookup(c.items, id)
}

// Patch replaces the one record matching id with fn(record). It reports
// whether a record was found.
func (c *Controller[T]) Patch(id string, fn func(T) T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, ok := PatchOne(c.items, id, fn)
	c.items = items
	return ok
}

// Remove drops the record matching id.
func (c *Controller[T]) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, ok := RemoveOne(c.items, id)
	c.items = items
	return ok
}
