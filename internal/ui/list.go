package ui

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/me/busdesk/internal/rowaction"
	"github.com/me/busdesk/pkg/model"
)

// listState is the template view of one table's controls: current filters,
// page navigation, which row's action menu is open, and which rows have an
// action awaiting the booking service.
type listState struct {
	Base       string
	Search     string
	Status     model.StatusFilter
	Date       model.DateFilter
	Page       int
	TotalPages int
	RangeLabel string
	OpenMenu   string

	params url.Values
	busy   func(id string) bool
}

func newListState(r *http.Request, base string, page, totalPages int, rangeLabel string, menu *rowaction.Menu, busy func(id string) bool) listState {
	q := parseQuery(r)
	params := url.Values{}
	for _, k := range []string{"search", "status", "date", "owner"} {
		if v := r.URL.Query().Get(k); v != "" {
			params.Set(k, v)
		}
	}
	return listState{
		Base:       base,
		Search:     q.Criteria.SearchText,
		Status:     q.Criteria.StatusFilter,
		Date:       q.Criteria.DateFilter,
		Page:       page,
		TotalPages: totalPages,
		RangeLabel: rangeLabel,
		OpenMenu:   menu.OpenID(),
		params:     params,
		busy:       busy,
	}
}

// Busy reports whether the row's actions are disabled while an earlier
// action on it is still in flight.
func (l listState) Busy(id string) bool {
	return l.busy != nil && l.busy(id)
}

// Self links back to the current page with filters kept.
func (l listState) Self() string {
	return l.PageURL(l.Page)
}

// PageURL links to page n with filters kept.
func (l listState) PageURL(n int) string {
	p := cloneValues(l.params)
	if n > 1 {
		p.Set("page", strconv.Itoa(n))
	}
	return withQuery(l.Base, p)
}

// HasPrev reports whether a previous page exists.
func (l listState) HasPrev() bool { return l.Page > 1 }

// HasNext reports whether a next page exists.
func (l listState) HasNext() bool { return l.Page < l.TotalPages }

// Pages lists page numbers for the pager.
func (l listState) Pages() []int {
	pages := make([]int, l.TotalPages)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

// RowURL builds a row action link that returns to the current page.
func (l listState) RowURL(id, action string) string {
	p := url.Values{}
	p.Set("return", l.Self())
	return l.Base + "/" + url.PathEscape(id) + "/" + action + "?" + p.Encode()
}

// RefreshURL reloads the page with a fresh fetch.
func (l listState) RefreshURL() string {
	p := cloneValues(l.params)
	p.Set("refresh", "1")
	return withQuery(l.Base, p)
}

// ExportURL downloads the filtered rows as CSV.
func (l listState) ExportURL() string {
	return withQuery(l.Base+"/export.csv", cloneValues(l.params))
}

func cloneValues(v url.Values) url.Values {
	c := make(url.Values, len(v))
	for k, vs := range v {
		c[k] = append([]string(nil), vs...)
	}
	return c
}

func withQuery(base string, p url.Values) string {
	if len(p) == 0 {
		return base
	}
	return base + "?" + p.Encode()
}
