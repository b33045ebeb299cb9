// Package listview derives the filtered, paginated view a list page renders
// from a raw collection and the user's filter criteria.
package listview

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/me/busdesk/pkg/model"
)

// DefaultPageSize is the number of rows shown per page.
const DefaultPageSize = 5

// Record is an entity that can be addressed by identifier.
type Record interface {
	RecordID() string
}

// Fields names the accessors of T that participate in filtering.
// A nil accessor disables the corresponding filter for the collection.
type Fields[T any] struct {
	// Folded fields match the search text case-insensitively.
	Folded []func(T) string
	// Raw fields match the search text as a plain substring.
	Raw []func(T) string
	// Flag reports the blocked/inactive state used by the status filter.
	Flag func(T) bool
	// Created returns the timestamp used by the date filter.
	Created func(T) time.Time
}

// View is the page of a filtered collection handed to the presentation layer.
type View[T any] struct {
	Items      []T    `json:"items"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	Total      int    `json:"total"`
	TotalPages int    `json:"totalPages"`
	RangeLabel string `json:"rangeLabel"`
}

// HasPrev reports whether a previous page exists.
func (v View[T]) HasPrev() bool { return v.Page > 1 }

// HasNext reports whether a following page exists.
func (v View[T]) HasNext() bool { return v.Page < v.TotalPages }

// Pagination converts the view into the API envelope's page metadata.
func (v View[T]) Pagination() *model.Pagination {
	return &model.Pagination{
		Page:       v.Page,
		PageSize:   v.PageSize,
		Total:      v.Total,
		TotalPages: v.TotalPages,
		HasMore:    v.HasNext(),
		RangeLabel: v.RangeLabel,
	}
}

// ComputeView filters items by criteria and returns the requested page.
// Source order is preserved. A page past the end yields an empty slice.
func ComputeView[T any](items []T, fields Fields[T], c model.FilterCriteria, page, pageSize int, now time.Time) View[T] {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}

	filtered := Filter(items, fields, c, now)
	total := len(filtered)

	start := (page - 1) * pageSize
	end := min(start+pageSize, total)
	visible := []T{}
	if start < total {
		visible = filtered[start:end]
	}

	return View[T]{
		Items:      visible,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: TotalPages(total, pageSize),
		RangeLabel: RangeLabel(page, pageSize, total),
	}
}

// Filter returns the items matching every set criterion, in source order.
func Filter[T any](items []T, fields Fields[T], c model.FilterCriteria, now time.Time) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if matchText(it, fields, c.SearchText) &&
			matchStatus(it, fields, c.StatusFilter) &&
			matchDate(it, fields, c.DateFilter, now) {
			out = append(out, it)
		}
	}
	return out
}

func matchText[T any](it T, f Fields[T], text string) bool {
	if text == "" || (len(f.Folded) == 0 && len(f.Raw) == 0) {
		return true
	}
	folded := strings.ToLower(text)
	for _, get := range f.Folded {
		if strings.Contains(strings.ToLower(get(it)), folded) {
			return true
		}
	}
	for _, get := range f.Raw {
		if strings.Contains(get(it), text) {
			return true
		}
	}
	return false
}

func matchStatus[T any](it T, f Fields[T], s model.StatusFilter) bool {
	if f.Flag == nil {
		return true
	}
	switch s {
	case model.StatusActive:
		return !f.Flag(it)
	case model.StatusBlocked:
		return f.Flag(it)
	}
	return true
}

func matchDate[T any](it T, f Fields[T], d model.DateFilter, now time.Time) bool {
	days, ok := d.Days()
	if !ok || f.Created == nil {
		return true
	}
	return AgeInDays(f.Created(it), now) <= days
}

// AgeInDays returns the whole days elapsed since t, rounded up.
func AgeInDays(t, now time.Time) int {
	elapsed := now.Sub(t)
	return int(math.Ceil(float64(elapsed) / float64(24*time.Hour)))
}

// TotalPages returns ceil(total / pageSize).
func TotalPages(total, pageSize int) int {
	if pageSize < 1 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// RangeLabel renders "Showing {from} to {to} of {total} results".
func RangeLabel(page, pageSize, total int) string {
	from := 0
	if total > 0 {
		from = (page-1)*pageSize + 1
	}
	to := min(page*pageSize, total)
	return fmt.Sprintf("Showing %d to %d of %d results", from, to, total)
}

// ClampPage bounds page into [1, max(1, totalPages)].
func ClampPage(page, totalPages int) int {
	return max(1, min(page, max(1, totalPages)))
}
