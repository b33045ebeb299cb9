package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/me/busdesk/internal/console"
	"github.com/me/busdesk/internal/store"
	"github.com/me/busdesk/internal/ui"
	"github.com/me/busdesk/pkg/model"
)

const (
	// ClientHeader carries the caller's client id. Notices, menus and
	// cached views are kept per client.
	ClientHeader = "X-Busdesk-Client"
	// OwnerHeader selects the owner whose fleet is addressed.
	OwnerHeader = "X-Busdesk-Owner"

	apiClientID = "api"
)

// scope resolves the client and owner of an API request. The client comes
// from the header, then the browser cookie; the owner from ?owner=, then
// the header, then the configured default.
func (s *Server) scope(r *http.Request) console.Scope {
	sc := console.Scope{
		ClientID: r.Header.Get(ClientHeader),
		OwnerID:  r.URL.Query().Get("owner"),
	}
	if sc.ClientID == "" {
		if c, err := r.Cookie(ui.ClientCookieName); err == nil {
			sc.ClientID = c.Value
		}
	}
	if sc.ClientID == "" {
		sc.ClientID = apiClientID
	}
	if sc.OwnerID == "" {
		sc.OwnerID = r.Header.Get(OwnerHeader)
	}
	if sc.OwnerID == "" {
		sc.OwnerID = s.config.Owner
	}
	return sc
}

func collectionParam(w http.ResponseWriter, reqID string, r *http.Request) (model.Collection, bool) {
	name := chi.URLParam(r, "collection")
	c, err := model.ParseCollection(name)
	if err != nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("collection", name))
		return "", false
	}
	return c, true
}

// handleView returns one page of a filtered collection.
// GET /api/v1/views/{collection}?search=&status=&date=&page=&refresh=1
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	coll, ok := collectionParam(w, reqID, r)
	if !ok {
		return
	}
	res, err := s.svc.View(r.Context(), s.scope(r), coll, console.ParseQuery(r.URL.Query()))
	if err != nil {
		respondErr(w, reqID, err)
		return
	}
	respondList(w, reqID, res.Items, res.Pagination)
}

// handleListItems returns a whole collection, unfiltered and unpaged.
// GET /api/v1/{collection}?refresh=1
func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	coll, ok := collectionParam(w, reqID, r)
	if !ok {
		return
	}
	items, err := s.svc.Items(r.Context(), s.scope(r), coll, r.URL.Query().Get("refresh") == "1")
	if err != nil {
		respondErr(w, reqID, err)
		return
	}
	respondOK(w, reqID, items)
}

// handleGetRecord returns one record from the cached collection.
// GET /api/v1/{collection}/{id}
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	coll, ok := collectionParam(w, reqID, r)
	if !ok {
		return
	}
	rec, err := s.svc.Record(r.Context(), s.scope(r), coll, chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, reqID, err)
		return
	}
	respondOK(w, reqID, rec)
}

type fieldPromptResponse struct {
	Collection model.Collection `json:"collection"`
	ID         string           `json:"id"`
	Field      string           `json:"field"`
	Input      string           `json:"input"`
	Title      string           `json:"title"`
	Label      string           `json:"label"`
	Current    string           `json:"current"`
	Choices    []choice         `json:"choices,omitempty"`
}

type choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// handleFieldPrompt describes how to prompt for a field edit, so remote
// clients can ask the question locally.
// GET /api/v1/{collection}/{id}/fields/{field}
func (s *Server) handleFieldPrompt(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	coll, ok := collectionParam(w, reqID, r)
	if !ok {
		return
	}
	fp, err := s.svc.Prompt(r.Context(), s.scope(r), coll, chi.URLParam(r, "id"), chi.URLParam(r, "field"))
	if err != nil {
		respondErr(w, reqID, err)
		return
	}
	resp := fieldPromptResponse{
		Collection: fp.Collection,
		ID:         fp.ID,
		Field:      fp.Field,
		Input:      fp.Input,
		Title:      fp.Question.Title,
		Label:      fp.Question.Label,
		Current:    fp.Question.Current,
	}
	for _, c := range fp.Question.Choices {
		resp.Choices = append(resp.Choices, choice{Value: c.Value, Label: c.Label})
	}
	respondOK(w, reqID, resp)
}

type tableResponse struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// handleExport returns every filtered row of a collection as a table.
// GET /api/v1/exports/{collection}
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	coll, ok := collectionParam(w, reqID, r)
	if !ok {
		return
	}
	q := console.ParseQuery(r.URL.Query())
	tbl, err := s.svc.Export(r.Context(), s.scope(r), coll, q.Criteria)
	if err != nil {
		respondErr(w, reqID, err)
		return
	}
	respondOK(w, reqID, tableResponse{Header: tbl.Header, Rows: tbl.Rows})
}

// handlePublish uploads the filtered rows of a collection to the export
// bucket.
// POST /api/v1/exports/{collection}
func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	coll, ok := collectionParam(w, reqID, r)
	if !ok {
		return
	}
	q := console.ParseQuery(r.URL.Query())
	key, err := s.svc.Publish(r.Context(), s.scope(r), coll, q.Criteria)
	if err != nil {
		if errors.Is(err, console.ErrExportDisabled) {
			respondError(w, reqID, http.StatusNotImplemented, &model.APIError{
				Code:    model.ErrValidation,
				Message: "no export bucket is configured",
			})
			return
		}
		respondErr(w, reqID, err)
		return
	}
	respondCreated(w, reqID, map[string]string{"key": key})
}

// handleSummary returns the dashboard counts.
// GET /api/v1/summary
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	sum, err := s.svc.Summary(r.Context(), s.scope(r), r.URL.Query().Get("refresh") == "1")
	if err != nil {
		s.logger.Warn("summary incomplete", "error", err)
	}
	respondOK(w, reqID, map[string]any{
		"owners":        sum.Owners,
		"blockedOwners": sum.BlockedOwners,
		"buses":         sum.Buses,
		"routes":        sum.Routes,
		"schedules":     sum.Schedules,
		"bookings":      sum.Bookings,
		"revenue":       sum.Revenue,
		"complete":      err == nil,
	})
}

// handleLookups returns the buses, routes, and operators that schedule rows
// refer to by id.
// GET /api/v1/lookups
func (s *Server) handleLookups(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	sib, err := s.svc.Siblings(r.Context(), s.scope(r), r.URL.Query().Get("refresh") == "1")
	if err != nil {
		respondErr(w, reqID, err)
		return
	}
	respondOK(w, reqID, sib)
}

// handleNotices pops the caller's pending notices.
// GET /api/v1/notices
func (s *Server) handleNotices(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	notices, err := s.svc.Notices(r.Context(), s.scope(r).ClientID)
	if err != nil {
		respondError(w, reqID, http.StatusInternalServerError, model.NewInternalError(err.Error()))
		return
	}
	if notices == nil {
		notices = []model.Notice{}
	}
	respondOK(w, reqID, notices)
}

// handleListActions pages through the action journal.
// GET /api/v1/actions?collection=&owner=&entity=&mine=1&limit=&offset=
func (s *Server) handleListActions(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	q := r.URL.Query()

	opts := model.DefaultListOptions()
	if n, err := strconv.Atoi(q.Get("limit")); err == nil {
		opts.Limit = n
	}
	if n, err := strconv.Atoi(q.Get("offset")); err == nil {
		opts.Offset = n
	}
	opts.Clamp()

	f := store.ActionFilter{OwnerID: q.Get("owner"), EntityID: q.Get("entity")}
	if c := q.Get("collection"); c != "" {
		coll, err := model.ParseCollection(c)
		if err != nil {
			respondError(w, reqID, http.StatusBadRequest, model.NewValidationError(err.Error(),
				model.FieldError{Field: "collection", Message: err.Error()}))
			return
		}
		f.Collection = coll
	}
	if q.Get("mine") == "1" {
		f.ClientID = s.scope(r).ClientID
	}

	actions, total, err := s.svc.Actions(r.Context(), f, opts)
	if err != nil {
		respondError(w, reqID, http.StatusInternalServerError, model.NewInternalError(err.Error()))
		return
	}
	if actions == nil {
		actions = []model.ActionRecord{}
	}

	page := opts.Offset/opts.Limit + 1
	respondList(w, reqID, actions, &model.Pagination{
		Page:       page,
		PageSize:   opts.Limit,
		Total:      total,
		TotalPages: (total + opts.Limit - 1) / opts.Limit,
		HasMore:    opts.Offset+opts.Limit < total,
	})
}
