package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/me/busdesk/internal/rowaction"
	"github.com/me/busdesk/internal/validate"
	"github.com/me/busdesk/pkg/model"
)

type editRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// handleEditField sets one field of a record. The request body is the
// answer to the field's prompt.
// PATCH /api/v1/{collection}/{id}
func (s *Server) handleEditField(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	coll, ok := collectionParam(w, reqID, r)
	if !ok {
		return
	}
	var req editRequest
	if !decodeJSON(w, r, reqID, &req) {
		return
	}
	if req.Field == "" {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("field is required",
			model.FieldError{Field: "field", Message: "field is required"}))
		return
	}

	id := chi.URLParam(r, "id")
	out, err := s.svc.Edit(r.Context(), s.scope(r), coll, id, req.Field, rowaction.Answered{Value: req.Value, OK: true})
	if err != nil && out.Result == "" {
		respondErr(w, reqID, err)
		return
	}
	s.logger.Debug("edit", "collection", coll, "id", id, "field", req.Field, "result", out.Result)
	respondAction(w, reqID, out, err)
}

// handleDeleteRecord deletes a record. Callers confirm before sending.
// DELETE /api/v1/{collection}/{id}
func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	coll, ok := collectionParam(w, reqID, r)
	if !ok {
		return
	}
	out, err := s.svc.Delete(r.Context(), s.scope(r), coll, chi.URLParam(r, "id"), rowaction.Confirmed(true))
	if err != nil && out.Result == "" {
		respondErr(w, reqID, err)
		return
	}
	respondAction(w, reqID, out, err)
}

// handleToggle flips an owner's blocked flag.
// POST /api/v1/owners/{id}/toggle
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	coll, ok := collectionParam(w, reqID, r)
	if !ok {
		return
	}
	if coll != model.CollectionOwners {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("toggle", string(coll)))
		return
	}
	out, err := s.svc.ToggleOwner(r.Context(), s.scope(r), chi.URLParam(r, "id"))
	if err != nil && out.Result == "" {
		respondErr(w, reqID, err)
		return
	}
	respondAction(w, reqID, out, err)
}

// handleCreate validates an add form and creates the record.
// POST /api/v1/{collection}
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	coll, ok := collectionParam(w, reqID, r)
	if !ok {
		return
	}
	ctx := r.Context()
	sc := s.scope(r)

	var (
		out rowaction.Outcome
		err error
	)
	switch coll {
	case model.CollectionBuses:
		var f validate.BusForm
		if !decodeJSON(w, r, reqID, &f) {
			return
		}
		out, err = s.svc.CreateBus(ctx, sc, f)
	case model.CollectionRoutes:
		var f validate.RouteForm
		if !decodeJSON(w, r, reqID, &f) {
			return
		}
		out, err = s.svc.CreateRoute(ctx, sc, f)
	case model.CollectionSchedules:
		var f validate.ScheduleForm
		if !decodeJSON(w, r, reqID, &f) {
			return
		}
		out, err = s.svc.CreateSchedule(ctx, sc, f)
	default:
		respondError(w, reqID, http.StatusMethodNotAllowed, &model.APIError{
			Code:    model.ErrValidation,
			Message: "records cannot be created in " + string(coll),
		})
		return
	}

	if err != nil {
		if out.Result == "" {
			respondErr(w, reqID, err)
			return
		}
		respondAction(w, reqID, out, err)
		return
	}
	respondCreated(w, reqID, newActionResponse(out))
}
