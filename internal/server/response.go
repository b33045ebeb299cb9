package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/me/busdesk/internal/bookingapi"
	"github.com/me/busdesk/internal/rowaction"
	"github.com/me/busdesk/pkg/model"
)

// requestID generates a unique request identifier.
func requestID() string {
	return "req_" + uuid.New().String()[:8]
}

// respondOK writes a success response with the standard envelope.
func respondOK(w http.ResponseWriter, reqID string, data any) {
	respondJSON(w, http.StatusOK, reqID, data, nil, nil)
}

// respondCreated writes a 201 response with the standard envelope.
func respondCreated(w http.ResponseWriter, reqID string, data any) {
	respondJSON(w, http.StatusCreated, reqID, data, nil, nil)
}

// respondList writes a success response with pagination.
func respondList(w http.ResponseWriter, reqID string, data any, pg *model.Pagination) {
	respondJSON(w, http.StatusOK, reqID, data, pg, nil)
}

// respondError writes an error response with the standard envelope.
func respondError(w http.ResponseWriter, reqID string, status int, apiErr *model.APIError) {
	respondJSON(w, status, reqID, nil, nil, apiErr)
}

// respondErr classifies a service error and writes it.
func respondErr(w http.ResponseWriter, reqID string, err error) {
	status, apiErr := classify(err)
	respondError(w, reqID, status, apiErr)
}

func respondJSON(w http.ResponseWriter, status int, reqID string, data any, pg *model.Pagination, apiErr *model.APIError) {
	resp := model.Response{
		RequestID:  reqID,
		Timestamp:  time.Now().UTC(),
		Data:       data,
		Pagination: pg,
		Error:      apiErr,
	}
	if apiErr != nil {
		resp.Status = "error"
	} else {
		resp.Status = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// decodeJSON reads a JSON request body, answering 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, reqID string, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, reqID, http.StatusBadRequest, &model.APIError{
			Code:    model.ErrValidation,
			Message: "Invalid JSON body: " + err.Error(),
		})
		return false
	}
	return true
}

// classify maps service, row-action and booking API errors to an HTTP
// status and envelope error.
func classify(err error) (int, *model.APIError) {
	var (
		apiErr *model.APIError
		inv    *rowaction.InvalidError
		remote *bookingapi.RemoteError
	)
	switch {
	case errors.As(err, &inv):
		return http.StatusUnprocessableEntity, model.NewValidationError(inv.Error(), inv.Fields...)
	case errors.As(err, &apiErr):
		return statusForCode(apiErr.Code), apiErr
	case errors.Is(err, rowaction.ErrInFlight):
		return http.StatusConflict, model.NewConflictError("Another action on this record is still in progress.")
	case errors.Is(err, rowaction.ErrRejected):
		return http.StatusConflict, model.NewConflictError(err.Error())
	case errors.Is(err, rowaction.ErrNotLoaded):
		return http.StatusNotFound, &model.APIError{Code: model.ErrNotFound, Message: err.Error()}
	case errors.As(err, &remote):
		if remote.StatusCode == http.StatusNotFound {
			return http.StatusNotFound, &model.APIError{Code: model.ErrNotFound, Message: remote.Error()}
		}
		return http.StatusBadGateway, model.NewUpstreamError(remote.Error())
	default:
		return http.StatusInternalServerError, model.NewInternalError(err.Error())
	}
}

func statusForCode(code model.ErrorCode) int {
	switch code {
	case model.ErrValidation:
		return http.StatusBadRequest
	case model.ErrNotFound:
		return http.StatusNotFound
	case model.ErrConflict:
		return http.StatusConflict
	case model.ErrUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// actionResponse is the JSON form of a finished row action.
type actionResponse struct {
	Result  model.ActionOutcome `json:"result"`
	Level   model.NoticeLevel   `json:"level"`
	Message string              `json:"message"`
	Value   string              `json:"value,omitempty"`
	Fields  []model.FieldError  `json:"fields,omitempty"`
}

func newActionResponse(out rowaction.Outcome) actionResponse {
	return actionResponse{
		Result:  out.Result,
		Level:   out.Notice.Level,
		Message: out.Notice.Message,
		Value:   out.Value,
		Fields:  out.Fields,
	}
}

// respondAction writes the outcome of a row action. Unchanged and cancelled
// actions are not errors: they answer 200 with the outcome.
func respondAction(w http.ResponseWriter, reqID string, out rowaction.Outcome, err error) {
	if err == nil || errors.Is(err, rowaction.ErrUnchanged) || errors.Is(err, rowaction.ErrCancelled) {
		respondOK(w, reqID, newActionResponse(out))
		return
	}
	status, apiErr := classify(err)
	switch out.Result {
	case model.OutcomeRejected:
		apiErr.Message = out.Notice.Message
	case model.OutcomeFailed:
		if status == http.StatusInternalServerError {
			status, apiErr = http.StatusBadGateway, model.NewUpstreamError(out.Notice.Message)
		}
	}
	respondError(w, reqID, status, apiErr)
}
