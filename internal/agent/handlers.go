package agent

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fdg312/calorie-diary/internal/diary"
	"github.com/fdg312/calorie-diary/internal/userctx"
)

const maxBodyBytes = 64 << 10

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandlePropose handles POST /v1/agent/propose
func (h *Handler) HandlePropose(w http.ResponseWriter, r *http.Request) {
	var req ProposeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.service.Propose(r.Context(), userctx.OwnerID(r.Context()), req.Message)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleConfirm handles POST /v1/agent/confirm
func (h *Handler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.service.Confirm(r.Context(), userctx.OwnerID(r.Context()), req.Date, req.Items)
	if err != nil {
		h.handleError(w, err)
		return
	}
	status := http.StatusCreated
	if len(resp.Added) == 0 {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

// HandleStateless handles POST /api/agent
func (h *Handler) HandleStateless(w http.ResponseWriter, r *http.Request) {
	var req StatelessRequest
	if !decodeBody(w, r, &req) {
		return
	}

	proposal, err := h.service.ProposeStateless(r.Context(), req)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, proposal)
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, "empty_message", "Message is required")
	case errors.Is(err, ErrNoItems):
		writeError(w, http.StatusBadRequest, "no_items", "Nothing to log")
	case errors.Is(err, diary.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, "invalid_date", "Date must be YYYY-MM-DD")
	case errors.Is(err, ErrFutureDate):
		writeError(w, http.StatusConflict, "future_date", "Cannot use a date after today")
	case errors.Is(err, ErrModelUnavailable):
		writeError(w, http.StatusBadGateway, "model_unavailable", "Model request failed, try again")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}
