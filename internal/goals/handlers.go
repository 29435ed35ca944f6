package goals

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fdg312/calorie-diary/internal/diary"
	"github.com/fdg312/calorie-diary/internal/userctx"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleGet handles GET /v1/goals
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Get(r.Context(), userctx.OwnerID(r.Context()))
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandlePut handles PUT /v1/goals
func (h *Handler) HandlePut(w http.ResponseWriter, r *http.Request) {
	var req UpdateGoalRequest
	r.Body = http.MaxBytesReader(w, r.Body, 4<<10)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	resp, err := h.service.Update(r.Context(), userctx.OwnerID(r.Context()), req)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleReset handles POST /v1/goals/reset
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Reset(r.Context(), userctx.OwnerID(r.Context()))
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	var ve *diary.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, "validation_error", ve.Error())
	case errors.Is(err, ErrCaloriesRequired):
		writeError(w, http.StatusBadRequest, "validation_error", "cals is required")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
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
