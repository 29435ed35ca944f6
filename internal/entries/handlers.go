package entries

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fdg312/calorie-diary/internal/diary"
	"github.com/fdg312/calorie-diary/internal/userctx"
)

const maxBodyBytes = 16 << 10

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleGetDay handles GET /v1/days/{date}
func (h *Handler) HandleGetDay(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Day(r.Context(), userctx.OwnerID(r.Context()), r.PathValue("date"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleCreateEntry handles POST /v1/days/{date}/entries
func (h *Handler) HandleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var req EntryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	entry, err := h.service.AddEntry(r.Context(), userctx.OwnerID(r.Context()), r.PathValue("date"), req)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// HandleUpdateEntry handles PATCH /v1/days/{date}/entries/{id}
func (h *Handler) HandleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	var req EntryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	entry, err := h.service.UpdateEntry(r.Context(), userctx.OwnerID(r.Context()), r.PathValue("date"), r.PathValue("id"), req)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// HandleDeleteEntry handles DELETE /v1/days/{date}/entries/{id}
func (h *Handler) HandleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteEntry(r.Context(), userctx.OwnerID(r.Context()), r.PathValue("date"), r.PathValue("id"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleClearDay handles DELETE /v1/days/{date}
func (h *Handler) HandleClearDay(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.ClearDay(r.Context(), userctx.OwnerID(r.Context()), r.PathValue("date"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	var ve *diary.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, "validation_error", ve.Error())
	case errors.Is(err, diary.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, "invalid_date", "Date must be YYYY-MM-DD")
	case errors.Is(err, ErrFutureDate):
		writeError(w, http.StatusConflict, "future_date", "Cannot use a date after today")
	case errors.Is(err, diary.ErrEntryNotFound):
		writeError(w, http.StatusNotFound, "entry_not_found", "Entry not found")
	case errors.Is(err, diary.ErrDiaryUnavailable):
		writeError(w, http.StatusServiceUnavailable, "diary_unavailable", "Diary storage is unavailable, try again")
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
