package templates

import (
	"encoding/json"
	"errors"
	"io"
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

// HandleList handles GET /v1/templates?q=
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), userctx.OwnerID(r.Context()), r.URL.Query().Get("q"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{Templates: list})
}

// HandleCreate handles POST /v1/templates
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req TemplateRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	t, err := h.service.Create(r.Context(), userctx.OwnerID(r.Context()), req)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// HandleUpdate handles PATCH /v1/templates/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req TemplateRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	t, err := h.service.Update(r.Context(), userctx.OwnerID(r.Context()), r.PathValue("id"), req)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// HandleDelete handles DELETE /v1/templates/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), userctx.OwnerID(r.Context()), r.PathValue("id")); err != nil {
		h.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleApply handles POST /v1/templates/{id}/apply
func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	var req ApplyRequest
	if !decodeBody(w, r, &req, true) {
		return
	}

	resp, err := h.service.Apply(r.Context(), userctx.OwnerID(r.Context()), r.PathValue("id"), req.Date)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
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
	case errors.Is(err, diary.ErrTemplateNotFound):
		writeError(w, http.StatusNotFound, "template_not_found", "Template not found")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

// decodeBody reads a JSON body. With allowEmpty an empty body leaves dst
// at its zero value.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return true
	}
	writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
	return false
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
