package lookup

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleBarcode handles GET /v1/lookup/barcode/{code}?grams=
func (h *Handler) HandleBarcode(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.PathValue("code"))

	var grams float64
	if raw := strings.TrimSpace(r.URL.Query().Get("grams")); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_request", "grams must be a positive number")
			return
		}
		grams = parsed
	}

	candidate, err := h.service.Lookup(r.Context(), code, grams)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, LookupResponse{Candidate: candidate})
	case errors.Is(err, ErrGramsRequired):
		writeJSON(w, http.StatusUnprocessableEntity, LookupResponse{Candidate: candidate, GramsRequired: true})
	default:
		h.handleError(w, err)
	}
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidBarcode):
		writeError(w, http.StatusBadRequest, "invalid_barcode", "Barcode must contain digits")
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "product_not_found", "Product not found in Open Food Facts")
	case errors.Is(err, ErrMissingNutritionData):
		writeError(w, http.StatusUnprocessableEntity, "missing_nutrition_data", "Product has no calorie data")
	case errors.Is(err, ErrNetwork):
		writeError(w, http.StatusBadGateway, "lookup_failed", "Lookup failed, try again")
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
