package auth

import (
	"encoding/json"
	"errors"
	"net/http"
)

type Handlers struct {
	service *Service
}

func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleInstall handles POST /v1/auth/install
func (h *Handlers) HandleInstall(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Install(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleRefresh handles POST /v1/auth/refresh. The current token must still be valid.
func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ownerID, err := bearerSubject(h.service, r.Header.Get("Authorization"))
	if err != nil {
		writeErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
		return
	}
	resp, err := h.service.Refresh(r.Context(), ownerID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrAuthDisabled):
		writeErrorResponse(w, http.StatusNotFound, "auth_disabled", "Authentication is disabled")
	case errors.Is(err, ErrInvalidToken):
		writeErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
	default:
		writeErrorResponse(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}
