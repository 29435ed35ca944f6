package calendar

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fdg312/calorie-diary/internal/diary"
	"github.com/fdg312/calorie-diary/internal/userctx"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleCalendar handles GET /v1/calendar?year=&month=&selected=
func (h *Handler) HandleCalendar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var cursor diary.MonthCursor
	yearRaw, monthRaw := strings.TrimSpace(q.Get("year")), strings.TrimSpace(q.Get("month"))
	if yearRaw != "" || monthRaw != "" {
		year, yerr := strconv.Atoi(yearRaw)
		month, merr := strconv.Atoi(monthRaw)
		if yerr != nil || merr != nil {
			h.handleError(w, ErrInvalidMonth)
			return
		}
		cursor = diary.MonthCursor{Year: year, Month: time.Month(month)}
	}

	resp, err := h.service.Month(r.Context(), userctx.OwnerID(r.Context()), cursor, strings.TrimSpace(q.Get("selected")))
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleStreak handles GET /v1/streak
func (h *Handler) HandleStreak(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Streak(r.Context(), userctx.OwnerID(r.Context()))
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleHistory handles GET /v1/history?days=
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	days := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("days")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed == 0 {
			h.handleError(w, ErrInvalidDays)
			return
		}
		days = parsed
	}

	resp, err := h.service.History(r.Context(), userctx.OwnerID(r.Context()), days)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleNavigate handles GET /v1/navigate?from=&move=&to=
func (h *Handler) HandleNavigate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := h.service.Navigate(r.Context(),
		strings.TrimSpace(q.Get("from")),
		strings.ToLower(strings.TrimSpace(q.Get("move"))),
		strings.TrimSpace(q.Get("to")),
	)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidMonth):
		writeError(w, http.StatusBadRequest, "invalid_month", "year and month must be numbers, month 1-12")
	case errors.Is(err, ErrInvalidDays):
		writeError(w, http.StatusBadRequest, "invalid_days", "days must be between 1 and 90")
	case errors.Is(err, ErrInvalidMove):
		writeError(w, http.StatusBadRequest, "invalid_move", "move must be prev, next, select or today")
	case errors.Is(err, diary.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, "invalid_date", "Date must be YYYY-MM-DD")
	case errors.Is(err, ErrNavRejected):
		writeError(w, http.StatusConflict, "nav_rejected", "Cannot move past today")
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
