package reports

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/fdg312/calorie-diary/internal/userctx"
	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type Handlers struct {
	service *Service
}

func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleCreate handles POST /v1/reports
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON")
		return
	}

	report, err := h.service.CreateReport(r.Context(), userctx.OwnerID(r.Context()), req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	dto, err := h.toDTO(r, report)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to generate download URL")
		return
	}
	writeJSON(w, http.StatusCreated, dto)
}

// HandleList handles GET /v1/reports?limit=&offset=
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	list, err := h.service.ListReports(r.Context(), userctx.OwnerID(r.Context()), limit, offset)
	if err != nil {
		h.handleError(w, err)
		return
	}

	resp := ReportsResponse{Reports: make([]ReportDTO, 0, len(list))}
	for i := range list {
		dto, err := h.toDTO(r, &list[i])
		if err != nil {
			// the entry is still listed, only without a link
			log.Printf("WARN reports: download url for %s: %v", list[i].ID, err)
		}
		resp.Reports = append(resp.Reports, dto)
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleDownload handles GET /v1/reports/{id}/download. In S3 mode the client
// is redirected to a signed URL; otherwise the bytes are streamed.
func (h *Handlers) HandleDownload(w http.ResponseWriter, r *http.Request) {
	report, ok := h.lookup(w, r)
	if !ok {
		return
	}

	if h.service.ShouldRedirect() {
		target, err := h.service.GetReportDownloadURL(r.Context(), report, getBaseURL(r))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", "Failed to generate download URL")
			return
		}
		http.Redirect(w, r, target, http.StatusFound)
		return
	}

	data, contentType, err := h.service.GetReportData(r.Context(), report)
	if err != nil {
		h.handleError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename()))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

// HandleDelete handles DELETE /v1/reports/{id}
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := reportID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteReport(r.Context(), userctx.OwnerID(r.Context()), id); err != nil {
		h.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) lookup(w http.ResponseWriter, r *http.Request) (*Report, bool) {
	id, ok := reportID(w, r)
	if !ok {
		return nil, false
	}
	report, err := h.service.GetReport(r.Context(), userctx.OwnerID(r.Context()), id)
	if err != nil {
		h.handleError(w, err)
		return nil, false
	}
	return report, true
}

func reportID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "Invalid report ID")
		return uuid.Nil, false
	}
	return id, true
}

// pageParams reads limit/offset; bad values fall back to the first page.
func pageParams(r *http.Request) (limit, offset int) {
	q := r.URL.Query()
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultPageSize
	}
	limit = min(limit, maxPageSize)

	offset, err = strconv.Atoi(q.Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (h *Handlers) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidFormat):
		writeError(w, http.StatusBadRequest, "invalid_format", "Format must be 'pdf' or 'csv'")
	case errors.Is(err, ErrInvalidDate):
		writeError(w, http.StatusBadRequest, "invalid_date", "Invalid date format, use YYYY-MM-DD")
	case errors.Is(err, ErrInvalidDateRange):
		writeError(w, http.StatusBadRequest, "invalid_range", "From date must be before to date")
	case errors.Is(err, ErrRangeTooLarge):
		writeError(w, http.StatusBadRequest, "range_too_large", fmt.Sprintf("Date range exceeds maximum of %d days", h.service.MaxRangeDays()))
	case errors.Is(err, ErrReportNotFound):
		writeError(w, http.StatusNotFound, "report_not_found", "Report not found")
	default:
		log.Printf("ERROR reports: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

func (h *Handlers) toDTO(r *http.Request, report *Report) (ReportDTO, error) {
	link, err := h.service.GetReportDownloadURL(r.Context(), report, getBaseURL(r))
	return ReportDTO{
		ID:          report.ID,
		Format:      report.Format,
		From:        report.FromDate,
		To:          report.ToDate,
		Filename:    report.Filename(),
		DownloadURL: link,
		SizeBytes:   report.SizeBytes,
		Status:      report.Status,
		Summary: ReportSummaryDTO{
			DaysLogged:    report.DaysLogged,
			DaysOverGoal:  report.DaysOverGoal,
			TotalCalories: report.TotalCalories,
			AvgCalories:   report.AvgCalories,
		},
		CreatedAt: report.CreatedAt,
	}, err
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

// getBaseURL rebuilds the public origin, honouring a TLS-terminating proxy.
func getBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
