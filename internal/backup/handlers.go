package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/fdg312/calorie-diary/internal/diary"
	"github.com/fdg312/calorie-diary/internal/userctx"
)

const maxBackupBytes = 10 << 20

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleExport handles GET /v1/backup
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	filename, data, err := h.service.Export(r.Context(), userctx.OwnerID(r.Context()))
	if err != nil {
		h.handleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// HandleImport handles POST /v1/backup
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBackupBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "backup_too_large", "Backup exceeds 10 MB")
		return
	}

	resp, err := h.service.Import(r.Context(), userctx.OwnerID(r.Context()), data)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleArchive handles POST /v1/backup/archive
func (h *Handler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Archive(r.Context(), userctx.OwnerID(r.Context()))
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, diary.ErrInvalidBackup):
		writeError(w, http.StatusBadRequest, "invalid_backup", "Invalid backup file")
	case errors.Is(err, ErrArchiveUnavailable):
		writeError(w, http.StatusServiceUnavailable, "archive_unavailable", "Backup archive requires BLOB_MODE=s3 or file")
	default:
		log.Printf("ERROR backup: %v", err)
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
