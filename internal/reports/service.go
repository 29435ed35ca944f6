package reports

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/fdg312/calorie-diary/internal/blob"
	"github.com/fdg312/calorie-diary/internal/datekey"
	"github.com/fdg312/calorie-diary/internal/diary"
	"github.com/fdg312/calorie-diary/internal/storage"
	"github.com/google/uuid"
)

// Errors
var (
	ErrInvalidFormat    = errors.New("invalid format")
	ErrInvalidDate      = errors.New("invalid date format")
	ErrInvalidDateRange = errors.New("from date must be before to date")
	ErrRangeTooLarge    = errors.New("date range too large")
	ErrReportNotFound   = errors.New("report not found")
)

// ServiceConfig holds the storage and URL options of the reports service
type ServiceConfig struct {
	MaxRangeDays    int
	PresignTTL      int
	PublicBaseURL   string // S3 public base URL (if prefer_public_url mode)
	PreferPublicURL bool   // if true, use public URLs instead of presigned
	// RedirectDownloads sends clients to a presigned URL instead of
	// streaming the object through the API (S3 mode).
	RedirectDownloads bool
}

// Service handles reports business logic
type Service struct {
	reportsStorage storage.ReportsStorage
	registry       *diary.Registry
	generator      *Generator
	blobStore      blob.Store
	cfg            ServiceConfig
	localMode      bool // true if no blob store configured
}

// NewService creates a new reports service. blobStore may be nil: report
// data then lives next to its metadata in memory.
func NewService(reportsStorage storage.ReportsStorage, registry *diary.Registry, blobStore blob.Store, cfg ServiceConfig) *Service {
	if cfg.MaxRangeDays <= 0 {
		cfg.MaxRangeDays = 90
	}
	if cfg.PresignTTL <= 0 {
		cfg.PresignTTL = 900
	}
	return &Service{
		reportsStorage: reportsStorage,
		registry:       registry,
		generator:      NewGenerator(),
		blobStore:      blobStore,
		cfg:            cfg,
		localMode:      blobStore == nil,
	}
}

func (s *Service) MaxRangeDays() int {
	return s.cfg.MaxRangeDays
}

// CreateReport creates a new report
func (s *Service) CreateReport(ctx context.Context, ownerID string, req CreateReportRequest) (*Report, error) {
	if req.Format != FormatPDF && req.Format != FormatCSV {
		return nil, ErrInvalidFormat
	}

	daysDiff, err := datekey.Between(req.From, req.To)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if daysDiff < 0 {
		return nil, ErrInvalidDateRange
	}
	if daysDiff > s.cfg.MaxRangeDays {
		return nil, ErrRangeTooLarge
	}

	input := ReportData{From: req.From, To: req.To}
	now := s.registry.Now(ctx)
	err = s.registry.With(ctx, ownerID, func(st *diary.Store) error {
		agg := diary.NewAggregator(st)
		sum, err := agg.Range(req.From, req.To, now)
		if err != nil {
			return err
		}
		input.Summary = sum
		input.Goal = st.Goal()
		input.Streak = agg.Streak(datekey.Today(now))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read diary: %w", err)
	}

	data, err := s.generator.Generate(req.Format, input)
	if err != nil {
		return nil, fmt.Errorf("failed to generate report: %w", err)
	}

	report := &storage.ReportMeta{
		OwnerID:   ownerID,
		Format:    req.Format,
		FromDate:  req.From,
		ToDate:    req.To,
		SizeBytes: int64(len(data)),
		Status:    StatusReady,

		DaysLogged:    input.Summary.DaysLogged,
		DaysOverGoal:  input.Summary.DaysOverGoal,
		TotalCalories: input.Summary.Total.Calories,
		AvgCalories:   input.Summary.AvgCalories,
	}

	if s.localMode {
		report.Data = data
	} else {
		objectKey := fmt.Sprintf("reports/%s/%s_%s_%s.%s",
			url.PathEscape(ownerID),
			req.From,
			req.To,
			uuid.New().String(),
			req.Format,
		)

		if _, err = s.blobStore.PutObject(ctx, objectKey, data, contentTypeFor(req.Format)); err != nil {
			return nil, fmt.Errorf("failed to upload report: %w", err)
		}

		report.ObjectKey = &objectKey
	}

	if err := s.reportsStorage.CreateReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to save report metadata: %w", err)
	}

	return toReport(report), nil
}

// GetReport retrieves a report by ID. Reports of other owners are reported
// as not found.
func (s *Service) GetReport(ctx context.Context, ownerID string, id uuid.UUID) (*Report, error) {
	meta, err := s.ownedMeta(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return toReport(meta), nil
}

// ListReports lists the owner's reports, newest first
func (s *Service) ListReports(ctx context.Context, ownerID string, limit, offset int) ([]Report, error) {
	metaList, err := s.reportsStorage.ListReports(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	reports := make([]Report, len(metaList))
	for i := range metaList {
		reports[i] = *toReport(&metaList[i])
	}

	return reports, nil
}

// DeleteReport deletes a report
func (s *Service) DeleteReport(ctx context.Context, ownerID string, id uuid.UUID) error {
	meta, err := s.ownedMeta(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if !s.localMode && meta.ObjectKey != nil {
		if err := s.blobStore.DeleteObject(ctx, *meta.ObjectKey); err != nil {
			// metadata deletion goes on regardless
			log.Printf("WARN reports: failed to delete object %s: %v", *meta.ObjectKey, err)
		}
	}

	if err := s.reportsStorage.DeleteReport(ctx, id); err != nil {
		return fmt.Errorf("failed to delete report metadata: %w", err)
	}

	return nil
}

// GetReportDownloadURL generates a download URL for a report
func (s *Service) GetReportDownloadURL(ctx context.Context, report *Report, baseURL string) (string, error) {
	if s.localMode || !s.cfg.RedirectDownloads {
		return fmt.Sprintf("%s/v1/reports/%s/download", strings.TrimSuffix(baseURL, "/"), report.ID.String()), nil
	}

	if report.ObjectKey == nil {
		return "", fmt.Errorf("object key is missing")
	}

	if s.cfg.PreferPublicURL && s.cfg.PublicBaseURL != "" {
		return strings.TrimSuffix(s.cfg.PublicBaseURL, "/") + "/" + *report.ObjectKey, nil
	}

	presignedURL, err := s.blobStore.PresignGet(ctx, *report.ObjectKey, s.cfg.PresignTTL)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return presignedURL, nil
}

// ShouldRedirect reports whether downloads go straight to object storage.
func (s *Service) ShouldRedirect() bool {
	return !s.localMode && s.cfg.RedirectDownloads
}

// GetReportData returns the raw report bytes and their content type
func (s *Service) GetReportData(ctx context.Context, report *Report) ([]byte, string, error) {
	contentType := contentTypeFor(report.Format)

	if s.localMode {
		return report.Data, contentType, nil
	}

	if report.ObjectKey == nil {
		return nil, "", fmt.Errorf("object key is missing")
	}

	data, err := s.blobStore.GetObject(ctx, *report.ObjectKey)
	if errors.Is(err, blob.ErrObjectNotFound) {
		return nil, "", ErrReportNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch report: %w", err)
	}
	return data, contentType, nil
}

func (s *Service) ownedMeta(ctx context.Context, ownerID string, id uuid.UUID) (*storage.ReportMeta, error) {
	meta, err := s.reportsStorage.GetReport(ctx, id)
	if errors.Is(err, storage.ErrReportNotFound) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	if meta.OwnerID != ownerID {
		return nil, ErrReportNotFound
	}
	return meta, nil
}

func contentTypeFor(format string) string {
	if format == FormatCSV {
		return "text/csv"
	}
	return "application/pdf"
}

func toReport(meta *storage.ReportMeta) *Report {
	return &Report{ReportMeta: *meta}
}
