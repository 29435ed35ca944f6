package reports

import (
	"fmt"
	"time"

	"github.com/fdg312/calorie-diary/internal/storage"
	"github.com/google/uuid"
)

const (
	FormatPDF = "pdf"
	FormatCSV = "csv"

	StatusReady = "ready"
)

// Report is a generated diary report together with the period summary
// captured when it was built.
type Report struct {
	storage.ReportMeta
}

// Filename is the name offered to clients when they save the report.
func (r *Report) Filename() string {
	return fmt.Sprintf("calorie-report_%s_%s.%s", r.FromDate, r.ToDate, r.Format)
}

type CreateReportRequest struct {
	From   string `json:"from"` // YYYY-MM-DD
	To     string `json:"to"`
	Format string `json:"format"` // pdf | csv
}

type ReportSummaryDTO struct {
	DaysLogged    int `json:"days_logged"`
	DaysOverGoal  int `json:"days_over_goal"`
	TotalCalories int `json:"total_calories"`
	AvgCalories   int `json:"avg_calories"`
}

type ReportDTO struct {
	ID          uuid.UUID        `json:"id"`
	Format      string           `json:"format"`
	From        string           `json:"from"`
	To          string           `json:"to"`
	Filename    string           `json:"filename"`
	DownloadURL string           `json:"download_url"`
	SizeBytes   int64            `json:"size_bytes"`
	Status      string           `json:"status"`
	Summary     ReportSummaryDTO `json:"summary"`
	CreatedAt   time.Time        `json:"created_at"`
}

type ReportsResponse struct {
	Reports []ReportDTO `json:"reports"`
}
