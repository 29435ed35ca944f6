package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fdg312/calorie-diary/internal/blob"
	"github.com/fdg312/calorie-diary/internal/datekey"
	"github.com/fdg312/calorie-diary/internal/diary"
	"github.com/fdg312/calorie-diary/internal/storage/memory"
	"github.com/fdg312/calorie-diary/internal/userctx"
	"github.com/google/uuid"
)

func setupTestService(t *testing.T, store blob.Store) *Service {
	t.Helper()
	mem := memory.New()
	clock := datekey.Clock{
		Now:      func() time.Time { return time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC) },
		Location: time.UTC,
	}
	var buf bytes.Buffer
	reg := diary.NewRegistry(mem, diary.DefaultPolicy(), clock, log.New(&buf, "", 0))

	ctx := context.Background()
	reg.With(ctx, userctx.DefaultOwnerID, func(s *diary.Store) error {
		s.AddEntry(ctx, "2026-02-10", diary.EntryDraft{Name: "Pasta", Calories: 2300, Protein: 60})
		s.AddEntry(ctx, "2026-02-14", diary.EntryDraft{Name: "Salad", Calories: 400})
		s.AddEntry(ctx, "2026-02-15", diary.EntryDraft{Name: "Eggs", Calories: 300})
		return nil
	})

	return NewService(mem.GetReportsStorage(), reg, store, ServiceConfig{MaxRangeDays: 90, PresignTTL: 900})
}

func createReport(t *testing.T, handler *Handlers, req CreateReportRequest) ReportDTO {
	t.Helper()
	body, _ := json.Marshal(req)
	w := httptest.NewRecorder()
	handler.HandleCreate(w, httptest.NewRequest("POST", "/v1/reports", bytes.NewReader(body)))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d. Body: %s", w.Code, w.Body.String())
	}
	var resp ReportDTO
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func download(handler *Handlers, id string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", fmt.Sprintf("/v1/reports/%s/download", id), nil)
	req.SetPathValue("id", id)
	w := httptest.NewRecorder()
	handler.HandleDownload(w, req)
	return w
}

func TestHandleCreate_CSV_Success(t *testing.T) {
	handler := NewHandlers(setupTestService(t, nil))

	resp := createReport(t, handler, CreateReportRequest{From: "2026-02-01", To: "2026-02-20", Format: FormatCSV})
	if resp.Format != FormatCSV || resp.DownloadURL == "" {
		t.Fatalf("unexpected response %+v", resp)
	}
	want := ReportSummaryDTO{DaysLogged: 3, DaysOverGoal: 1, TotalCalories: 3000, AvgCalories: 1000}
	if resp.Summary != want {
		t.Fatalf("summary = %+v, want %+v", resp.Summary, want)
	}
	if resp.Filename != "calorie-report_2026-02-01_2026-02-20.csv" {
		t.Errorf("unexpected filename %q", resp.Filename)
	}

	w := download(handler, resp.ID.String())
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="calorie-report_2026-02-01_2026-02-20.csv"` {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}
	if w.Header().Get("Content-Type") != "text/csv" {
		t.Errorf("expected content type text/csv, got %s", w.Header().Get("Content-Type"))
	}

	rows, err := csv.NewReader(w.Body).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse csv: %v", err)
	}
	// header + Feb 1..15; days after today are not reported
	if len(rows) != 16 {
		t.Fatalf("expected 16 rows, got %d", len(rows))
	}
	pasta := rows[10]
	if pasta[0] != "2026-02-10" || pasta[1] != "2300" || pasta[2] != "60" || pasta[7] != "true" {
		t.Fatalf("unexpected row %v", pasta)
	}
}

func TestHandleCreate_PDF_Success(t *testing.T) {
	handler := NewHandlers(setupTestService(t, nil))

	resp := createReport(t, handler, CreateReportRequest{From: "2026-02-01", To: "2026-02-15", Format: FormatPDF})
	w := download(handler, resp.ID.String())
	if !strings.HasPrefix(w.Body.String(), "%PDF") {
		t.Fatalf("expected PDF body, got %q", w.Body.String()[:min(10, w.Body.Len())])
	}
}

func TestHandleCreate_Errors(t *testing.T) {
	handler := NewHandlers(setupTestService(t, nil))

	cases := []struct {
		req  CreateReportRequest
		code string
	}{
		{CreateReportRequest{From: "2026-01-01", To: "2026-06-01", Format: FormatCSV}, "range_too_large"},
		{CreateReportRequest{From: "2026-02-10", To: "2026-02-01", Format: FormatCSV}, "invalid_range"},
		{CreateReportRequest{From: "2026-2-1", To: "2026-02-10", Format: FormatCSV}, "invalid_date"},
		{CreateReportRequest{From: "2026-02-01", To: "2026-02-10", Format: "xlsx"}, "invalid_format"},
	}
	for _, tc := range cases {
		body, _ := json.Marshal(tc.req)
		w := httptest.NewRecorder()
		handler.HandleCreate(w, httptest.NewRequest("POST", "/v1/reports", bytes.NewReader(body)))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%+v: expected status 400, got %d", tc.req, w.Code)
		}
		var errResp map[string]map[string]string
		json.NewDecoder(w.Body).Decode(&errResp)
		if errResp["error"]["code"] != tc.code {
			t.Fatalf("%+v: expected code %s, got %s", tc.req, tc.code, errResp["error"]["code"])
		}
	}
}

func TestHandleList_OwnerScoped(t *testing.T) {
	service := setupTestService(t, nil)
	handler := NewHandlers(service)

	service.CreateReport(context.Background(), userctx.DefaultOwnerID, CreateReportRequest{From: "2026-02-01", To: "2026-02-15", Format: FormatCSV})
	service.CreateReport(context.Background(), "someone-else", CreateReportRequest{From: "2026-02-01", To: "2026-02-15", Format: FormatCSV})

	w := httptest.NewRecorder()
	handler.HandleList(w, httptest.NewRequest("GET", "/v1/reports", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp ReportsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Reports) != 1 {
		t.Errorf("expected 1 report, got %d", len(resp.Reports))
	}
}

func TestHandleDownload_OtherOwnerNotFound(t *testing.T) {
	service := setupTestService(t, nil)
	report, err := service.CreateReport(context.Background(), "someone-else", CreateReportRequest{From: "2026-02-01", To: "2026-02-15", Format: FormatCSV})
	if err != nil {
		t.Fatalf("failed to create report: %v", err)
	}

	if w := download(NewHandlers(service), report.ID.String()); w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestBlobModeStoresObject(t *testing.T) {
	store, err := blob.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	service := setupTestService(t, store)
	handler := NewHandlers(service)

	resp := createReport(t, handler, CreateReportRequest{From: "2026-02-01", To: "2026-02-15", Format: FormatCSV})
	report, err := service.GetReport(context.Background(), userctx.DefaultOwnerID, resp.ID)
	if err != nil {
		t.Fatalf("get report: %v", err)
	}
	if report.ObjectKey == nil || !strings.HasPrefix(*report.ObjectKey, "reports/default/2026-02-01_2026-02-15_") {
		t.Fatalf("unexpected object key %v", report.ObjectKey)
	}
	if report.Data != nil {
		t.Fatal("expected no inline data in blob mode")
	}

	w := download(handler, resp.ID.String())
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Body.String(), "date,cals") {
		t.Fatalf("expected streamed csv, got %d %q", w.Code, w.Body.String())
	}

	req := httptest.NewRequest("DELETE", "/v1/reports/"+resp.ID.String(), nil)
	req.SetPathValue("id", resp.ID.String())
	handler.HandleDelete(httptest.NewRecorder(), req)
	if _, err := store.GetObject(context.Background(), *report.ObjectKey); err != blob.ErrObjectNotFound {
		t.Fatalf("expected object removed, got %v", err)
	}
}

func TestHandleDelete(t *testing.T) {
	service := setupTestService(t, nil)
	handler := NewHandlers(service)

	report, err := service.CreateReport(context.Background(), userctx.DefaultOwnerID, CreateReportRequest{From: "2026-02-01", To: "2026-02-15", Format: FormatCSV})
	if err != nil {
		t.Fatalf("failed to create report: %v", err)
	}

	req := httptest.NewRequest("DELETE", fmt.Sprintf("/v1/reports/%s", report.ID.String()), nil)
	req.SetPathValue("id", report.ID.String())
	w := httptest.NewRecorder()
	handler.HandleDelete(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected status 204, got %d", w.Code)
	}

	if _, err = service.GetReport(context.Background(), userctx.DefaultOwnerID, report.ID); err == nil {
		t.Error("expected report to be deleted")
	}
}

func TestHandleDelete_NotFound(t *testing.T) {
	handler := NewHandlers(setupTestService(t, nil))

	id := uuid.New().String()
	req := httptest.NewRequest("DELETE", fmt.Sprintf("/v1/reports/%s", id), nil)
	req.SetPathValue("id", id)
	w := httptest.NewRecorder()
	handler.HandleDelete(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestPageParams(t *testing.T) {
	tests := []struct {
		query             string
		wantLimit, wantOf int
	}{
		{"", defaultPageSize, 0},
		{"?limit=5&offset=10", 5, 10},
		{"?limit=1000", maxPageSize, 0},
		{"?limit=-1&offset=-3", defaultPageSize, 0},
		{"?limit=abc&offset=x", defaultPageSize, 0},
	}
	for _, tt := range tests {
		limit, offset := pageParams(httptest.NewRequest("GET", "/v1/reports"+tt.query, nil))
		if limit != tt.wantLimit || offset != tt.wantOf {
			t.Errorf("%q: got limit=%d offset=%d, want %d/%d", tt.query, limit, offset, tt.wantLimit, tt.wantOf)
		}
	}
}
