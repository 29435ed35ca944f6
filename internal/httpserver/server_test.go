package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fdg312/calorie-diary/internal/config"
)

func TestHealthz(t *testing.T) {
	cfg := &config.Config{Port: 8080}
	srv := New(cfg)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	srv.mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp["status"] != "ok" {
		t.Errorf("expected status=ok, got %s", resp["status"])
	}
}

func TestHealthzMethodNotAllowed(t *testing.T) {
	cfg := &config.Config{Port: 8080}
	srv := New(cfg)

	req := httptest.NewRequest(http.MethodPost, "/healthz", nil)
	w := httptest.NewRecorder()

	srv.mux.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

func TestDayRoundTripThroughHandler(t *testing.T) {
	cfg := &config.Config{Port: 8080, AuthMode: "none"}
	srv := New(cfg)
	handler := srv.Handler()

	body := strings.NewReader(`{"name":"Oatmeal","cals":350}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/days/today/entries", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(TimezoneHeader, "UTC")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/days/today", nil)
	req.Header.Set(TimezoneHeader, "UTC")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var view struct {
		IsToday bool `json:"is_today"`
		Entries []struct {
			Name string `json:"name"`
		} `json:"entries"`
		Totals struct {
			Calories int `json:"cals"`
		} `json:"totals"`
	}
	if err := json.NewDecoder(w.Body).Decode(&view); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !view.IsToday {
		t.Error("expected is_today=true")
	}
	if len(view.Entries) != 1 || view.Entries[0].Name != "Oatmeal" {
		t.Fatalf("expected one Oatmeal entry, got %+v", view.Entries)
	}
	if view.Totals.Calories != 350 {
		t.Errorf("expected 350 cals, got %d", view.Totals.Calories)
	}
}

func TestArchiveUnavailableInLocalMode(t *testing.T) {
	cfg := &config.Config{Port: 8080, AuthMode: "none"}
	srv := New(cfg)

	req := httptest.NewRequest(http.MethodPost, "/v1/backup/archive", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
}

func TestBlobDiaryStorageInFileMode(t *testing.T) {
	cfg := &config.Config{
		Port:     8080,
		AuthMode: "none",
		Blob:     config.BlobConfig{Mode: config.BlobModeFile, Dir: t.TempDir()},
		Diary:    config.DiaryConfig{Storage: config.DiaryStorageBlob, Timezone: "UTC"},
	}
	srv := New(cfg)

	req := httptest.NewRequest(http.MethodPut, "/v1/goals", strings.NewReader(`{"cals":1800}`))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	// A fresh server over the same directory sees the saved goal.
	srv2 := New(cfg)
	req = httptest.NewRequest(http.MethodGet, "/v1/goals", nil)
	w = httptest.NewRecorder()
	srv2.Handler().ServeHTTP(w, req)

	var resp struct {
		Goal struct {
			Calories int `json:"cals"`
		} `json:"goal"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Goal.Calories != 1800 {
		t.Errorf("expected goal 1800 after reload, got %d", resp.Goal.Calories)
	}
}
