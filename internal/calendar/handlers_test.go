package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fdg312/calorie-diary/internal/datekey"
	"github.com/fdg312/calorie-diary/internal/diary"
	"github.com/fdg312/calorie-diary/internal/storage/memory"
	"github.com/fdg312/calorie-diary/internal/userctx"
)

func newTestHandler(t *testing.T) (*Handler, *diary.Registry) {
	t.Helper()
	clock := datekey.Clock{
		Now:      func() time.Time { return time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC) },
		Location: time.UTC,
	}
	var buf bytes.Buffer
	reg := diary.NewRegistry(memory.New(), diary.DefaultPolicy(), clock, log.New(&buf, "", 0))
	return NewHandler(NewService(reg)), reg
}

func seed(t *testing.T, reg *diary.Registry, cals map[string]int) {
	t.Helper()
	ctx := context.Background()
	reg.With(ctx, userctx.DefaultOwnerID, func(s *diary.Store) error {
		for day, c := range cals {
			if _, err := s.AddEntry(ctx, day, diary.EntryDraft{Name: "food", Calories: c}); err != nil {
				t.Fatalf("seed %s: %v", day, err)
			}
		}
		return nil
	})
}

func get(handler http.HandlerFunc, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestCalendarCurrentMonth(t *testing.T) {
	h, reg := newTestHandler(t)
	seed(t, reg, map[string]int{"2024-06-01": 2500, "2024-06-02": 1500})

	rec := get(h.HandleCalendar, "/v1/calendar?selected=2024-06-02")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp CalendarResponse
	json.NewDecoder(rec.Body).Decode(&resp)

	if resp.Year != 2024 || resp.Month != time.June || resp.Label != "June 2024" || resp.Next != nil {
		t.Fatalf("unexpected header %+v", resp)
	}
	if len(resp.Cells) != 36 || !resp.Cells[0].Blank || resp.Cells[6].Date != "2024-06-01" {
		t.Fatalf("expected 6 blanks then June, got %d cells", len(resp.Cells))
	}
	first := resp.Cells[6]
	if first.Total == nil || *first.Total != 2500 || first.OverGoal == nil || !*first.OverGoal {
		t.Fatalf("unexpected first cell %+v", first)
	}
	if !resp.Cells[7].IsSelected || !resp.Cells[8].IsToday || !resp.Cells[9].IsFuture {
		t.Fatalf("unexpected flags %+v %+v %+v", resp.Cells[7], resp.Cells[8], resp.Cells[9])
	}
	if resp.Summary.DaysLogged != 2 || resp.Summary.AvgCalories != 2000 || resp.Summary.DaysOverGoal != 1 {
		t.Fatalf("unexpected summary %+v", resp.Summary)
	}
}

func TestCalendarPastMonthAndErrors(t *testing.T) {
	h, _ := newTestHandler(t)

	var resp CalendarResponse
	json.NewDecoder(get(h.HandleCalendar, "/v1/calendar?year=2023&month=12").Body).Decode(&resp)
	if resp.Next == nil || resp.Next.Year != 2024 || resp.Next.Month != time.January || resp.Prev.Month != time.November {
		t.Fatalf("unexpected cursors %+v", resp)
	}

	cases := []struct {
		target string
		want   int
	}{
		{"/v1/calendar?year=2024&month=7", http.StatusConflict},
		{"/v1/calendar?year=2024&month=13", http.StatusBadRequest},
		{"/v1/calendar?year=abc&month=1", http.StatusBadRequest},
		{"/v1/calendar?selected=yesterday", http.StatusBadRequest},
	}
	for _, tc := range cases {
		if rec := get(h.HandleCalendar, tc.target); rec.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.target, tc.want, rec.Code)
		}
	}
}

func TestStreakEndpoint(t *testing.T) {
	h, reg := newTestHandler(t)
	seed(t, reg, map[string]int{"2024-06-01": 100, "2024-06-02": 100})

	var resp StreakResponse
	json.NewDecoder(get(h.HandleStreak, "/v1/streak").Body).Decode(&resp)
	if resp.Streak != 0 {
		t.Fatalf("expected 0 while today is empty, got %d", resp.Streak)
	}

	seed(t, reg, map[string]int{"2024-06-03": 100})
	json.NewDecoder(get(h.HandleStreak, "/v1/streak").Body).Decode(&resp)
	if resp.Streak != 3 || resp.Today != "2024-06-03" {
		t.Fatalf("expected streak 3, got %+v", resp)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	h, _ := newTestHandler(t)

	var resp HistoryResponse
	json.NewDecoder(get(h.HandleHistory, "/v1/history").Body).Decode(&resp)
	if len(resp.Days) != 14 || resp.Days[0].Date != "2024-06-03" {
		t.Fatalf("unexpected default history %+v", resp.Days)
	}
	json.NewDecoder(get(h.HandleHistory, "/v1/history?days=3").Body).Decode(&resp)
	if len(resp.Days) != 3 || resp.Days[2].Date != "2024-06-01" {
		t.Fatalf("unexpected history %+v", resp.Days)
	}
	if rec := get(h.HandleHistory, "/v1/history?days=500"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestNavigate(t *testing.T) {
	h, _ := newTestHandler(t)

	cases := []struct {
		target   string
		want     int
		wantView string
	}{
		{"/v1/navigate?from=2024-06-03&move=prev", http.StatusOK, "2024-06-02"},
		{"/v1/navigate?from=2024-06-02&move=next", http.StatusOK, "2024-06-03"},
		{"/v1/navigate?from=2024-06-03&move=next", http.StatusConflict, ""},
		{"/v1/navigate?from=2024-06-03&move=select&to=2024-05-20", http.StatusOK, "2024-05-20"},
		{"/v1/navigate?from=2024-06-03&move=select&to=2024-06-10", http.StatusConflict, ""},
		{"/v1/navigate?from=2024-01-01&move=today", http.StatusOK, "2024-06-03"},
		{"/v1/navigate?move=prev", http.StatusOK, "2024-06-02"},
		{"/v1/navigate?from=2024-06-03&move=jump", http.StatusBadRequest, ""},
		{"/v1/navigate?from=bad&move=prev", http.StatusBadRequest, ""},
	}
	for _, tc := range cases {
		rec := get(h.HandleNavigate, tc.target)
		if rec.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.target, tc.want, rec.Code)
		}
		if tc.wantView == "" {
			continue
		}
		var resp NavigateResponse
		json.NewDecoder(rec.Body).Decode(&resp)
		if resp.View != tc.wantView {
			t.Fatalf("%s: expected view %s, got %s", tc.target, tc.wantView, resp.View)
		}
	}
}
