package templates

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fdg312/calorie-diary/internal/datekey"
	"github.com/fdg312/calorie-diary/internal/diary"
	"github.com/fdg312/calorie-diary/internal/storage/memory"
)

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	clock := datekey.Clock{
		Now:      func() time.Time { return time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC) },
		Location: time.UTC,
	}
	var buf bytes.Buffer
	reg := diary.NewRegistry(memory.New(), diary.DefaultPolicy(), clock, log.New(&buf, "", 0))
	h := NewHandler(NewService(reg))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/templates", h.HandleList)
	mux.HandleFunc("POST /v1/templates", h.HandleCreate)
	mux.HandleFunc("PATCH /v1/templates/{id}", h.HandleUpdate)
	mux.HandleFunc("DELETE /v1/templates/{id}", h.HandleDelete)
	mux.HandleFunc("POST /v1/templates/{id}/apply", h.HandleApply)
	return mux
}

func do(mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func create(t *testing.T, mux http.Handler, body string) diary.Template {
	t.Helper()
	rec := do(mux, http.MethodPost, "/v1/templates", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var tpl diary.Template
	json.NewDecoder(rec.Body).Decode(&tpl)
	return tpl
}

func TestTemplateCRUDAndSearch(t *testing.T) {
	mux := newTestMux(t)
	create(t, mux, `{"name":"oatmeal","cals":150}`)
	shake := create(t, mux, `{"name":"Protein shake","cals":250,"protein":40}`)

	var list ListResponse
	json.NewDecoder(do(mux, http.MethodGet, "/v1/templates", "").Body).Decode(&list)
	if len(list.Templates) != 2 || list.Templates[0].Name != "oatmeal" {
		t.Fatalf("expected name-sorted list, got %+v", list.Templates)
	}

	json.NewDecoder(do(mux, http.MethodGet, "/v1/templates?q=SHAKE", "").Body).Decode(&list)
	if len(list.Templates) != 1 || list.Templates[0].ID != shake.ID {
		t.Fatalf("expected search to find shake, got %+v", list.Templates)
	}

	rec := do(mux, http.MethodPatch, "/v1/templates/"+shake.ID, `{"name":"Shake","cals":300,"protein":45}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	if rec := do(mux, http.MethodDelete, "/v1/templates/"+shake.ID, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec := do(mux, http.MethodDelete, "/v1/templates/"+shake.ID, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestApplyTemplate(t *testing.T) {
	mux := newTestMux(t)
	tpl := create(t, mux, `{"name":"Oatmeal","cals":150}`)

	rec := do(mux, http.MethodPost, "/v1/templates/"+tpl.ID+"/apply", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp ApplyResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Date != "2024-06-03" || resp.Entry.Calories != 150 || resp.Entry.ID == tpl.ID {
		t.Fatalf("unexpected apply response %+v", resp)
	}

	rec = do(mux, http.MethodPost, "/v1/templates/"+tpl.ID+"/apply", `{"date":"2024-06-01"}`)
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Date != "2024-06-01" {
		t.Fatalf("expected explicit date, got %s", resp.Date)
	}

	cases := []struct {
		path, body string
		want       int
	}{
		{"/v1/templates/missing/apply", "", http.StatusNotFound},
		{"/v1/templates/" + tpl.ID + "/apply", `{"date":"2024-06-04"}`, http.StatusConflict},
		{"/v1/templates/" + tpl.ID + "/apply", `{"date":"June 1"}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		if rec := do(mux, http.MethodPost, tc.path, tc.body); rec.Code != tc.want {
			t.Fatalf("%s %s: expected %d, got %d", tc.path, tc.body, tc.want, rec.Code)
		}
	}
}

func TestCreateTemplateValidation(t *testing.T) {
	mux := newTestMux(t)
	rec := do(mux, http.MethodPost, "/v1/templates", `{"name":"","cals":100}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp ErrorResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Error.Code != "validation_error" {
		t.Fatalf("expected validation_error, got %s", resp.Error.Code)
	}
}
