package agent

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fdg312/calorie-diary/internal/userctx"
)

func TestHandleProposeAndConfirm(t *testing.T) {
	svc, _, _ := newTestService(t, &stubProvider{text: `{"notes":"","items":[{"name":"Egg","cals":78,"protein":6,"carbs":1,"fat":5}]}`})
	h := NewHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/v1/agent/propose", strings.NewReader(`{"message":"an egg"}`))
	req = req.WithContext(userctx.WithUserID(req.Context(), "alice"))
	rec := httptest.NewRecorder()
	h.HandlePropose(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var proposed ProposeResponse
	if err := json.NewDecoder(rec.Body).Decode(&proposed); err != nil {
		t.Fatalf("decode: %v", err)
	}

	body, _ := json.Marshal(ConfirmRequest{Date: proposed.Date, Items: proposed.Proposal.Items})
	req = httptest.NewRequest(http.MethodPost, "/v1/agent/confirm", strings.NewReader(string(body)))
	req = req.WithContext(userctx.WithUserID(req.Context(), "alice"))
	rec = httptest.NewRecorder()
	h.HandleConfirm(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"name":"Egg"`) {
		t.Fatalf("expected added entry in body, got %s", rec.Body.String())
	}
}

func TestHandleProposeErrors(t *testing.T) {
	svc, _, _ := newTestService(t, &stubProvider{})
	h := NewHandler(svc)

	cases := []struct {
		body string
		want int
		code string
	}{
		{`not json`, http.StatusBadRequest, "invalid_request"},
		{`{"message":""}`, http.StatusBadRequest, "empty_message"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		h.HandlePropose(rec, httptest.NewRequest(http.MethodPost, "/v1/agent/propose", strings.NewReader(tc.body)))
		if rec.Code != tc.want {
			t.Fatalf("body %q: expected %d, got %d", tc.body, tc.want, rec.Code)
		}
		var resp ErrorResponse
		json.NewDecoder(rec.Body).Decode(&resp)
		if resp.Error.Code != tc.code {
			t.Fatalf("body %q: expected code %s, got %s", tc.body, tc.code, resp.Error.Code)
		}
	}
}

func TestHandleConfirmFutureDate(t *testing.T) {
	svc, _, _ := newTestService(t, &stubProvider{})
	h := NewHandler(svc)

	body := `{"date":"2030-01-01","items":[{"name":"Ghost","cals":500}]}`
	rec := httptest.NewRecorder()
	h.HandleConfirm(rec, httptest.NewRequest(http.MethodPost, "/v1/agent/confirm", strings.NewReader(body)))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp ErrorResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Error.Code != "future_date" {
		t.Fatalf("expected code future_date, got %s", resp.Error.Code)
	}
}

func TestHandleStateless(t *testing.T) {
	svc, _, _ := newTestService(t, &stubProvider{text: "oops"})
	h := NewHandler(svc)

	rec := httptest.NewRecorder()
	h.HandleStateless(rec, httptest.NewRequest(http.MethodPost, "/api/agent", strings.NewReader(`{"message":"toast","date":"2024-06-01"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var p Proposal
	json.NewDecoder(rec.Body).Decode(&p)
	if p.Notes != "Model returned non-JSON output." {
		t.Fatalf("unexpected proposal %+v", p)
	}
}
