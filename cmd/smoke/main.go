// Command smoke walks a running API through one diary day end to end.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

// session carries what the steps share: the server, credentials and the ids
// of things created along the way.
type session struct {
	base     string
	token    string
	timezone string
	day      string

	http       *http.Client
	noRedirect *http.Client

	templateID string
	reportID   string
}

type step struct {
	name string
	run  func(*session) error
}

var steps = []step{
	{"healthz", (*session).healthz},
	{"install token", (*session).install},
	{"set goal", (*session).setGoal},
	{"add entry", (*session).addEntry},
	{"read day", (*session).readDay},
	{"create template", (*session).createTemplate},
	{"apply template", (*session).applyTemplate},
	{"calendar", (*session).calendar},
	{"agent propose + confirm", (*session).agent},
	{"backup export", (*session).backup},
	{"create csv report", (*session).createReport},
	{"list reports", (*session).listReports},
	{"download report", (*session).downloadReport},
	{"delete report", func(s *session) error { return s.remove("/v1/reports/" + s.reportID) }},
	{"delete template", func(s *session) error { return s.remove("/v1/templates/" + s.templateID) }},
	{"clear day", (*session).clearDay},
}

func main() {
	s := newSession()

	fmt.Printf("calorie diary smoke: base=%s tz=%s day=%s token=%s\n\n", s.base, s.timezone, s.day, mask(s.token))

	for i, st := range steps {
		fmt.Printf("[%2d/%d] %-26s", i+1, len(steps), st.name)
		if err := st.run(s); err != nil {
			fmt.Printf("FAIL\n       %v\n", err)
			os.Exit(1)
		}
		fmt.Println("ok")
	}
	fmt.Println("\nsmoke passed")
}

func newSession() *session {
	s := &session{
		base:     strings.TrimRight(env("API_BASE_URL", "http://localhost:8080"), "/"),
		token:    os.Getenv("SMOKE_TOKEN"),
		timezone: env("SMOKE_TIMEZONE", "UTC"),
		http:     &http.Client{Timeout: 30 * time.Second},
	}
	s.noRedirect = &http.Client{
		Timeout: s.http.Timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	loc, err := time.LoadLocation(s.timezone)
	if err != nil {
		loc, s.timezone = time.UTC, "UTC"
	}
	s.day = time.Now().In(loc).Format("2006-01-02")
	return s
}

func (s *session) healthz() error {
	return s.call(http.MethodGet, "/healthz", nil, http.StatusOK, nil)
}

// install fetches a device token unless SMOKE_TOKEN is set. With AUTH_MODE=none
// the route is absent and the default diary is used.
func (s *session) install() error {
	if s.token != "" {
		return nil
	}
	resp, err := s.do(s.http, http.MethodPost, "/v1/auth/install", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotFound:
		return nil
	case http.StatusOK:
		var out struct {
			AccessToken string `json:"access_token"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return fmt.Errorf("decode token: %w", err)
		}
		s.token = out.AccessToken
		return nil
	}
	return unexpected(resp)
}

func (s *session) setGoal() error {
	return s.call(http.MethodPut, "/v1/goals", map[string]any{"cals": 2100}, http.StatusOK, nil)
}

func (s *session) addEntry() error {
	var out struct {
		ID string `json:"id"`
	}
	body := map[string]any{"name": "Smoke oatmeal", "cals": 320}
	if err := s.call(http.MethodPost, "/v1/days/"+s.day+"/entries", body, http.StatusCreated, &out); err != nil {
		return err
	}
	if out.ID == "" {
		return fmt.Errorf("entry has no id")
	}
	return nil
}

func (s *session) readDay() error {
	var out struct {
		IsToday bool `json:"is_today"`
		Totals  struct {
			Calories int `json:"cals"`
		} `json:"totals"`
	}
	if err := s.call(http.MethodGet, "/v1/days/"+s.day, nil, http.StatusOK, &out); err != nil {
		return err
	}
	if !out.IsToday {
		return fmt.Errorf("%s is not flagged as today", s.day)
	}
	if out.Totals.Calories < 320 {
		return fmt.Errorf("day total %d, want >= 320", out.Totals.Calories)
	}
	return nil
}

func (s *session) createTemplate() error {
	var out struct {
		ID string `json:"id"`
	}
	body := map[string]any{"name": "Smoke latte", "cals": 150}
	if err := s.call(http.MethodPost, "/v1/templates", body, http.StatusCreated, &out); err != nil {
		return err
	}
	s.templateID = out.ID
	return nil
}

func (s *session) applyTemplate() error {
	if s.templateID == "" {
		return fmt.Errorf("no template created")
	}
	return s.call(http.MethodPost, "/v1/templates/"+s.templateID+"/apply", map[string]any{"date": s.day}, http.StatusCreated, nil)
}

func (s *session) calendar() error {
	var out struct {
		Cells []json.RawMessage `json:"cells"`
	}
	if err := s.call(http.MethodGet, "/v1/calendar", nil, http.StatusOK, &out); err != nil {
		return err
	}
	if len(out.Cells) == 0 {
		return fmt.Errorf("calendar is empty")
	}
	return nil
}

func (s *session) agent() error {
	var proposed struct {
		Date     string `json:"date"`
		Proposal struct {
			Items []json.RawMessage `json:"items"`
		} `json:"proposal"`
	}
	if err := s.call(http.MethodPost, "/v1/agent/propose", map[string]any{"message": "2 eggs and a banana"}, http.StatusOK, &proposed); err != nil {
		return err
	}
	if len(proposed.Proposal.Items) == 0 {
		return fmt.Errorf("proposal is empty")
	}
	confirm := map[string]any{"date": proposed.Date, "items": proposed.Proposal.Items}
	return s.call(http.MethodPost, "/v1/agent/confirm", confirm, http.StatusCreated, nil)
}

func (s *session) backup() error {
	resp, err := s.do(s.http, http.MethodGet, "/v1/backup", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return unexpected(resp)
	}
	if resp.Header.Get("Content-Disposition") == "" {
		return fmt.Errorf("backup has no Content-Disposition")
	}
	var state struct {
		Days map[string]json.RawMessage `json:"days"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return fmt.Errorf("decode backup: %w", err)
	}
	if _, ok := state.Days[s.day]; !ok {
		return fmt.Errorf("backup lacks %s", s.day)
	}
	return nil
}

func (s *session) createReport() error {
	var out struct {
		ID        string `json:"id"`
		SizeBytes int64  `json:"size_bytes"`
	}
	body := map[string]any{
		"format": "csv",
		"from":   time.Now().AddDate(0, 0, -7).Format("2006-01-02"),
		"to":     s.day,
	}
	if err := s.call(http.MethodPost, "/v1/reports", body, http.StatusCreated, &out); err != nil {
		return err
	}
	if out.SizeBytes < 10 {
		return fmt.Errorf("report is only %d bytes", out.SizeBytes)
	}
	s.reportID = out.ID
	return nil
}

func (s *session) listReports() error {
	var out struct {
		Reports []struct {
			ID string `json:"id"`
		} `json:"reports"`
	}
	if err := s.call(http.MethodGet, "/v1/reports?limit=5", nil, http.StatusOK, &out); err != nil {
		return err
	}
	for _, r := range out.Reports {
		if r.ID == s.reportID {
			return nil
		}
	}
	return fmt.Errorf("report %s not listed", s.reportID)
}

// downloadReport accepts both delivery paths: bytes from the API or a 302 to
// a signed object-store URL.
func (s *session) downloadReport() error {
	if s.reportID == "" {
		return fmt.Errorf("no report created")
	}
	resp, err := s.do(s.noRedirect, http.MethodGet, "/v1/reports/"+s.reportID+"/download", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusFound {
		location := resp.Header.Get("Location")
		if location == "" {
			return fmt.Errorf("302 without Location")
		}
		signed, err := s.http.Get(location)
		if err != nil {
			return fmt.Errorf("follow signed url: %w", err)
		}
		defer signed.Body.Close()
		resp = signed
	}
	if resp.StatusCode != http.StatusOK {
		return unexpected(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}
	if !bytes.HasPrefix(data, []byte("date,cals")) {
		return fmt.Errorf("unexpected report body (%d bytes)", len(data))
	}
	return nil
}

func (s *session) remove(path string) error {
	if strings.HasSuffix(path, "/") {
		return fmt.Errorf("nothing to delete at %s", path)
	}
	return s.call(http.MethodDelete, path, nil, http.StatusNoContent, nil)
}

func (s *session) clearDay() error {
	return s.call(http.MethodDelete, "/v1/days/"+s.day, nil, http.StatusOK, nil)
}

// call sends a JSON request, checks the status and decodes into out if given.
func (s *session) call(method, path string, payload any, want int, out any) error {
	resp, err := s.do(s.http, method, path, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return unexpected(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}

func (s *session) do(c *http.Client, method, path string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, s.base+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Timezone", s.timezone)
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	return c.Do(req)
}

func unexpected(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("%s %s: status=%d body=%s", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, strings.TrimSpace(string(body)))
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func mask(s string) string {
	switch {
	case s == "":
		return "(none)"
	case len(s) <= 8:
		return "***"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
