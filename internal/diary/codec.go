package diary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fdg312/calorie-diary/internal/datekey"
)

// entryJSON is the canonical persisted entry shape.
type entryJSON struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Calories int    `json:"cals"`
	Protein  int    `json:"protein"`
	Carbs    int    `json:"carbs"`
	Fat      int    `json:"fat"`
	TS       int64  `json:"ts"`
}

// looseEntry accepts both persisted shapes: {cals, ts(ms)} and the older
// {calories, time(RFC3339)}. Numbers may arrive as strings.
type looseEntry struct {
	ID       any `json:"id"`
	Name     any `json:"name"`
	Cals     any `json:"cals"`
	Calories any `json:"calories"`
	Protein  any `json:"protein"`
	Carbs    any `json:"carbs"`
	Fat      any `json:"fat"`
	TS       any `json:"ts"`
	Time     any `json:"time"`
}

func (e Entry) MarshalJSON() ([]byte, error) {
	var ts int64
	if !e.CreatedAt.IsZero() {
		ts = e.CreatedAt.UnixMilli()
	}
	return json.Marshal(entryJSON{
		ID:       e.ID,
		Name:     e.Name,
		Calories: e.Calories,
		Protein:  e.Protein,
		Carbs:    e.Carbs,
		Fat:      e.Fat,
		TS:       ts,
	})
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw looseEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	cals := raw.Cals
	if cals == nil {
		cals = raw.Calories
	}
	*e = Entry{
		ID:        stringValue(raw.ID),
		Name:      strings.TrimSpace(stringValue(raw.Name)),
		Calories:  nonNegativeInt(cals),
		Protein:   nonNegativeInt(raw.Protein),
		Carbs:     nonNegativeInt(raw.Carbs),
		Fat:       nonNegativeInt(raw.Fat),
		CreatedAt: timeValue(raw.TS),
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = timeValue(raw.Time)
	}
	return nil
}

type templateJSON struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Calories int    `json:"cals"`
	Protein  int    `json:"protein"`
	Carbs    int    `json:"carbs"`
	Fat      int    `json:"fat"`
}

func (t Template) MarshalJSON() ([]byte, error) {
	return json.Marshal(templateJSON{
		ID:       t.ID,
		Name:     t.Name,
		Calories: t.Calories,
		Protein:  t.Protein,
		Carbs:    t.Carbs,
		Fat:      t.Fat,
	})
}

func (t *Template) UnmarshalJSON(data []byte) error {
	var raw looseEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	cals := raw.Cals
	if cals == nil {
		cals = raw.Calories
	}
	*t = Template{
		ID:       stringValue(raw.ID),
		Name:     strings.TrimSpace(stringValue(raw.Name)),
		Calories: nonNegativeInt(cals),
		Protein:  nonNegativeInt(raw.Protein),
		Carbs:    nonNegativeInt(raw.Carbs),
		Fat:      nonNegativeInt(raw.Fat),
	}
	return nil
}

// UnmarshalJSON accepts a day as {entries: [...]} or as a bare entry list.
func (d *DayRecord) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*d = DayRecord{}
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var entries []Entry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return err
		}
		*d = DayRecord{Entries: entries}
		return nil
	}
	var rec struct {
		Entries []Entry `json:"entries"`
	}
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return err
	}
	*d = DayRecord{Entries: rec.Entries}
	return nil
}

type looseState struct {
	Goal      any                  `json:"goal"`
	Goals     *looseGoal           `json:"goals"`
	Days      map[string]DayRecord `json:"days"`
	Templates []Template           `json:"templates"`
}

type looseGoal struct {
	Cals     any `json:"cals"`
	Calories any `json:"calories"`
	Protein  any `json:"protein"`
	Carbs    any `json:"carbs"`
	Fat      any `json:"fat"`
}

// decodeState parses a persisted blob. Missing fields become defaults;
// normalization is applied by the caller.
func decodeState(data []byte, p Policy) (State, error) {
	var raw looseState
	if err := json.Unmarshal(data, &raw); err != nil {
		return State{}, err
	}

	st := defaultState(p)
	if raw.Goals != nil {
		cals := raw.Goals.Cals
		if cals == nil {
			cals = raw.Goals.Calories
		}
		st.Goals = Goal{
			Calories: intOr(cals, p.DefaultGoal.Calories),
			Protein:  intOr(raw.Goals.Protein, p.DefaultGoal.Protein),
			Carbs:    intOr(raw.Goals.Carbs, p.DefaultGoal.Carbs),
			Fat:      intOr(raw.Goals.Fat, p.DefaultGoal.Fat),
		}
	} else if raw.Goal != nil {
		st.Goals.Calories = intOr(raw.Goal, p.DefaultGoal.Calories)
	}
	if raw.Days != nil {
		st.Days = raw.Days
	}
	if raw.Templates != nil {
		st.Templates = raw.Templates
	}
	return st, nil
}

// normalizeState enforces every stored invariant: valid keys, no empty days,
// non-empty names, unique ids and an in-range goal.
func normalizeState(st State, p Policy, newID func() string) State {
	if st.Goals.Calories < p.GoalMin || st.Goals.Calories > p.GoalMax {
		st.Goals.Calories = p.DefaultGoal.Calories
	}
	st.Goals.Protein = macroGoalOrDefault(st.Goals.Protein, p.DefaultGoal.Protein, p)
	st.Goals.Carbs = macroGoalOrDefault(st.Goals.Carbs, p.DefaultGoal.Carbs, p)
	st.Goals.Fat = macroGoalOrDefault(st.Goals.Fat, p.DefaultGoal.Fat, p)

	seen := make(map[string]bool)
	days := make(map[string]DayRecord, len(st.Days))
	for key, rec := range st.Days {
		if !datekey.Valid(key) {
			continue
		}
		entries := make([]Entry, 0, len(rec.Entries))
		for _, e := range rec.Entries {
			if e.ID == "" || seen[e.ID] {
				e.ID = newID()
			}
			seen[e.ID] = true
			e.Name = truncateRunes(e.Name, p.MaxNameLen)
			if e.Name == "" {
				e.Name = "Food"
			}
			entries = append(entries, e)
		}
		if len(entries) > 0 {
			days[key] = DayRecord{Entries: entries}
		}
	}
	st.Days = days

	templates := make([]Template, 0, len(st.Templates))
	tseen := make(map[string]bool)
	for _, t := range st.Templates {
		if t.ID == "" || tseen[t.ID] {
			t.ID = newID()
		}
		tseen[t.ID] = true
		t.Name = truncateRunes(t.Name, p.MaxNameLen)
		if t.Name == "" {
			t.Name = "Template"
		}
		templates = append(templates, t)
	}
	st.Templates = templates
	return st
}

func macroGoalOrDefault(v, def int, p Policy) int {
	if v < 0 || v > p.MacroGoalMax {
		return def
	}
	return v
}

// pruneEmptyDays drops day records without entries.
func pruneEmptyDays(days map[string]DayRecord) {
	for key, rec := range days {
		if len(rec.Entries) == 0 {
			delete(days, key)
		}
	}
}

func sortedKeys(days map[string]DayRecord) []string {
	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// numberValue coerces JSON numbers and numeric strings. ok is false when v is
// absent or not numeric.
func numberValue(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	case bool:
		return 0, false
	default:
		return 0, false
	}
}

// nonNegativeInt floors v and clamps it to >= 0. Non-numeric values become 0.
func nonNegativeInt(v any) int {
	f, ok := numberValue(v)
	if !ok || f <= 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Floor(f))
}

func intOr(v any, def int) int {
	if _, ok := numberValue(v); !ok {
		return def
	}
	return nonNegativeInt(v)
}

func timeValue(v any) time.Time {
	switch t := v.(type) {
	case float64:
		if t <= 0 {
			return time.Time{}
		}
		return time.UnixMilli(int64(t)).UTC()
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed.UTC()
		}
		if ms, err := strconv.ParseInt(t, 10, 64); err == nil && ms > 0 {
			return time.UnixMilli(ms).UTC()
		}
	}
	return time.Time{}
}

func truncateRunes(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:max]))
}
