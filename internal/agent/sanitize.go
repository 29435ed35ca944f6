package agent

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/fdg312/calorie-diary/internal/diary"
)

const (
	maxItems     = 10
	maxItemName  = 80
	maxNotes     = 240
	defaultName  = "Food"
	notesEmpty   = "No output from model."
	notesNonJSON = "Model returned non-JSON output."
)

// Sanitize turns raw model text into a bounded proposal. It never fails:
// empty or unparseable output becomes an empty proposal with a note.
func Sanitize(text string) Proposal {
	if strings.TrimSpace(text) == "" {
		return Proposal{Notes: notesEmpty, Items: []diary.EntryDraft{}}
	}

	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return Proposal{Notes: notesNonJSON, Items: []diary.EntryDraft{}}
	}

	out := Proposal{Items: []diary.EntryDraft{}}
	obj, ok := parsed.(map[string]any)
	if !ok {
		return out
	}

	out.Notes = truncate(stringOr(obj["notes"], ""), maxNotes)

	items, _ := obj["items"].([]any)
	if len(items) > maxItems {
		items = items[:maxItems]
	}
	for _, raw := range items {
		it, _ := raw.(map[string]any)
		out.Items = append(out.Items, diary.EntryDraft{
			Name:     truncate(stringOr(it["name"], defaultName), maxItemName),
			Calories: floorNonNegative(it["cals"]),
			Protein:  floorNonNegative(it["protein"]),
			Carbs:    floorNonNegative(it["carbs"]),
			Fat:      floorNonNegative(it["fat"]),
		})
	}
	return out
}

func stringOr(v any, def string) string {
	switch x := v.(type) {
	case string:
		if x == "" {
			return def
		}
		return x
	case float64:
		if x == 0 {
			return def
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if !x {
			return def
		}
		return "true"
	default:
		return def
	}
}

func floorNonNegative(v any) int {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		f = parsed
	case bool:
		if x {
			f = 1
		}
	}
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Floor(f))
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
