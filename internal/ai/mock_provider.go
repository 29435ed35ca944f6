package ai

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// MockProvider answers without a model: each comma/"and" separated part of the
// message becomes one item, matched against templates first and then a small
// built-in table. An explicit "<n> kcal" in a part wins.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

var (
	mockSplit = regexp.MustCompile(`(?i)\s*(?:,|;|\band\b|\bwith\b|\+)\s*`)
	mockKcal  = regexp.MustCompile(`(?i)(\d+)\s*(?:kcal|cal|calories)\b`)
)

var mockFoods = []struct {
	key  string
	item ContextItem
}{
	{"egg", ContextItem{Name: "Egg", Calories: 78, Protein: 6, Carbs: 1, Fat: 5}},
	{"toast", ContextItem{Name: "Toast", Calories: 80, Protein: 3, Carbs: 14, Fat: 1}},
	{"banana", ContextItem{Name: "Banana", Calories: 105, Protein: 1, Carbs: 27, Fat: 0}},
	{"apple", ContextItem{Name: "Apple", Calories: 95, Protein: 0, Carbs: 25, Fat: 0}},
	{"coffee", ContextItem{Name: "Coffee", Calories: 5, Protein: 0, Carbs: 0, Fat: 0}},
	{"rice", ContextItem{Name: "Rice (1 cup)", Calories: 205, Protein: 4, Carbs: 45, Fat: 0}},
	{"chicken", ContextItem{Name: "Chicken breast", Calories: 165, Protein: 31, Carbs: 0, Fat: 4}},
	{"salad", ContextItem{Name: "Side salad", Calories: 50, Protein: 2, Carbs: 8, Fat: 1}},
}

type mockOutput struct {
	Notes string        `json:"notes"`
	Items []ContextItem `json:"items"`
}

func (p *MockProvider) Propose(ctx context.Context, req ProposeRequest) (RawProposal, error) {
	out := mockOutput{Items: []ContextItem{}}

	for _, part := range mockSplit.Split(strings.TrimSpace(req.Message), -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		item, ok := matchMock(part, req.Templates)
		if !ok {
			continue
		}
		out.Items = append(out.Items, item)
	}

	if len(out.Items) == 0 {
		out.Notes = "Mock mode: nothing recognisable to log."
	} else {
		out.Notes = "Mock mode: estimates assume a common portion."
	}

	data, err := json.Marshal(out)
	if err != nil {
		return RawProposal{}, err
	}
	return RawProposal{Text: string(data)}, nil
}

func matchMock(part string, templates []ContextItem) (ContextItem, bool) {
	lowered := strings.ToLower(part)

	if m := mockKcal.FindStringSubmatch(part); m != nil {
		kcal, _ := strconv.Atoi(m[1])
		name := strings.TrimSpace(mockKcal.ReplaceAllString(part, ""))
		if name == "" {
			name = "Food"
		}
		return ContextItem{Name: name, Calories: kcal}, true
	}

	for _, t := range templates {
		if t.Name != "" && strings.Contains(lowered, strings.ToLower(t.Name)) {
			return t, true
		}
	}

	count := 1
	if fields := strings.Fields(lowered); len(fields) > 1 {
		if n, err := strconv.Atoi(fields[0]); err == nil && n > 0 && n <= 20 {
			count = n
		}
	}
	for _, f := range mockFoods {
		if strings.Contains(lowered, f.key) {
			item := f.item
			if count > 1 {
				item.Name = strconv.Itoa(count) + " x " + item.Name
				item.Calories *= count
				item.Protein *= count
				item.Carbs *= count
				item.Fat *= count
			}
			return item, true
		}
	}
	return ContextItem{}, false
}
