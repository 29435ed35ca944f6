package ai

import "context"

// Provider turns a free-text food description into model output. The output
// is untrusted and must be sanitized before use.
type Provider interface {
	Propose(ctx context.Context, req ProposeRequest) (RawProposal, error)
}

// ContextItem is a food the model may match against (template or recent entry).
type ContextItem struct {
	Name     string `json:"name"`
	Calories int    `json:"cals"`
	Protein  int    `json:"protein"`
	Carbs    int    `json:"carbs"`
	Fat      int    `json:"fat"`
}

type ContextGoals struct {
	Calories int `json:"cals"`
	Protein  int `json:"protein,omitempty"`
	Carbs    int `json:"carbs,omitempty"`
	Fat      int `json:"fat,omitempty"`
}

type ProposeRequest struct {
	Message   string
	Date      string
	Goals     ContextGoals
	Templates []ContextItem
	Recent    []ContextItem
}

// RawProposal is the model's text output, expected to be a JSON document
// {"notes": "...", "items": [{name, cals, protein, carbs, fat}]}.
type RawProposal struct {
	Text string
}
