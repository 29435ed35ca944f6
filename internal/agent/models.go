package agent

import (
	"github.com/fdg312/calorie-diary/internal/ai"
	"github.com/fdg312/calorie-diary/internal/diary"
)

// Proposal is a sanitized model answer. Nothing in it is logged until the
// user confirms.
type Proposal struct {
	Notes string             `json:"notes"`
	Items []diary.EntryDraft `json:"items"`
}

type ProposeRequest struct {
	Message string `json:"message"`
}

type ProposeResponse struct {
	Date     string   `json:"date"`
	Proposal Proposal `json:"proposal"`
}

type ConfirmRequest struct {
	Date  string             `json:"date"`
	Items []diary.EntryDraft `json:"items"`
}

// Rejection explains why one proposed item was not logged.
type Rejection struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

type ConfirmResponse struct {
	Date     string        `json:"date"`
	Added    []diary.Entry `json:"added"`
	Rejected []Rejection   `json:"rejected"`
}

// StatelessRequest is the body of POST /api/agent: the caller sends the
// context itself and the server keeps no diary state.
type StatelessRequest struct {
	Message   string           `json:"message"`
	Date      string           `json:"date"`
	Goals     ai.ContextGoals  `json:"goals"`
	Templates []ai.ContextItem `json:"templates"`
	Recent    []ai.ContextItem `json:"recent"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
