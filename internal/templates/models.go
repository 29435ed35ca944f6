package templates

import "github.com/fdg312/calorie-diary/internal/diary"

type TemplateRequest = diary.EntryDraft

type ListResponse struct {
	Templates []diary.Template `json:"templates"`
}

// ApplyRequest picks the day a template is logged on; empty means today.
type ApplyRequest struct {
	Date string `json:"date"`
}

type ApplyResponse struct {
	Date  string      `json:"date"`
	Entry diary.Entry `json:"entry"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
