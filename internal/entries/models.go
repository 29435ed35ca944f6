package entries

import "github.com/fdg312/calorie-diary/internal/diary"

// DayView is everything the day screen shows for one date.
type DayView struct {
	Date      string         `json:"date"`
	Label     string         `json:"label"`
	IsToday   bool           `json:"is_today"`
	Entries   []diary.Entry  `json:"entries"`
	Totals    diary.Totals   `json:"totals"`
	Goal      diary.Goal     `json:"goal"`
	Remaining int            `json:"remaining"`
	OverGoal  bool           `json:"over_goal"`
	Progress  diary.Progress `json:"progress"`
	Prev      string         `json:"prev"`
	Next      string         `json:"next,omitempty"`
}

// EntryRequest is the body of entry create and update calls.
type EntryRequest = diary.EntryDraft

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
