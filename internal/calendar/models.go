package calendar

import "github.com/fdg312/calorie-diary/internal/diary"

type CalendarResponse struct {
	diary.MonthCursor
	Label    string             `json:"label"`
	Cells    []diary.Cell       `json:"cells"`
	Prev     diary.MonthCursor  `json:"prev"`
	Next     *diary.MonthCursor `json:"next,omitempty"`
	Today    string             `json:"today"`
	Selected string             `json:"selected,omitempty"`
	Summary  MonthSummary       `json:"summary"`
}

type MonthSummary struct {
	DaysLogged   int `json:"days_logged"`
	DaysOverGoal int `json:"days_over_goal"`
	AvgCalories  int `json:"avg_calories"`
}

type StreakResponse struct {
	Today  string `json:"today"`
	Streak int    `json:"streak"`
}

type HistoryResponse struct {
	Days []diary.HistoryDay `json:"days"`
}

type NavigateResponse struct {
	View    string `json:"view"`
	Label   string `json:"label"`
	IsToday bool   `json:"is_today"`
	CanNext bool   `json:"can_next"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
