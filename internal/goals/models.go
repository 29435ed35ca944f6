package goals

import "github.com/fdg312/calorie-diary/internal/diary"

type GoalResponse struct {
	Goal   diary.Goal `json:"goal"`
	Limits Limits     `json:"limits"`
}

// Limits tells clients which values PUT /v1/goals accepts.
type Limits struct {
	CaloriesMin  int  `json:"cals_min"`
	CaloriesMax  int  `json:"cals_max"`
	MacroMax     int  `json:"macro_max"`
	TracksMacros bool `json:"tracks_macros"`
}

// UpdateGoalRequest sets the calorie goal; macros left out keep their
// current value.
type UpdateGoalRequest struct {
	Calories *int `json:"cals"`
	Protein  *int `json:"protein,omitempty"`
	Carbs    *int `json:"carbs,omitempty"`
	Fat      *int `json:"fat,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
