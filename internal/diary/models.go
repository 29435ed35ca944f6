// Package diary holds the day-keyed food diary: the store that owns goals,
// day records and templates, the aggregator deriving totals, streaks and
// calendar cells from it, and the view navigation state.
package diary

import (
	"time"
)

// Entry is one logged food item.
type Entry struct {
	ID        string
	Name      string
	Calories  int
	Protein   int
	Carbs     int
	Fat       int
	CreatedAt time.Time
}

// EntryDraft is unvalidated entry input, typed by a user or proposed by a model.
type EntryDraft struct {
	Name     string `json:"name"`
	Calories int    `json:"cals"`
	Protein  int    `json:"protein"`
	Carbs    int    `json:"carbs"`
	Fat      int    `json:"fat"`
}

// DayRecord is the ordered list of entries for one day key.
type DayRecord struct {
	Entries []Entry `json:"entries"`
}

// Goal applies uniformly to every day.
type Goal struct {
	Calories int `json:"cals"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
	Fat      int `json:"fat"`
}

// Template is a reusable named nutrition profile, independent of any day.
type Template struct {
	ID       string
	Name     string
	Calories int
	Protein  int
	Carbs    int
	Fat      int
}

// Draft returns the entry draft a template applies as.
func (t Template) Draft() EntryDraft {
	return EntryDraft{
		Name:     t.Name,
		Calories: t.Calories,
		Protein:  t.Protein,
		Carbs:    t.Carbs,
		Fat:      t.Fat,
	}
}

// State is the full persisted diary.
type State struct {
	Goals     Goal                 `json:"goals"`
	Days      map[string]DayRecord `json:"days"`
	Templates []Template           `json:"templates"`
}

// Policy holds the validation bounds and defaults of a diary variant.
type Policy struct {
	GoalMin           int
	GoalMax           int
	MacroGoalMax      int
	DefaultGoal       Goal
	AllowZeroCalories bool
	MaxNameLen        int
}

const (
	VariantClassic = "classic"
	VariantMacros  = "macros"
)

// DefaultPolicy is the calorie-only diary: goal 500..10000, default 2000,
// entries need at least 1 kcal.
func DefaultPolicy() Policy {
	return Policy{
		GoalMin:      500,
		GoalMax:      10000,
		MacroGoalMax: 1000,
		DefaultGoal:  Goal{Calories: 2000},
		MaxNameLen:   120,
	}
}

// MacroPolicy tracks protein, carbs and fat and accepts macro-only entries.
func MacroPolicy() Policy {
	p := DefaultPolicy()
	p.DefaultGoal = Goal{Calories: 2200, Protein: 160, Carbs: 220, Fat: 70}
	p.AllowZeroCalories = true
	return p
}

// PolicyFor maps a variant name to its policy.
func PolicyFor(variant string) Policy {
	if variant == VariantMacros {
		return MacroPolicy()
	}
	return DefaultPolicy()
}

func (p Policy) minCalories() int {
	if p.AllowZeroCalories {
		return 0
	}
	return 1
}

func defaultState(p Policy) State {
	return State{
		Goals:     p.DefaultGoal,
		Days:      make(map[string]DayRecord),
		Templates: []Template{},
	}
}
