package diary

import (
	"time"

	"github.com/fdg312/calorie-diary/internal/datekey"
)

// DayReader is the read side of a diary.
type DayReader interface {
	EntriesOn(key string) []Entry
	Goal() Goal
}

// Totals sums one day. Missing macros count as 0.
type Totals struct {
	Calories int `json:"cals"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
	Fat      int `json:"fat"`
	Count    int `json:"count"`
}

// Progress is the share of each goal consumed, in percent clamped to 0..100.
type Progress struct {
	Calories float64 `json:"cals"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Aggregator derives per-day figures, streaks and calendar cells.
type Aggregator struct {
	days DayReader
}

func NewAggregator(days DayReader) *Aggregator {
	return &Aggregator{days: days}
}

func SumEntries(entries []Entry) Totals {
	var t Totals
	for _, e := range entries {
		t.Calories += e.Calories
		t.Protein += e.Protein
		t.Carbs += e.Carbs
		t.Fat += e.Fat
	}
	t.Count = len(entries)
	return t
}

func (a *Aggregator) Totals(key string) Totals {
	return SumEntries(a.days.EntriesOn(key))
}

// Remaining is the calorie budget left, never negative.
func (a *Aggregator) Remaining(key string) int {
	rem := a.days.Goal().Calories - a.Totals(key).Calories
	if rem < 0 {
		return 0
	}
	return rem
}

func (a *Aggregator) IsOverGoal(key string) bool {
	return a.Totals(key).Calories > a.days.Goal().Calories
}

func (a *Aggregator) Progress(key string) Progress {
	t := a.Totals(key)
	g := a.days.Goal()
	return Progress{
		Calories: percent(t.Calories, g.Calories),
		Protein:  percent(t.Protein, g.Protein),
		Carbs:    percent(t.Carbs, g.Carbs),
		Fat:      percent(t.Fat, g.Fat),
	}
}

func percent(now, goal int) float64 {
	if goal <= 0 {
		return 0
	}
	p := float64(now) / float64(goal) * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Streak counts consecutive days with entries, walking back from today.
// Today is included: an empty today gives 0 even if yesterday was logged.
func (a *Aggregator) Streak(today string) int {
	if !datekey.Valid(today) {
		return 0
	}
	streak := 0
	key := today
	for len(a.days.EntriesOn(key)) > 0 {
		streak++
		prev, err := datekey.Shift(key, -1)
		if err != nil {
			break
		}
		key = prev
	}
	return streak
}

// HistoryDay is one row of the recent-days list.
type HistoryDay struct {
	Date     string `json:"date"`
	Label    string `json:"label"`
	Totals   Totals `json:"totals"`
	OverGoal bool   `json:"over_goal"`
}

// History returns the last n days ending today, newest first.
func (a *Aggregator) History(now time.Time, n int) []HistoryDay {
	today := datekey.Today(now)
	out := make([]HistoryDay, 0, n)
	goal := a.days.Goal().Calories
	for i := 0; i < n; i++ {
		key, err := datekey.Shift(today, -i)
		if err != nil {
			break
		}
		t := a.Totals(key)
		out = append(out, HistoryDay{
			Date:     key,
			Label:    datekey.Label(key, now),
			Totals:   t,
			OverGoal: t.Calories > goal,
		})
	}
	return out
}

// RangeSummary aggregates the days between from and to inclusive, never
// looking past today.
type RangeSummary struct {
	From         string       `json:"from"`
	To           string       `json:"to"`
	Days         []HistoryDay `json:"days"`
	DaysLogged   int          `json:"days_logged"`
	DaysOverGoal int          `json:"days_over_goal"`
	AvgCalories  int          `json:"avg_calories"`
	Total        Totals       `json:"total"`
}

func (a *Aggregator) Range(from, to string, now time.Time) (RangeSummary, error) {
	n, err := datekey.Between(from, to)
	if err != nil {
		return RangeSummary{}, ErrInvalidDate
	}
	if n < 0 {
		return RangeSummary{}, ErrInvalidDate
	}
	today := datekey.Today(now)
	goal := a.days.Goal().Calories

	sum := RangeSummary{From: from, To: to, Days: []HistoryDay{}}
	for i := 0; i <= n; i++ {
		key, _ := datekey.Shift(from, i)
		if key > today {
			break
		}
		t := a.Totals(key)
		day := HistoryDay{Date: key, Label: datekey.Label(key, now), Totals: t, OverGoal: t.Calories > goal}
		sum.Days = append(sum.Days, day)
		if t.Count == 0 {
			continue
		}
		sum.DaysLogged++
		if day.OverGoal {
			sum.DaysOverGoal++
		}
		sum.Total.Calories += t.Calories
		sum.Total.Protein += t.Protein
		sum.Total.Carbs += t.Carbs
		sum.Total.Fat += t.Fat
		sum.Total.Count += t.Count
	}
	if sum.DaysLogged > 0 {
		sum.AvgCalories = sum.Total.Calories / sum.DaysLogged
	}
	return sum, nil
}

// MonthSummary is Range over one calendar month.
func (a *Aggregator) MonthSummary(year int, month time.Month, now time.Time) RangeSummary {
	from := datekey.MonthKey(year, month, 1)
	to := datekey.MonthKey(year, month, datekey.DaysIn(year, month))
	sum, _ := a.Range(from, to, now)
	return sum
}
