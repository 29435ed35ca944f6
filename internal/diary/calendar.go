package diary

import (
	"time"

	"github.com/fdg312/calorie-diary/internal/datekey"
)

// Cell is one square of the month grid. Blank cells pad the first week so
// day 1 lands on its weekday column (Sunday first).
type Cell struct {
	Date       string `json:"date,omitempty"`
	Blank      bool   `json:"blank"`
	IsToday    bool   `json:"is_today"`
	IsSelected bool   `json:"is_selected"`
	IsFuture   bool   `json:"is_future"`
	Total      *int   `json:"total,omitempty"`
	Count      int    `json:"count,omitempty"`
	OverGoal   *bool  `json:"over_goal,omitempty"`
}

// MonthCells builds the calendar grid. Dates after today are marked future
// and are never read from the diary.
func (a *Aggregator) MonthCells(year int, month time.Month, today, selected string) []Cell {
	blanks := int(datekey.FirstWeekday(year, month))
	days := datekey.DaysIn(year, month)
	goal := a.days.Goal().Calories

	cells := make([]Cell, 0, blanks+days)
	for i := 0; i < blanks; i++ {
		cells = append(cells, Cell{Blank: true})
	}
	for d := 1; d <= days; d++ {
		key := datekey.MonthKey(year, month, d)
		c := Cell{
			Date:       key,
			IsToday:    key == today,
			IsSelected: key == selected,
			IsFuture:   key > today,
		}
		if !c.IsFuture {
			t := a.Totals(key)
			if t.Count > 0 {
				total := t.Calories
				over := total > goal
				c.Total = &total
				c.OverGoal = &over
				c.Count = t.Count
			}
		}
		cells = append(cells, c)
	}
	return cells
}

// MonthCursor is the month shown by the calendar.
type MonthCursor struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

func CursorFor(key string) (MonthCursor, error) {
	t, err := datekey.Parse(key, time.UTC)
	if err != nil {
		return MonthCursor{}, ErrInvalidDate
	}
	return MonthCursor{Year: t.Year(), Month: t.Month()}, nil
}

func (c MonthCursor) Prev() MonthCursor {
	if c.Month == time.January {
		return MonthCursor{Year: c.Year - 1, Month: time.December}
	}
	return MonthCursor{Year: c.Year, Month: c.Month - 1}
}

// Next moves one month forward unless that would pass the month of today.
func (c MonthCursor) Next(today string) (MonthCursor, bool) {
	cur, err := CursorFor(today)
	if err != nil || !c.Before(cur) {
		return c, false
	}
	if c.Month == time.December {
		return MonthCursor{Year: c.Year + 1, Month: time.January}, true
	}
	return MonthCursor{Year: c.Year, Month: c.Month + 1}, true
}

func (c MonthCursor) Before(o MonthCursor) bool {
	if c.Year != o.Year {
		return c.Year < o.Year
	}
	return c.Month < o.Month
}

func (c MonthCursor) Label() string {
	return time.Date(c.Year, c.Month, 1, 12, 0, 0, 0, time.UTC).Format("January 2006")
}
