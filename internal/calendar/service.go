package calendar

import (
	"context"
	"errors"
	"time"

	"github.com/fdg312/calorie-diary/internal/datekey"
	"github.com/fdg312/calorie-diary/internal/diary"
)

var (
	ErrInvalidMonth = errors.New("invalid month")
	ErrInvalidMove  = errors.New("invalid move")
	ErrInvalidDays  = errors.New("invalid days")
	ErrNavRejected  = errors.New("navigation rejected")
)

const (
	MovePrev   = "prev"
	MoveNext   = "next"
	MoveSelect = "select"
	MoveToday  = "today"

	DefaultHistoryDays = 14
	MaxHistoryDays     = 90
)

type Service struct {
	registry *diary.Registry
}

func NewService(registry *diary.Registry) *Service {
	return &Service{registry: registry}
}

// Month renders the calendar for year/month. A zero cursor means the current
// month; months after it are rejected.
func (s *Service) Month(ctx context.Context, ownerID string, cursor diary.MonthCursor, selected string) (CalendarResponse, error) {
	now := s.registry.Now(ctx)
	today := datekey.Today(now)
	current, _ := diary.CursorFor(today)

	if cursor.Year == 0 && cursor.Month == 0 {
		cursor = current
	}
	if cursor.Year < 1 || cursor.Year > 9999 || cursor.Month < time.January || cursor.Month > time.December {
		return CalendarResponse{}, ErrInvalidMonth
	}
	if current.Before(cursor) {
		return CalendarResponse{}, ErrNavRejected
	}
	if selected != "" && !datekey.Valid(selected) {
		return CalendarResponse{}, diary.ErrInvalidDate
	}

	resp := CalendarResponse{
		MonthCursor: cursor,
		Label:       cursor.Label(),
		Prev:        cursor.Prev(),
		Today:       today,
		Selected:    selected,
	}
	if next, ok := cursor.Next(today); ok {
		resp.Next = &next
	}

	err := s.registry.With(ctx, ownerID, func(st *diary.Store) error {
		agg := diary.NewAggregator(st)
		resp.Cells = agg.MonthCells(cursor.Year, cursor.Month, today, selected)
		sum := agg.MonthSummary(cursor.Year, cursor.Month, now)
		resp.Summary = MonthSummary{
			DaysLogged:   sum.DaysLogged,
			DaysOverGoal: sum.DaysOverGoal,
			AvgCalories:  sum.AvgCalories,
		}
		return nil
	})
	return resp, err
}

func (s *Service) Streak(ctx context.Context, ownerID string) (StreakResponse, error) {
	resp := StreakResponse{Today: s.registry.Today(ctx)}
	err := s.registry.With(ctx, ownerID, func(st *diary.Store) error {
		resp.Streak = diary.NewAggregator(st).Streak(resp.Today)
		return nil
	})
	return resp, err
}

// History lists the last days (DefaultHistoryDays when 0), newest first.
func (s *Service) History(ctx context.Context, ownerID string, days int) (HistoryResponse, error) {
	if days == 0 {
		days = DefaultHistoryDays
	}
	if days < 1 || days > MaxHistoryDays {
		return HistoryResponse{}, ErrInvalidDays
	}

	var resp HistoryResponse
	now := s.registry.Now(ctx)
	err := s.registry.With(ctx, ownerID, func(st *diary.Store) error {
		resp.Days = diary.NewAggregator(st).History(now, days)
		return nil
	})
	return resp, err
}

// Navigate applies one move to the viewed day. The server keeps no view
// state: the client sends the day it is on.
func (s *Service) Navigate(ctx context.Context, from, move, to string) (NavigateResponse, error) {
	now := s.registry.Now(ctx)
	today := datekey.Today(now)
	todayFn := func() string { return today }

	if from == "" {
		from = today
	}
	if !datekey.Valid(from) {
		return NavigateResponse{}, diary.ErrInvalidDate
	}
	if from > today {
		return NavigateResponse{}, ErrNavRejected
	}
	nav := diary.NavigatorAt(from, todayFn)

	switch move {
	case MovePrev:
		nav.Prev()
	case MoveNext:
		if _, ok := nav.Next(); !ok {
			return NavigateResponse{}, ErrNavRejected
		}
	case MoveSelect:
		if !nav.Select(to) {
			return NavigateResponse{}, ErrNavRejected
		}
	case MoveToday:
		nav.GoToday()
	default:
		return NavigateResponse{}, ErrInvalidMove
	}

	view := nav.View()
	return NavigateResponse{
		View:    view,
		Label:   datekey.Label(view, now),
		IsToday: nav.IsToday(),
		CanNext: view < today,
	}, nil
}
