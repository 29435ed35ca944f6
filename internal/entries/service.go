package entries

import (
	"context"
	"errors"
	"strings"

	"github.com/fdg312/calorie-diary/internal/datekey"
	"github.com/fdg312/calorie-diary/internal/diary"
)

var ErrFutureDate = errors.New("date is in the future")

type Service struct {
	registry *diary.Registry
}

func NewService(registry *diary.Registry) *Service {
	return &Service{registry: registry}
}

// resolveDate accepts a day key or "today" and refuses days after today.
func (s *Service) resolveDate(ctx context.Context, date string) (string, error) {
	today := s.registry.Today(ctx)
	date = strings.TrimSpace(date)
	if date == "" || strings.EqualFold(date, "today") {
		return today, nil
	}
	if !datekey.Valid(date) {
		return "", diary.ErrInvalidDate
	}
	if date > today {
		return "", ErrFutureDate
	}
	return date, nil
}

func (s *Service) Day(ctx context.Context, ownerID, date string) (DayView, error) {
	key, err := s.resolveDate(ctx, date)
	if err != nil {
		return DayView{}, err
	}

	var view DayView
	err = s.registry.With(ctx, ownerID, func(st *diary.Store) error {
		view = s.buildView(ctx, st, key)
		return nil
	})
	return view, err
}

func (s *Service) buildView(ctx context.Context, st *diary.Store, key string) DayView {
	now := s.registry.Now(ctx)
	today := datekey.Today(now)
	agg := diary.NewAggregator(st)

	view := DayView{
		Date:      key,
		Label:     datekey.Label(key, now),
		IsToday:   key == today,
		Entries:   st.EntriesOn(key),
		Totals:    agg.Totals(key),
		Goal:      st.Goal(),
		Remaining: agg.Remaining(key),
		OverGoal:  agg.IsOverGoal(key),
		Progress:  agg.Progress(key),
	}
	view.Prev, _ = datekey.Shift(key, -1)
	if key < today {
		view.Next, _ = datekey.Shift(key, 1)
	}
	return view
}

func (s *Service) AddEntry(ctx context.Context, ownerID, date string, req EntryRequest) (diary.Entry, error) {
	key, err := s.resolveDate(ctx, date)
	if err != nil {
		return diary.Entry{}, err
	}

	var entry diary.Entry
	err = s.registry.With(ctx, ownerID, func(st *diary.Store) error {
		var err error
		entry, err = st.AddEntry(ctx, key, req)
		return err
	})
	return entry, err
}

func (s *Service) UpdateEntry(ctx context.Context, ownerID, date, id string, req EntryRequest) (diary.Entry, error) {
	key, err := s.resolveDate(ctx, date)
	if err != nil {
		return diary.Entry{}, err
	}

	var entry diary.Entry
	err = s.registry.With(ctx, ownerID, func(st *diary.Store) error {
		var err error
		entry, err = st.UpdateEntry(ctx, key, id, req)
		return err
	})
	return entry, err
}

func (s *Service) DeleteEntry(ctx context.Context, ownerID, date, id string) error {
	key, err := s.resolveDate(ctx, date)
	if err != nil {
		return err
	}

	return s.registry.With(ctx, ownerID, func(st *diary.Store) error {
		if !st.DeleteEntry(ctx, key, id) {
			return diary.ErrEntryNotFound
		}
		return nil
	})
}

// ClearDay removes every entry of the day and returns the emptied view.
func (s *Service) ClearDay(ctx context.Context, ownerID, date string) (DayView, error) {
	key, err := s.resolveDate(ctx, date)
	if err != nil {
		return DayView{}, err
	}

	var view DayView
	err = s.registry.With(ctx, ownerID, func(st *diary.Store) error {
		if err := st.ClearDay(ctx, key); err != nil {
			return err
		}
		view = s.buildView(ctx, st, key)
		return nil
	})
	return view, err
}
