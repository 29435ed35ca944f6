package templates

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

func (s *Service) List(ctx context.Context, ownerID, query string) ([]diary.Template, error) {
	var out []diary.Template
	err := s.registry.With(ctx, ownerID, func(st *diary.Store) error {
		out = st.SearchTemplates(query)
		return nil
	})
	return out, err
}

func (s *Service) Create(ctx context.Context, ownerID string, req TemplateRequest) (diary.Template, error) {
	var t diary.Template
	err := s.registry.With(ctx, ownerID, func(st *diary.Store) error {
		var err error
		t, err = st.AddTemplate(ctx, req)
		return err
	})
	return t, err
}

func (s *Service) Update(ctx context.Context, ownerID, id string, req TemplateRequest) (diary.Template, error) {
	var t diary.Template
	err := s.registry.With(ctx, ownerID, func(st *diary.Store) error {
		var err error
		t, err = st.UpdateTemplate(ctx, id, req)
		return err
	})
	return t, err
}

func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	return s.registry.With(ctx, ownerID, func(st *diary.Store) error {
		if !st.DeleteTemplate(ctx, id) {
			return diary.ErrTemplateNotFound
		}
		return nil
	})
}

// Apply logs the template as a new entry on date, today when empty.
func (s *Service) Apply(ctx context.Context, ownerID, id, date string) (ApplyResponse, error) {
	today := s.registry.Today(ctx)
	date = strings.TrimSpace(date)
	if date == "" {
		date = today
	}
	if !datekey.Valid(date) {
		return ApplyResponse{}, diary.ErrInvalidDate
	}
	if date > today {
		return ApplyResponse{}, ErrFutureDate
	}

	resp := ApplyResponse{Date: date}
	err := s.registry.With(ctx, ownerID, func(st *diary.Store) error {
		var err error
		resp.Entry, err = st.ApplyTemplate(ctx, date, id)
		return err
	})
	if err != nil {
		return ApplyResponse{}, err
	}
	return resp, nil
}
