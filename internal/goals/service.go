package goals

import (
	"context"
	"errors"

	"github.com/fdg312/calorie-diary/internal/diary"
)

var ErrCaloriesRequired = errors.New("cals is required")

type Service struct {
	registry *diary.Registry
}

func NewService(registry *diary.Registry) *Service {
	return &Service{registry: registry}
}

func (s *Service) Get(ctx context.Context, ownerID string) (GoalResponse, error) {
	var g diary.Goal
	err := s.registry.With(ctx, ownerID, func(st *diary.Store) error {
		g = st.Goal()
		return nil
	})
	return s.response(g), err
}

// Update validates against the diary policy. A rejected goal leaves the
// stored goal untouched.
func (s *Service) Update(ctx context.Context, ownerID string, req UpdateGoalRequest) (GoalResponse, error) {
	if req.Calories == nil {
		return GoalResponse{}, ErrCaloriesRequired
	}

	var g diary.Goal
	err := s.registry.With(ctx, ownerID, func(st *diary.Store) error {
		next := st.Goal()
		next.Calories = *req.Calories
		if req.Protein != nil {
			next.Protein = *req.Protein
		}
		if req.Carbs != nil {
			next.Carbs = *req.Carbs
		}
		if req.Fat != nil {
			next.Fat = *req.Fat
		}
		if err := st.SetGoal(ctx, next); err != nil {
			return err
		}
		g = st.Goal()
		return nil
	})
	if err != nil {
		return GoalResponse{}, err
	}
	return s.response(g), nil
}

func (s *Service) Reset(ctx context.Context, ownerID string) (GoalResponse, error) {
	var g diary.Goal
	err := s.registry.With(ctx, ownerID, func(st *diary.Store) error {
		st.ResetGoal(ctx)
		g = st.Goal()
		return nil
	})
	return s.response(g), err
}

func (s *Service) response(g diary.Goal) GoalResponse {
	p := s.registry.Policy()
	return GoalResponse{
		Goal: g,
		Limits: Limits{
			CaloriesMin:  p.GoalMin,
			CaloriesMax:  p.GoalMax,
			MacroMax:     p.MacroGoalMax,
			TracksMacros: p.AllowZeroCalories,
		},
	}
}
