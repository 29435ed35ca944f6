package agent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/fdg312/calorie-diary/internal/ai"
	"github.com/fdg312/calorie-diary/internal/datekey"
	"github.com/fdg312/calorie-diary/internal/diary"
)

var (
	ErrEmptyMessage     = errors.New("message is empty")
	ErrNoItems          = errors.New("no items to log")
	ErrModelUnavailable = errors.New("model request failed")
	ErrFutureDate       = errors.New("date is in the future")
)

const (
	maxMessageLen   = 500
	maxContextTpls  = 50
	maxContextItems = 10
)

type Logger interface {
	Printf(format string, v ...any)
}

type Service struct {
	registry *diary.Registry
	provider ai.Provider
	logger   Logger
}

func NewService(registry *diary.Registry, provider ai.Provider, logger Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{registry: registry, provider: provider, logger: logger}
}

// Propose asks the model what to log for message, giving it today's goals,
// entries and the owner's templates as context. The diary is not changed.
func (s *Service) Propose(ctx context.Context, ownerID, message string) (ProposeResponse, error) {
	message = normalizeMessage(message)
	if message == "" {
		return ProposeResponse{}, ErrEmptyMessage
	}

	today := s.registry.Today(ctx)
	req := ai.ProposeRequest{Message: message, Date: today}
	err := s.registry.With(ctx, ownerID, func(st *diary.Store) error {
		g := st.Goal()
		req.Goals = ai.ContextGoals{Calories: g.Calories, Protein: g.Protein, Carbs: g.Carbs, Fat: g.Fat}
		for _, t := range st.Templates() {
			req.Templates = append(req.Templates, contextItem(t.Draft()))
		}
		for _, e := range st.EntriesOn(today) {
			req.Recent = append(req.Recent, ai.ContextItem{
				Name: e.Name, Calories: e.Calories, Protein: e.Protein, Carbs: e.Carbs, Fat: e.Fat,
			})
		}
		return nil
	})
	if err != nil {
		return ProposeResponse{}, err
	}

	proposal, err := s.ask(ctx, req)
	if err != nil {
		return ProposeResponse{}, err
	}
	return ProposeResponse{Date: today, Proposal: proposal}, nil
}

// ProposeStateless serves clients that keep the diary themselves.
func (s *Service) ProposeStateless(ctx context.Context, in StatelessRequest) (Proposal, error) {
	message := normalizeMessage(in.Message)
	if message == "" {
		return Proposal{}, ErrEmptyMessage
	}
	return s.ask(ctx, ai.ProposeRequest{
		Message:   message,
		Date:      in.Date,
		Goals:     in.Goals,
		Templates: in.Templates,
		Recent:    in.Recent,
	})
}

func (s *Service) ask(ctx context.Context, req ai.ProposeRequest) (Proposal, error) {
	if len(req.Templates) > maxContextTpls {
		req.Templates = req.Templates[:maxContextTpls]
	}
	if len(req.Recent) > maxContextItems {
		req.Recent = req.Recent[len(req.Recent)-maxContextItems:]
	}

	raw, err := s.provider.Propose(ctx, req)
	if err != nil {
		s.logger.Printf("WARN agent: provider failed: %v", err)
		return Proposal{}, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	return Sanitize(raw.Text), nil
}

// Confirm logs the accepted items on date (today when empty). Each item goes
// through the diary's own validation; invalid ones are reported, not logged.
// Days after today are refused.
func (s *Service) Confirm(ctx context.Context, ownerID, date string, items []diary.EntryDraft) (ConfirmResponse, error) {
	today := s.registry.Today(ctx)
	date = strings.TrimSpace(date)
	if date == "" {
		date = today
	}
	if !datekey.Valid(date) {
		return ConfirmResponse{}, diary.ErrInvalidDate
	}
	if date > today {
		return ConfirmResponse{}, ErrFutureDate
	}
	if len(items) == 0 {
		return ConfirmResponse{}, ErrNoItems
	}

	resp := ConfirmResponse{Date: date, Added: []diary.Entry{}, Rejected: []Rejection{}}
	err := s.registry.With(ctx, ownerID, func(st *diary.Store) error {
		for i, item := range items {
			entry, err := st.AddEntry(ctx, date, item)
			if err != nil {
				if !diary.IsValidation(err) {
					return err
				}
				resp.Rejected = append(resp.Rejected, Rejection{Index: i, Name: item.Name, Message: err.Error()})
				continue
			}
			resp.Added = append(resp.Added, entry)
		}
		return nil
	})
	if err != nil {
		return ConfirmResponse{}, err
	}
	return resp, nil
}

func normalizeMessage(message string) string {
	return truncate(strings.TrimSpace(message), maxMessageLen)
}

func contextItem(d diary.EntryDraft) ai.ContextItem {
	return ai.ContextItem{Name: d.Name, Calories: d.Calories, Protein: d.Protein, Carbs: d.Carbs, Fat: d.Fat}
}
