package diary

import (
	"context"
	"sort"
	"strings"
)

// Templates returns all templates sorted by name.
func (s *Store) Templates() []Template {
	return s.SearchTemplates("")
}

// SearchTemplates returns templates whose name contains q (case-insensitive),
// sorted by name.
func (s *Store) SearchTemplates(q string) []Template {
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]Template, 0, len(s.state.Templates))
	for _, t := range s.state.Templates {
		if q == "" || strings.Contains(strings.ToLower(t.Name), q) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// Template returns a template by id.
func (s *Store) Template(id string) (Template, bool) {
	for _, t := range s.state.Templates {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}

func (s *Store) AddTemplate(ctx context.Context, draft EntryDraft) (Template, error) {
	draft, err := s.validateDraft(draft)
	if err != nil {
		return Template{}, err
	}
	t := Template{
		ID:       s.newID(),
		Name:     draft.Name,
		Calories: draft.Calories,
		Protein:  draft.Protein,
		Carbs:    draft.Carbs,
		Fat:      draft.Fat,
	}
	s.state.Templates = append(s.state.Templates, t)
	s.commit(ctx)
	return t, nil
}

func (s *Store) UpdateTemplate(ctx context.Context, id string, draft EntryDraft) (Template, error) {
	idx := -1
	for i, t := range s.state.Templates {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Template{}, ErrTemplateNotFound
	}
	draft, err := s.validateDraft(draft)
	if err != nil {
		return Template{}, err
	}
	t := Template{
		ID:       id,
		Name:     draft.Name,
		Calories: draft.Calories,
		Protein:  draft.Protein,
		Carbs:    draft.Carbs,
		Fat:      draft.Fat,
	}
	s.state.Templates[idx] = t
	s.commit(ctx)
	return t, nil
}

// DeleteTemplate reports false when the template does not exist.
func (s *Store) DeleteTemplate(ctx context.Context, id string) bool {
	kept := make([]Template, 0, len(s.state.Templates))
	for _, t := range s.state.Templates {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(s.state.Templates) {
		return false
	}
	s.state.Templates = kept
	s.commit(ctx)
	return true
}

// ApplyTemplate logs a new entry from a template with a fresh id and
// timestamp, through the same validation as a manual entry.
func (s *Store) ApplyTemplate(ctx context.Context, key, id string) (Entry, error) {
	t, ok := s.Template(id)
	if !ok {
		return Entry{}, ErrTemplateNotFound
	}
	return s.AddEntry(ctx, key, t.Draft())
}
