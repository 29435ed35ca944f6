package diary

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fdg312/calorie-diary/internal/datekey"
	"github.com/google/uuid"
)

// Slot is the persistent key-value slot holding one serialized diary.
// Load returns (nil, nil) when nothing has been saved yet.
type Slot interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

type Logger interface {
	Printf(format string, v ...any)
}

// Store owns one diary. It is loaded once, mutated in memory and written
// through to its slot after every mutation. A Store is not safe for
// concurrent use; Registry serialises access per owner.
type Store struct {
	slot   Slot
	policy Policy
	state  State
	logger Logger
	now    func() time.Time
	newID  func() string
}

type Option func(*Store)

func WithLogger(l Logger) Option {
	return func(s *Store) { s.logger = l }
}

func WithNow(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// Open loads the diary from slot. A missing, unreadable or corrupt blob
// yields the policy defaults; the failure is logged, never returned.
func Open(ctx context.Context, slot Slot, policy Policy, opts ...Option) *Store {
	s := newStore(slot, policy, opts)
	st, err := s.load(ctx)
	if err != nil {
		s.logger.Printf("WARN diary: load failed, using defaults: %v", err)
	}
	s.state = st
	return s
}

// Load is Open for long-lived callers that must not write defaults over a
// diary they could not read. A slot read error is returned; absent or
// corrupt data still yields the defaults.
func Load(ctx context.Context, slot Slot, policy Policy, opts ...Option) (*Store, error) {
	s := newStore(slot, policy, opts)
	st, err := s.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDiaryUnavailable, err)
	}
	s.state = st
	return s, nil
}

func newStore(slot Slot, policy Policy, opts []Option) *Store {
	s := &Store{
		slot:   slot,
		policy: policy,
		logger: log.Default(),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// load returns the defaults together with any slot read error.
func (s *Store) load(ctx context.Context) (State, error) {
	if s.slot == nil {
		return defaultState(s.policy), nil
	}
	data, err := s.slot.Load(ctx)
	if err != nil {
		return defaultState(s.policy), err
	}
	if len(data) == 0 {
		return defaultState(s.policy), nil
	}
	st, err := decodeState(data, s.policy)
	if err != nil {
		s.logger.Printf("WARN diary: stored state is corrupt, using defaults: %v", err)
		return defaultState(s.policy), nil
	}
	return normalizeState(st, s.policy, s.newID), nil
}

// commit runs at the end of every mutating method: empty days are removed,
// then the full state is written through. Write failures are logged and
// swallowed; the in-memory state stays authoritative.
func (s *Store) commit(ctx context.Context) {
	pruneEmptyDays(s.state.Days)
	if s.slot == nil {
		return
	}
	data, err := json.Marshal(s.state)
	if err != nil {
		s.logger.Printf("WARN diary: encode state failed: %v", err)
		return
	}
	if err := s.slot.Save(ctx, data); err != nil {
		s.logger.Printf("WARN diary: persist failed: %v", err)
	}
}

func (s *Store) Policy() Policy {
	return s.policy
}

// EntriesOn returns a copy of the entries for key, or an empty slice.
func (s *Store) EntriesOn(key string) []Entry {
	rec, ok := s.state.Days[key]
	if !ok {
		return []Entry{}
	}
	out := make([]Entry, len(rec.Entries))
	copy(out, rec.Entries)
	return out
}

// Days returns the keys that have entries, oldest first.
func (s *Store) Days() []string {
	return sortedKeys(s.state.Days)
}

// SetEntries replaces the entries of a day. An empty list removes the day.
func (s *Store) SetEntries(ctx context.Context, key string, entries []Entry) error {
	if !datekey.Valid(key) {
		return ErrInvalidDate
	}
	if len(entries) == 0 {
		delete(s.state.Days, key)
	} else {
		cp := make([]Entry, len(entries))
		copy(cp, entries)
		s.state.Days[key] = DayRecord{Entries: cp}
	}
	s.commit(ctx)
	return nil
}

// AddEntry validates draft and appends it to the day.
func (s *Store) AddEntry(ctx context.Context, key string, draft EntryDraft) (Entry, error) {
	if !datekey.Valid(key) {
		return Entry{}, ErrInvalidDate
	}
	draft, err := s.validateDraft(draft)
	if err != nil {
		return Entry{}, err
	}

	entry := Entry{
		ID:        s.newID(),
		Name:      draft.Name,
		Calories:  draft.Calories,
		Protein:   draft.Protein,
		Carbs:     draft.Carbs,
		Fat:       draft.Fat,
		CreatedAt: s.now().UTC(),
	}
	rec := s.state.Days[key]
	rec.Entries = append(rec.Entries, entry)
	s.state.Days[key] = rec
	s.commit(ctx)
	return entry, nil
}

// UpdateEntry edits an entry in place, keeping its id and timestamp.
func (s *Store) UpdateEntry(ctx context.Context, key, id string, draft EntryDraft) (Entry, error) {
	if !datekey.Valid(key) {
		return Entry{}, ErrInvalidDate
	}
	rec, ok := s.state.Days[key]
	if !ok {
		return Entry{}, ErrEntryNotFound
	}
	idx := indexOfEntry(rec.Entries, id)
	if idx < 0 {
		return Entry{}, ErrEntryNotFound
	}
	draft, err := s.validateDraft(draft)
	if err != nil {
		return Entry{}, err
	}

	e := rec.Entries[idx]
	e.Name = draft.Name
	e.Calories = draft.Calories
	e.Protein = draft.Protein
	e.Carbs = draft.Carbs
	e.Fat = draft.Fat
	rec.Entries[idx] = e
	s.commit(ctx)
	return e, nil
}

// DeleteEntry removes an entry. It reports false and changes nothing when
// the entry does not exist.
func (s *Store) DeleteEntry(ctx context.Context, key, id string) bool {
	rec, ok := s.state.Days[key]
	if !ok {
		return false
	}
	idx := indexOfEntry(rec.Entries, id)
	if idx < 0 {
		return false
	}
	entries := make([]Entry, 0, len(rec.Entries)-1)
	entries = append(entries, rec.Entries[:idx]...)
	entries = append(entries, rec.Entries[idx+1:]...)
	s.state.Days[key] = DayRecord{Entries: entries}
	s.commit(ctx)
	return true
}

// ClearDay removes every entry of the day.
func (s *Store) ClearDay(ctx context.Context, key string) error {
	return s.SetEntries(ctx, key, nil)
}

func (s *Store) Goal() Goal {
	return s.state.Goals
}

// SetGoal replaces all goals. Out-of-range values are rejected and the
// previous goal is kept as is.
func (s *Store) SetGoal(ctx context.Context, g Goal) error {
	if g.Calories < s.policy.GoalMin || g.Calories > s.policy.GoalMax {
		return invalid("cals", "must be between %d and %d", s.policy.GoalMin, s.policy.GoalMax)
	}
	macros := []struct {
		field string
		value int
	}{{"protein", g.Protein}, {"carbs", g.Carbs}, {"fat", g.Fat}}
	for _, m := range macros {
		if m.value < 0 || m.value > s.policy.MacroGoalMax {
			return invalid(m.field, "must be between 0 and %d", s.policy.MacroGoalMax)
		}
	}
	s.state.Goals = g
	s.commit(ctx)
	return nil
}

// SetCalorieGoal changes only the calorie goal.
func (s *Store) SetCalorieGoal(ctx context.Context, cals int) error {
	g := s.state.Goals
	g.Calories = cals
	return s.SetGoal(ctx, g)
}

// ResetGoal restores the policy defaults.
func (s *Store) ResetGoal(ctx context.Context) {
	s.state.Goals = s.policy.DefaultGoal
	s.commit(ctx)
}

func (s *Store) validateDraft(d EntryDraft) (EntryDraft, error) {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return d, invalid("name", "is required")
	}
	d.Name = truncateRunes(d.Name, s.policy.MaxNameLen)
	if min := s.policy.minCalories(); d.Calories < min {
		return d, invalid("cals", "must be an integer >= %d", min)
	}
	if d.Protein < 0 || d.Carbs < 0 || d.Fat < 0 {
		return d, invalid("macros", "must not be negative")
	}
	return d, nil
}

func indexOfEntry(entries []Entry, id string) int {
	for i, e := range entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}
