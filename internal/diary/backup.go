package diary

import (
	"context"
	"encoding/json"
	"fmt"
)

// BackupFilename is the download name of an export made on today.
func BackupFilename(today string) string {
	return fmt.Sprintf("calorie-tracker-backup-%s.json", today)
}

// Export serialises the full state as indented JSON.
func (s *Store) Export() ([]byte, error) {
	return json.MarshalIndent(s.state, "", "  ")
}

// Snapshot returns a deep copy of the state.
func (s *Store) Snapshot() State {
	days := make(map[string]DayRecord, len(s.state.Days))
	for k, rec := range s.state.Days {
		entries := make([]Entry, len(rec.Entries))
		copy(entries, rec.Entries)
		days[k] = DayRecord{Entries: entries}
	}
	templates := make([]Template, len(s.state.Templates))
	copy(templates, s.state.Templates)
	return State{Goals: s.state.Goals, Days: days, Templates: templates}
}

// Import replaces the whole diary with a backup. Unlike loading, a malformed
// backup is an error and the current state is kept.
func (s *Store) Import(ctx context.Context, data []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil || probe == nil {
		return ErrInvalidBackup
	}
	st, err := decodeState(data, s.policy)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	s.state = normalizeState(st, s.policy, s.newID)
	s.commit(ctx)
	return nil
}
