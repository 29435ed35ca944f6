package diary

import (
	"context"
	"errors"
	"testing"
)

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src, _ := newTestStore(t, &memSlot{}, MacroPolicy())
	src.AddEntry(ctx, "2024-06-01", EntryDraft{Name: "Eggs", Calories: 300, Protein: 18})
	src.AddEntry(ctx, "2024-06-02", EntryDraft{Name: "Toast", Calories: 200})
	src.AddTemplate(ctx, EntryDraft{Name: "Shake", Calories: 250})
	src.SetGoal(ctx, Goal{Calories: 1900, Protein: 150, Carbs: 180, Fat: 60})

	data, err := src.Export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	slot := &memSlot{}
	dst, _ := newTestStore(t, slot, MacroPolicy())
	dst.AddEntry(ctx, "2020-01-01", EntryDraft{Name: "Old", Calories: 1})
	if err := dst.Import(ctx, data); err != nil {
		t.Fatalf("import: %v", err)
	}

	if dst.Goal() != src.Goal() {
		t.Fatalf("expected goals %+v, got %+v", src.Goal(), dst.Goal())
	}
	if days := dst.Days(); len(days) != 2 || days[0] != "2024-06-01" {
		t.Fatalf("expected imported days only, got %v", days)
	}
	if dst.EntriesOn("2024-06-01")[0].ID != src.EntriesOn("2024-06-01")[0].ID {
		t.Fatal("expected entry ids to be preserved")
	}
	if len(dst.Templates()) != 1 {
		t.Fatal("expected templates to be imported")
	}
	if slot.saves == 0 {
		t.Fatal("expected import to be persisted")
	}
}

func TestImportRejectsMalformedBackup(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, &memSlot{}, DefaultPolicy())
	s.AddEntry(ctx, "2024-06-01", EntryDraft{Name: "Eggs", Calories: 300})

	for _, data := range []string{`not json`, `[]`, `null`, `"text"`, `{"days": {"2024-06-01": 5}}`} {
		if err := s.Import(ctx, []byte(data)); !errors.Is(err, ErrInvalidBackup) {
			t.Errorf("expected ErrInvalidBackup for %q, got %v", data, err)
		}
	}
	if len(s.EntriesOn("2024-06-01")) != 1 {
		t.Fatal("expected state to be unchanged after failed imports")
	}
}

func TestImportMissingFieldsDefault(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, &memSlot{}, MacroPolicy())
	if err := s.Import(ctx, []byte(`{"days": {"2024-06-01": {"entries": [{"name": "Rice", "cals": 200}]}}}`)); err != nil {
		t.Fatalf("import: %v", err)
	}
	if s.Goal() != MacroPolicy().DefaultGoal {
		t.Fatalf("expected default goals, got %+v", s.Goal())
	}
	e := s.EntriesOn("2024-06-01")
	if len(e) != 1 || e[0].ID == "" {
		t.Fatalf("expected entry with generated id, got %+v", e)
	}
}

func TestBackupFilename(t *testing.T) {
	if got := BackupFilename("2024-06-01"); got != "calorie-tracker-backup-2024-06-01.json" {
		t.Fatalf("unexpected filename %q", got)
	}
}
