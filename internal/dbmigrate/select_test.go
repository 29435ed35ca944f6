package dbmigrate

import (
	"context"
	"strings"
	"testing"

	"github.com/fdg312/calorie-diary/internal/config"
	"github.com/fdg312/calorie-diary/migrations"
)

func TestSelectTarget(t *testing.T) {
	all := config.Config{
		DatabaseURLDirect: "postgres://direct",
		DatabaseURLRaw:    "postgres://url",
		DatabaseURLPooled: "postgres://pooled",
	}
	noDirect := config.Config{DatabaseURLRaw: "postgres://url", DatabaseURLPooled: "postgres://pooled"}
	pooledOnly := config.Config{DatabaseURLPooled: "postgres://pooled"}

	tests := []struct {
		name          string
		cfg           config.Config
		requireDirect bool
		wantSource    string
		wantWarning   bool
		wantErr       bool
	}{
		{"direct wins", all, false, "DATABASE_URL_DIRECT", false, false},
		{"direct wins when required", all, true, "DATABASE_URL_DIRECT", false, false},
		{"falls back to DATABASE_URL", noDirect, false, "DATABASE_URL", false, false},
		{"pooled with warning", pooledOnly, false, "DATABASE_URL_POOLED", true, false},
		{"required direct missing", noDirect, true, "", false, true},
		{"nothing configured", config.Config{}, false, "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectTarget(&tt.cfg, tt.requireDirect)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got.Source != tt.wantSource {
				t.Fatalf("source = %q, want %q", got.Source, tt.wantSource)
			}
			if (got.Warning != "") != tt.wantWarning {
				t.Fatalf("warning = %q", got.Warning)
			}
		})
	}
}

func TestRunRejectsBadCommands(t *testing.T) {
	ctx := context.Background()
	target := Target{URL: "postgres://unused"}

	if err := Run(ctx, "drop-everything", target, ""); err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("expected unsupported command error, got %v", err)
	}
	if err := Run(ctx, "up-to", target, ""); err == nil || !strings.Contains(err.Error(), "expects 1 argument") {
		t.Fatalf("expected argument count error, got %v", err)
	}
	if err := Run(ctx, "status", Target{}, ""); err == nil || !strings.Contains(err.Error(), "empty") {
		t.Fatalf("expected empty URL error, got %v", err)
	}
}

func TestResolveDir(t *testing.T) {
	if dir, err := resolveDir(""); err != nil || dir != "." {
		t.Fatalf("expected embedded dir, got %q (%v)", dir, err)
	}
	tmp := t.TempDir()
	if dir, err := resolveDir(tmp); err != nil || dir != tmp {
		t.Fatalf("expected %s, got %q (%v)", tmp, dir, err)
	}
	if _, err := resolveDir(tmp + "/missing"); err == nil {
		t.Fatal("expected error for missing dir")
	}
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	for _, name := range []string{"00001_diary_states.sql", "00002_reports.sql"} {
		data, err := migrations.FS.ReadFile(name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if !strings.Contains(string(data), "-- +goose Up") {
			t.Fatalf("%s has no goose Up section", name)
		}
	}
}
