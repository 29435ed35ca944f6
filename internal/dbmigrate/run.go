package dbmigrate

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/pressly/goose/v3"

	"github.com/fdg312/calorie-diary/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Commands lists the goose commands exposed by cmd/migrate. up-to and
// down-to take a version argument.
var Commands = map[string]int{
	"up":        0,
	"up-by-one": 0,
	"up-to":     1,
	"down":      0,
	"down-to":   1,
	"redo":      0,
	"status":    0,
	"version":   0,
}

// Run applies a goose command to the diary schema. An empty migrationsDir
// uses the migrations embedded in the binary.
func Run(ctx context.Context, command string, t Target, migrationsDir string, args ...string) error {
	want, ok := Commands[command]
	if !ok {
		return fmt.Errorf("unsupported migrate command %q", command)
	}
	if len(args) != want {
		return fmt.Errorf("%s expects %d argument(s), got %d", command, want, len(args))
	}
	if t.URL == "" {
		return fmt.Errorf("database URL is empty")
	}

	dir, err := resolveDir(migrationsDir)
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", t.URL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if dir == "." {
		goose.SetBaseFS(migrations.FS)
		defer goose.SetBaseFS(nil)
	}

	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// resolveDir returns "." for the embedded set or the on-disk directory.
func resolveDir(migrationsDir string) (string, error) {
	if migrationsDir == "" {
		return ".", nil
	}
	info, err := os.Stat(migrationsDir)
	if err != nil {
		return "", fmt.Errorf("migrations dir %q: %w", migrationsDir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("migrations dir %q is not a directory", migrationsDir)
	}
	return migrationsDir, nil
}
