package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"

	_ "github.com/joho/godotenv/autoload"

	"github.com/fdg312/calorie-diary/internal/config"
	"github.com/fdg312/calorie-diary/internal/dbmigrate"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("usage: migrate <%s> [version]", strings.Join(commandNames(), "|"))
	}
	command, args := os.Args[1], os.Args[2:]

	cfg := config.Load()
	if cfg.Diary.Storage == config.DiaryStorageMemory {
		log.Printf("WARN migrate: DIARY_STORAGE=memory, the API will not use this database")
	}

	target, err := dbmigrate.SelectTarget(cfg, false)
	if err != nil {
		log.Fatalf("FATAL migrate: %v", err)
	}
	if target.Warning != "" {
		log.Printf("WARN migrate: %s", target.Warning)
	}

	// MIGRATIONS_DIR overrides the embedded migration set.
	dir := strings.TrimSpace(os.Getenv("MIGRATIONS_DIR"))
	from := "embedded"
	if dir != "" {
		from = dir
	}
	log.Printf("INFO migrate: command=%s args=%v using=%s migrations=%s", command, args, target.Source, from)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := dbmigrate.Run(ctx, command, target, dir, args...); err != nil {
		log.Fatalf("FATAL migrate: %v", err)
	}
	log.Printf("INFO migrate: %s completed", command)
}

func commandNames() []string {
	names := make([]string, 0, len(dbmigrate.Commands))
	for name := range dbmigrate.Commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
