package dbmigrate

import (
	"fmt"

	"github.com/fdg312/calorie-diary/internal/config"
)

// Target is the database a migration run talks to.
type Target struct {
	URL     string
	Source  string // env variable the URL came from
	Warning string
}

// SelectTarget picks the URL for DDL: DATABASE_URL_DIRECT, then DATABASE_URL,
// then DATABASE_URL_POOLED with a warning. requireDirect accepts only the
// direct URL; startup migrations use it so a pooler never sees DDL.
func SelectTarget(cfg *config.Config, requireDirect bool) (Target, error) {
	switch {
	case cfg.DatabaseURLDirect != "":
		return Target{URL: cfg.DatabaseURLDirect, Source: "DATABASE_URL_DIRECT"}, nil
	case requireDirect:
		return Target{}, fmt.Errorf("DATABASE_URL_DIRECT is required for DDL/migrations")
	case cfg.DatabaseURLRaw != "":
		return Target{URL: cfg.DatabaseURLRaw, Source: "DATABASE_URL"}, nil
	case cfg.DatabaseURLPooled != "":
		return Target{
			URL:     cfg.DatabaseURLPooled,
			Source:  "DATABASE_URL_POOLED",
			Warning: "using pooled connection for DDL is not recommended; set DATABASE_URL_DIRECT",
		}, nil
	}
	return Target{}, fmt.Errorf("no database URL configured (set DATABASE_URL_DIRECT or DATABASE_URL)")
}
