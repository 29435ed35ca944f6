package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"github.com/fdg312/calorie-diary/internal/config"
	"github.com/fdg312/calorie-diary/internal/dbmigrate"
	"github.com/fdg312/calorie-diary/internal/httpserver"
)

func main() {
	cfg := config.Load()

	printStartupBanner(cfg)

	if problems := configProblems(cfg); len(problems) > 0 {
		for _, p := range problems {
			log.Printf("FATAL config: %s", p)
		}
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RunMigrationsOnStartup {
		target, err := dbmigrate.SelectTarget(cfg, true)
		if err != nil {
			log.Fatalf("FATAL startup migrations: %v", err)
		}
		log.Printf("INFO startup migrations: command=up using=%s", target.Source)
		if err := dbmigrate.Run(ctx, "up", target, ""); err != nil {
			log.Fatalf("FATAL startup migrations failed: %v", err)
		}
		log.Printf("INFO startup migrations: completed")
	}

	server := httpserver.New(cfg)
	if err := server.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("FATAL server: %v", err)
	}
}

// printStartupBanner logs the resolved configuration once. Secrets are only
// reported as set / not set.
func printStartupBanner(cfg *config.Config) {
	reportsMode := cfg.Blob.EffectiveReportsMode()

	sections := []struct {
		name  string
		lines [][2]string
	}{
		{"server", [][2]string{
			{"env", cfg.Env},
			{"port", fmt.Sprint(cfg.Port)},
			{"rate_limit_rps", fmt.Sprint(cfg.RateLimitRPS)},
			{"cors_origins", strings.Join(cfg.CORSAllowedOrigins, ",")},
		}},
		{"database", [][2]string{
			{"runtime_url", describeDBURL(cfg)},
			{"direct", setOrNot(cfg.DatabaseURLDirect)},
			{"migrations_on_startup", fmt.Sprint(cfg.RunMigrationsOnStartup)},
		}},
		{"diary", [][2]string{
			{"variant", cfg.Diary.Variant},
			{"storage", cfg.Diary.Storage},
			{"timezone", cfg.Diary.Location().String()},
			{"goal_range", goalRange(cfg.Diary)},
		}},
		{"auth", [][2]string{
			{"auth_mode", cfg.AuthMode},
			{"auth_required", fmt.Sprint(cfg.AuthRequired)},
			{"jwt_secret", secretStatus(cfg.JWTSecret, "change_me")},
		}},
		{"blob", [][2]string{
			{"blob_mode", cfg.Blob.Mode},
			{"reports_mode", reportsMode},
			{"blob_dir", cfg.Blob.Dir},
			{"s3", cfg.Blob.S3.String()},
		}},
		{"lookup", [][2]string{
			{"base_url", cfg.Lookup.BaseURL},
			{"rps", fmt.Sprintf("%.2f", cfg.Lookup.RPS)},
		}},
		{"ai", [][2]string{
			{"ai_mode", cfg.AIMode},
			{"openai_model", cfg.OpenAIModel},
			{"openai_api_key", setOrNot(cfg.OpenAIAPIKey)},
		}},
	}

	log.Println("========== Calorie Diary API ==========")
	for _, sec := range sections {
		log.Printf("---- %s ----", sec.name)
		for _, kv := range sec.lines {
			if skipBannerLine(cfg, sec.name, kv[0]) {
				continue
			}
			log.Printf("  %-21s = %s", kv[0], orDash(kv[1]))
		}
	}
	log.Println("=======================================")
}

// skipBannerLine hides settings that the selected modes never read.
func skipBannerLine(cfg *config.Config, section, key string) bool {
	switch section + "." + key {
	case "blob.blob_dir":
		return cfg.Blob.Mode != config.BlobModeFile && cfg.Blob.EffectiveReportsMode() != config.BlobModeFile
	case "blob.s3":
		return !usesS3(cfg.Blob.Mode) && !usesS3(cfg.Blob.EffectiveReportsMode())
	case "ai.openai_model", "ai.openai_api_key":
		return cfg.AIMode != "openai"
	}
	return false
}

// configProblems lists settings the API refuses to start with. Most checks
// only apply to staging and production.
func configProblems(cfg *config.Config) []string {
	var problems []string
	isProd := cfg.Env == "production" || cfg.Env == "staging"

	if cfg.Blob.Mode == config.BlobModeS3 || cfg.Blob.EffectiveReportsMode() == config.BlobModeS3 {
		if missing := cfg.Blob.S3.MissingRequired(); len(missing) > 0 {
			problems = append(problems, "BLOB_MODE or REPORTS_MODE is 's3' but S3 config is incomplete, missing: "+strings.Join(missing, ", "))
		}
	}
	if cfg.Diary.Storage == config.DiaryStorageBlob && cfg.Blob.Mode == config.BlobModeLocal {
		problems = append(problems, "DIARY_STORAGE=blob requires BLOB_MODE=s3|file|auto")
	}
	if isProd && cfg.AuthRequired && cfg.JWTSecret == "change_me" {
		problems = append(problems, fmt.Sprintf("JWT_SECRET must not be 'change_me' in %s with AUTH_REQUIRED=1", cfg.Env))
	}
	if isProd && cfg.AIMode == "openai" && cfg.OpenAIAPIKey == "" {
		problems = append(problems, "OPENAI_API_KEY is required when AI_MODE=openai")
	}
	// diaries in the blob store need no database
	if isProd && cfg.DatabaseURL == "" && cfg.Diary.Storage != config.DiaryStorageBlob {
		problems = append(problems, "no DATABASE_URL configured in "+cfg.Env)
	}
	return problems
}

func setOrNot(v string) string {
	if strings.TrimSpace(v) == "" {
		return "not set"
	}
	return "set"
}

func orDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

func secretStatus(v, insecureDefault string) string {
	switch strings.TrimSpace(v) {
	case "":
		return "not set"
	case insecureDefault:
		return fmt.Sprintf("set (DEFAULT, insecure '%s')", insecureDefault)
	}
	return "set (custom)"
}

func describeDBURL(cfg *config.Config) string {
	switch {
	case cfg.DatabaseURL == "":
		return "not set (in-memory storage)"
	case cfg.DatabaseURL == cfg.DatabaseURLPooled:
		return "set (via DATABASE_URL_POOLED)"
	}
	return "set"
}

func goalRange(d config.DiaryConfig) string {
	if d.GoalMin == 0 && d.GoalMax == 0 {
		return "variant default"
	}
	return fmt.Sprintf("%d..%d", d.GoalMin, d.GoalMax)
}

func usesS3(mode string) bool {
	return mode == config.BlobModeS3 || mode == config.BlobModeAuto
}
