package main

import (
	"strings"
	"testing"

	"github.com/fdg312/calorie-diary/internal/config"
)

func TestConfigProblems(t *testing.T) {
	base := func() *config.Config {
		return &config.Config{
			Env:         "production",
			DatabaseURL: "postgres://db",
			AuthMode:    "install",
			JWTSecret:   "s3cret",
			AIMode:      "mock",
			Blob:        config.BlobConfig{Mode: config.BlobModeLocal},
			Diary:       config.DiaryConfig{Storage: config.DiaryStorageAuto},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *config.Config)
		want   string
	}{
		{"valid", func(c *config.Config) {}, ""},
		{"s3 incomplete", func(c *config.Config) { c.Blob.Mode = config.BlobModeS3 }, "S3 config is incomplete"},
		{"blob diary without store", func(c *config.Config) { c.Diary.Storage = config.DiaryStorageBlob }, "DIARY_STORAGE=blob"},
		{"default jwt secret", func(c *config.Config) { c.AuthRequired = true; c.JWTSecret = "change_me" }, "JWT_SECRET"},
		{"openai without key", func(c *config.Config) { c.AIMode = "openai" }, "OPENAI_API_KEY"},
		{"no database", func(c *config.Config) { c.DatabaseURL = "" }, "no DATABASE_URL"},
		{"local env tolerates defaults", func(c *config.Config) {
			c.Env = "local"
			c.DatabaseURL = ""
			c.AuthRequired = true
			c.JWTSecret = "change_me"
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			problems := configProblems(cfg)

			if tt.want == "" {
				if len(problems) != 0 {
					t.Fatalf("expected no problems, got %v", problems)
				}
				return
			}
			if len(problems) != 1 || !strings.Contains(problems[0], tt.want) {
				t.Fatalf("expected one problem mentioning %q, got %v", tt.want, problems)
			}
		})
	}
}

func TestSkipBannerLine(t *testing.T) {
	cfg := &config.Config{AIMode: "mock", Blob: config.BlobConfig{Mode: config.BlobModeFile}}

	if skipBannerLine(cfg, "blob", "blob_dir") {
		t.Error("blob_dir should be shown in file mode")
	}
	if !skipBannerLine(cfg, "blob", "s3") {
		t.Error("s3 settings should be hidden in file mode")
	}
	if !skipBannerLine(cfg, "ai", "openai_api_key") {
		t.Error("openai settings should be hidden in mock mode")
	}
}
