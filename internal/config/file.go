package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// CLIConfig is the diaryctl settings file. Env-driven server config does not
// apply to the CLI; it keeps the diary in a local JSON file.
type CLIConfig struct {
	DataFile string `yaml:"data_file" json:"data_file"`
	Variant  string `yaml:"variant" json:"variant"`
	Timezone string `yaml:"timezone" json:"timezone"`
	Lookup   struct {
		BaseURL        string  `yaml:"base_url" json:"base_url"`
		TimeoutSeconds int     `yaml:"timeout_seconds" json:"timeout_seconds"`
		RPS            float64 `yaml:"rps" json:"rps"`
	} `yaml:"lookup" json:"lookup"`
}

// DefaultCLIConfig returns defaults rooted at ~/.calorie-diary.
func DefaultCLIConfig() *CLIConfig {
	home, _ := os.UserHomeDir()
	cfg := &CLIConfig{
		DataFile: filepath.Join(home, ".calorie-diary", "diary.json"),
		Variant:  "classic",
	}
	cfg.Lookup.BaseURL = "https://world.openfoodfacts.net"
	cfg.Lookup.TimeoutSeconds = 10
	cfg.Lookup.RPS = 2
	return cfg
}

// DefaultCLIConfigPath is ~/.calorie-diary/config.yaml.
func DefaultCLIConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".calorie-diary", "config.yaml")
}

// LoadCLIConfig reads a YAML (or .json) settings file. A missing file yields defaults.
func LoadCLIConfig(path string) (*CLIConfig, error) {
	cfg := DefaultCLIConfig()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse JSON config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse YAML config: %w", err)
		}
	}

	if cfg.DataFile != "" && !filepath.IsAbs(cfg.DataFile) {
		cfg.DataFile = filepath.Join(filepath.Dir(path), cfg.DataFile)
	}
	if cfg.Lookup.TimeoutSeconds <= 0 {
		cfg.Lookup.TimeoutSeconds = 10
	}
	if cfg.Lookup.RPS <= 0 {
		cfg.Lookup.RPS = 2
	}
	return cfg, nil
}

// SaveCLIConfig writes cfg as YAML, creating the directory if needed.
func SaveCLIConfig(cfg *CLIConfig, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal YAML config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
