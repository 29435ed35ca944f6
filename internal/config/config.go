package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DiaryStorageAuto     = "auto"
	DiaryStorageMemory   = "memory"
	DiaryStoragePostgres = "postgres"
	DiaryStorageBlob     = "blob"
)

// DiaryConfig описывает правила дневника и место хранения.
type DiaryConfig struct {
	Variant  string // classic | macros
	GoalMin  int    // 0 = variant default
	GoalMax  int
	Timezone string
	Storage  string // auto|memory|postgres|blob
}

// Location resolves DIARY_TIMEZONE, falling back to time.Local.
func (c DiaryConfig) Location() *time.Location {
	if strings.TrimSpace(c.Timezone) == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("WARNING: unknown DIARY_TIMEZONE=%q, fallback to local", c.Timezone)
		return time.Local
	}
	return loc
}

// LookupConfig - Open Food Facts client settings.
type LookupConfig struct {
	BaseURL        string
	TimeoutSeconds int
	RPS            float64
	UserAgent      string
}

// Config содержит конфигурацию сервера дневника
type Config struct {
	Env  string // local | staging | production
	Port int

	// Database
	DatabaseURL       string // runtime connection (resolved: pooled > url > direct)
	DatabaseURLRaw    string // DATABASE_URL as provided
	DatabaseURLPooled string
	DatabaseURLDirect string // for migrations / DDL (may be empty)

	RunMigrationsOnStartup bool

	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	RateLimitRPS   int
	RateLimitBurst int

	Blob   BlobConfig
	Diary  DiaryConfig
	Lookup LookupConfig

	ReportsMaxRangeDays int

	// Authentication
	AuthMode      string // none | install
	AuthRequired  bool
	JWTSecret     string
	JWTIssuer     string
	JWTTTLMinutes int

	// AI proposals
	AIMode            string // mock | openai
	AIMaxOutputTokens int
	AITemperature     float64
	AITimeoutSeconds  int
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAIBaseURL     string
}

// Load читает конфигурацию из переменных окружения. Неизвестные значения
// перечислимых настроек логируются и заменяются значениями по умолчанию.
func Load() *Config {
	c := &Config{
		Env:                    firstNonEmpty(os.Getenv("APP_ENV"), os.Getenv("ENV"), "local"),
		Port:                   envInt("PORT", 8080),
		RunMigrationsOnStartup: parseBoolEnv("RUN_MIGRATIONS_ON_STARTUP"),
		CORSAllowCredentials:   os.Getenv("CORS_ALLOW_CREDENTIALS") == "1",
		RateLimitRPS:           envInt("RATE_LIMIT_RPS", 0),
		RateLimitBurst:         envInt("RATE_LIMIT_BURST", 0),
		ReportsMaxRangeDays:    positiveInt("REPORTS_MAX_RANGE_DAYS", 90),
		Blob:                   loadBlobConfig(),
		Diary:                  loadDiaryConfig(),
		Lookup:                 loadLookupConfig(),
	}
	c.CORSAllowedOrigins = parseCORSOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"), c.Env)

	c.loadDatabase()
	c.loadAuth()
	c.loadAI()
	return c
}

// loadDatabase: the API prefers DATABASE_URL_POOLED > DATABASE_URL > DATABASE_URL_DIRECT.
func (c *Config) loadDatabase() {
	c.DatabaseURLPooled = envString("DATABASE_URL_POOLED", "")
	c.DatabaseURLRaw = envString("DATABASE_URL", "")
	c.DatabaseURLDirect = envString("DATABASE_URL_DIRECT", "")
	c.DatabaseURL = firstNonEmpty(c.DatabaseURLPooled, c.DatabaseURLRaw, c.DatabaseURLDirect)
}

func (c *Config) loadAuth() {
	c.AuthMode = oneOf("AUTH_MODE", "none", "install")
	c.AuthRequired = c.AuthMode != "none" && parseBoolEnv("AUTH_REQUIRED")

	c.JWTSecret = firstNonEmpty(os.Getenv("JWT_SECRET"), "change_me")
	if c.JWTSecret == "change_me" && c.Env != "local" {
		log.Println("WARNING: JWT_SECRET is set to 'change_me' in non-local environment!")
	}
	c.JWTIssuer = envString("JWT_ISSUER", "calorie-diary")
	// installs are long-lived: one year by default
	c.JWTTTLMinutes = positiveInt("JWT_TTL_MINUTES", 525600)
}

func (c *Config) loadAI() {
	c.AIMode = oneOf("AI_MODE", "mock", "openai")
	c.AIMaxOutputTokens = positiveInt("AI_MAX_OUTPUT_TOKENS", 600)
	c.AITimeoutSeconds = positiveInt("AI_TIMEOUT_SECONDS", 20)
	c.AITemperature = min(max(envFloat("AI_TEMPERATURE", 0.2), 0), 2)

	c.OpenAIAPIKey = envString("OPENAI_API_KEY", "")
	c.OpenAIModel = envString("OPENAI_MODEL", "gpt-4.1-mini")
	c.OpenAIBaseURL = strings.TrimRight(envString("OPENAI_BASE_URL", "https://api.openai.com/v1"), "/")
}

func loadLookupConfig() LookupConfig {
	rps := envFloat("LOOKUP_RPS", 2)
	if rps <= 0 {
		rps = 2
	}
	return LookupConfig{
		BaseURL:        strings.TrimRight(envString("LOOKUP_BASE_URL", "https://world.openfoodfacts.net"), "/"),
		TimeoutSeconds: positiveInt("LOOKUP_TIMEOUT_SECONDS", 10),
		RPS:            rps,
		UserAgent:      envString("LOOKUP_USER_AGENT", "calorie-diary/1.0"),
	}
}

// loadDiaryConfig reads DIARY_*. Goal bounds of 0 mean "use the variant's defaults".
func loadDiaryConfig() DiaryConfig {
	goalMin := envInt("DIARY_GOAL_MIN", 0)
	goalMax := envInt("DIARY_GOAL_MAX", 0)
	if goalMin < 0 || goalMax < 0 || (goalMax > 0 && goalMin > goalMax) {
		log.Printf("WARNING: invalid DIARY_GOAL_MIN=%d DIARY_GOAL_MAX=%d, using defaults", goalMin, goalMax)
		goalMin, goalMax = 0, 0
	}

	return DiaryConfig{
		Variant:  oneOf("DIARY_VARIANT", "classic", "macros"),
		GoalMin:  goalMin,
		GoalMax:  goalMax,
		Timezone: envString("DIARY_TIMEZONE", ""),
		Storage:  oneOf("DIARY_STORAGE", DiaryStorageAuto, DiaryStorageMemory, DiaryStoragePostgres, DiaryStorageBlob),
	}
}

// parseCORSOrigins parses CORS_ALLOWED_ORIGINS.
// In local mode, defaults to localhost origins if empty.
func parseCORSOrigins(raw, env string) []string {
	if strings.TrimSpace(raw) == "" {
		if env == "local" {
			return []string{"http://localhost:3000", "http://localhost:8081"}
		}
		return nil // deny by default
	}

	var origins []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

// oneOf reads an enum env var (case-insensitive). The first allowed value is
// the default; unknown values fall back to it with a warning.
func oneOf(key string, allowed ...string) string {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return allowed[0]
	}
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	log.Printf("WARNING: unknown %s=%q, fallback to %s", key, v, allowed[0])
	return allowed[0]
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// envInt reads an int env var with a default value.
func envInt(key string, defaultVal int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return defaultVal
	}
	return v
}

// positiveInt is envInt that also rejects zero and negatives.
func positiveInt(key string, defaultVal int) int {
	if v := envInt(key, defaultVal); v > 0 {
		return v
	}
	return defaultVal
}

func envFloat(key string, defaultVal float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64)
	if err != nil {
		return defaultVal
	}
	return v
}

func parseBoolEnv(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// envString reads a trimmed string env var with a default value.
func envString(key, defaultVal string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultVal
}
