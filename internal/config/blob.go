package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	BlobModeLocal = "local"
	BlobModeS3    = "s3"
	BlobModeAuto  = "auto"
	BlobModeFile  = "file"
)

const defaultPresignTTLSeconds = 900

// BlobConfig выбирает хранилище объектов для дневника, отчётов и архивов.
type BlobConfig struct {
	Mode           string // local|s3|auto|file
	Dir            string // BLOB_DIR for mode=file
	ReportsMode    string
	ReportsModeSet bool // REPORTS_MODE given explicitly
	S3             S3Config
}

// EffectiveReportsMode is REPORTS_MODE when set, BLOB_MODE otherwise.
func (c BlobConfig) EffectiveReportsMode() string {
	if c.ReportsModeSet {
		return c.ReportsMode
	}
	return c.Mode
}

type S3Config struct {
	Endpoint          string
	Region            string
	Bucket            string
	AccessKeyID       string
	SecretAccessKey   string
	PublicBaseURL     string
	PresignTTLSeconds int
	PreferPublicURL   bool
}

// MissingRequired lists the unset S3_* variables. The public base URL is only
// needed when S3_PREFER_PUBLIC_URL asks for unsigned links.
func (c S3Config) MissingRequired() []string {
	required := []struct{ env, val string }{
		{"S3_ENDPOINT", c.Endpoint},
		{"S3_REGION", c.Region},
		{"S3_BUCKET", c.Bucket},
		{"S3_ACCESS_KEY_ID", c.AccessKeyID},
		{"S3_SECRET_ACCESS_KEY", c.SecretAccessKey},
	}
	if c.PreferPublicURL {
		required = append(required, struct{ env, val string }{"S3_PUBLIC_BASE_URL", c.PublicBaseURL})
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.val) == "" {
			missing = append(missing, r.env)
		}
	}
	return missing
}

func (c S3Config) IsConfigured() bool {
	return len(c.MissingRequired()) == 0
}

func (c S3Config) isEmpty() bool {
	for _, v := range []string{c.Endpoint, c.Region, c.Bucket, c.AccessKeyID, c.SecretAccessKey, c.PublicBaseURL} {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// S3Status is a log-friendly verdict on the S3 settings.
type S3Status struct {
	Level   string // INFO | WARN
	Code    string // s3_not_configured | s3_partial_config | s3_ready
	Missing []string
}

func (c S3Config) Status() S3Status {
	if c.isEmpty() {
		return S3Status{Level: "INFO", Code: "s3_not_configured"}
	}
	if missing := c.MissingRequired(); len(missing) > 0 {
		return S3Status{Level: "WARN", Code: "s3_partial_config", Missing: missing}
	}
	return S3Status{Level: "INFO", Code: "s3_ready"}
}

// String prints the settings for startup logs; secrets are reported as set/unset.
func (c S3Config) String() string {
	return fmt.Sprintf("endpoint=%s region=%s bucket=%s public_base_url=%s presign_ttl=%ds prefer_public_url=%t access_key_id=%s secret_access_key=%s",
		orDash(c.Endpoint),
		orDash(c.Region),
		orDash(c.Bucket),
		orDash(c.PublicBaseURL),
		c.PresignTTLSeconds,
		c.PreferPublicURL,
		setOrUnset(c.AccessKeyID),
		setOrUnset(c.SecretAccessKey),
	)
}

func orDash(v string) string {
	if v = strings.TrimSpace(v); v == "" {
		return "-"
	}
	return v
}

func setOrUnset(v string) string {
	if strings.TrimSpace(v) == "" {
		return "unset"
	}
	return "set"
}

// loadBlobConfig reads BLOB_MODE, BLOB_DIR, REPORTS_MODE and S3_*.
func loadBlobConfig() BlobConfig {
	reportsRaw := strings.TrimSpace(os.Getenv("REPORTS_MODE"))

	modes := []string{BlobModeLocal, BlobModeS3, BlobModeAuto, BlobModeFile}
	return BlobConfig{
		Mode:           oneOf("BLOB_MODE", modes...),
		Dir:            envString("BLOB_DIR", "./data/blobs"),
		ReportsMode:    oneOf("REPORTS_MODE", modes...),
		ReportsModeSet: reportsRaw != "",
		S3: S3Config{
			Endpoint:          envString("S3_ENDPOINT", ""),
			Region:            envString("S3_REGION", ""),
			Bucket:            envString("S3_BUCKET", ""),
			AccessKeyID:       envString("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey:   envString("S3_SECRET_ACCESS_KEY", ""),
			PublicBaseURL:     envString("S3_PUBLIC_BASE_URL", ""),
			PresignTTLSeconds: positiveInt("S3_PRESIGN_TTL_SECONDS", defaultPresignTTLSeconds),
			PreferPublicURL:   parseBoolEnv("S3_PREFER_PUBLIC_URL"),
		},
	}
}
