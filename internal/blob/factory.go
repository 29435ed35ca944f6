package blob

import (
	"context"
	"fmt"
	"strings"
	"time"

	appcfg "github.com/fdg312/calorie-diary/internal/config"
)

type Logger interface {
	Printf(format string, v ...any)
}

const s3InitTimeout = 10 * time.Second

// NewBlobStore builds the object store for BLOB_MODE local|s3|auto|file and
// reports the mode actually in effect. Local mode returns a nil store: diary
// state and reports then stay in the configured storage and archive endpoints
// are disabled. Auto picks S3 only when it is fully configured.
func NewBlobStore(cfg appcfg.BlobConfig, logger Logger) (Store, string, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))

	switch mode {
	case "", appcfg.BlobModeLocal:
		logf(logger, "INFO blob: mode=local (forced)")
		return nil, appcfg.BlobModeLocal, nil

	case appcfg.BlobModeFile:
		store, err := NewFileStore(cfg.Dir)
		if err != nil {
			logf(logger, "FATAL blob.file: init_failed=%v", err)
			return nil, "", fmt.Errorf("BLOB_MODE=file init failed: %w", err)
		}
		logf(logger, "INFO blob: mode=file dir=%s", cfg.Dir)
		return store, appcfg.BlobModeFile, nil

	case appcfg.BlobModeAuto:
		if !cfg.S3.IsConfigured() {
			st := cfg.S3.Status()
			logf(logger, "%s blob.s3: code=%s missing=%v", st.Level, st.Code, st.Missing)
			logf(logger, "INFO blob: mode=local (auto, S3 not configured)")
			return nil, appcfg.BlobModeLocal, nil
		}
		store, err := openS3(cfg.S3, logger)
		if err != nil {
			logf(logger, "WARN blob.s3: init_failed=%q, fallback=local", err.Error())
			return nil, appcfg.BlobModeLocal, nil
		}
		logf(logger, "INFO blob: mode=s3 (auto, configured)")
		return store, appcfg.BlobModeS3, nil

	case appcfg.BlobModeS3:
		if missing := cfg.S3.MissingRequired(); len(missing) > 0 {
			logf(logger, "FATAL blob.s3: code=s3_config_incomplete missing=%v", missing)
			return nil, "", fmt.Errorf("BLOB_MODE=s3 requested but missing required config: %s", strings.Join(missing, ", "))
		}
		store, err := openS3(cfg.S3, logger)
		if err != nil {
			logf(logger, "FATAL blob.s3: init_failed=%v", err)
			return nil, "", fmt.Errorf("BLOB_MODE=s3 init failed: %w", err)
		}
		logf(logger, "INFO blob: mode=s3 (forced)")
		return store, appcfg.BlobModeS3, nil

	default:
		return nil, "", fmt.Errorf("unsupported blob mode: %s", mode)
	}
}

func openS3(cfg appcfg.S3Config, logger Logger) (*S3Store, error) {
	logf(logger, "INFO blob.s3: %s", cfg)

	ctx, cancel := context.WithTimeout(context.Background(), s3InitTimeout)
	defer cancel()
	return NewS3Store(ctx, cfg)
}

func logf(logger Logger, format string, v ...any) {
	if logger == nil {
		return
	}
	logger.Printf(format, v...)
}
