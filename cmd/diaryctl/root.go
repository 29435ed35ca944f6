package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fdg312/calorie-diary/internal/blob"
	"github.com/fdg312/calorie-diary/internal/config"
	"github.com/fdg312/calorie-diary/internal/datekey"
	"github.com/fdg312/calorie-diary/internal/diary"
	"github.com/fdg312/calorie-diary/internal/lookup"
	"github.com/fdg312/calorie-diary/internal/lookup/openfoodfacts"
	"github.com/fdg312/calorie-diary/internal/userctx"
)

// The CLI always works on the single local diary.
const owner = userctx.DefaultOwnerID

// app is what every subcommand runs against once flags are parsed.
type app struct {
	cfg      *config.CLIConfig
	store    *blob.FileStore
	registry *diary.Registry
	lookup   *lookup.Service
}

// fileBackend keeps the diary as one object of a FileStore.
type fileBackend struct {
	store *blob.FileStore
	key   string
}

func (f fileBackend) LoadDiary(ctx context.Context, _ string) ([]byte, error) {
	data, err := f.store.GetObject(ctx, f.key)
	if errors.Is(err, blob.ErrObjectNotFound) {
		return nil, nil
	}
	return data, err
}

func (f fileBackend) SaveDiary(ctx context.Context, _ string, data []byte) error {
	_, err := f.store.PutObject(ctx, f.key, data, "application/json")
	return err
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var configPath, dataFile string

	root := &cobra.Command{
		Use:           "diaryctl",
		Short:         "diaryctl keeps a calorie diary from your terminal",
		Long:          "diaryctl logs food, goals and templates into a local JSON diary and shows days, calendars and streaks.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(configPath, dataFile)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultCLIConfigPath(), "Path to YAML config")
	root.PersistentFlags().StringVar(&dataFile, "data", "", "Path to diary JSON (overrides data_file)")

	root.AddCommand(
		newDayCmd(a),
		newAddCmd(a),
		newRmCmd(a),
		newClearCmd(a),
		newGoalCmd(a),
		newTemplateCmd(a),
		newBackupCmd(a),
		newLookupCmd(a),
		newCalendarCmd(a),
		newStreakCmd(a),
		newHistoryCmd(a),
	)
	return root
}

func (a *app) open(configPath, dataFile string) error {
	cfg, err := config.LoadCLIConfig(configPath)
	if err != nil {
		return err
	}
	if dataFile != "" {
		cfg.DataFile = dataFile
	}
	if strings.TrimSpace(cfg.DataFile) == "" {
		return fmt.Errorf("no diary file configured (set data_file or --data)")
	}

	store, err := blob.NewFileStore(filepath.Dir(cfg.DataFile))
	if err != nil {
		return err
	}
	backend := fileBackend{store: store, key: filepath.Base(cfg.DataFile)}

	loc := time.Local
	if tz := strings.TrimSpace(cfg.Timezone); tz != "" {
		if loc, err = time.LoadLocation(tz); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", tz, err)
		}
	}

	a.cfg = cfg
	a.store = store
	a.registry = diary.NewRegistry(backend, diary.PolicyFor(cfg.Variant), datekey.SystemClock(loc), log.Default())
	a.lookup = lookup.NewService(
		openfoodfacts.New(cfg.Lookup.BaseURL, time.Duration(cfg.Lookup.TimeoutSeconds)*time.Second, cfg.Lookup.RPS, "calorie-diary-cli/1.0"),
		log.Default(),
	)
	return nil
}

func parseCalories(value string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid calories %q", value)
	}
	return v, nil
}

// describe turns service errors into one-line CLI messages.
func describe(err error) error {
	var ve *diary.ValidationError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ve):
		return errors.New(ve.Error())
	case errors.Is(err, diary.ErrInvalidDate):
		return fmt.Errorf("invalid date (expected YYYY-MM-DD)")
	default:
		return err
	}
}

func optionalArg(args []string, def string) string {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return args[0]
	}
	return def
}
