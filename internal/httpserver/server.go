package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/fdg312/calorie-diary/internal/agent"
	"github.com/fdg312/calorie-diary/internal/ai"
	"github.com/fdg312/calorie-diary/internal/auth"
	"github.com/fdg312/calorie-diary/internal/backup"
	"github.com/fdg312/calorie-diary/internal/blob"
	"github.com/fdg312/calorie-diary/internal/calendar"
	"github.com/fdg312/calorie-diary/internal/config"
	"github.com/fdg312/calorie-diary/internal/datekey"
	"github.com/fdg312/calorie-diary/internal/diary"
	"github.com/fdg312/calorie-diary/internal/entries"
	"github.com/fdg312/calorie-diary/internal/goals"
	"github.com/fdg312/calorie-diary/internal/lookup"
	"github.com/fdg312/calorie-diary/internal/lookup/openfoodfacts"
	"github.com/fdg312/calorie-diary/internal/reports"
	"github.com/fdg312/calorie-diary/internal/storage"
	"github.com/fdg312/calorie-diary/internal/storage/blobstate"
	"github.com/fdg312/calorie-diary/internal/storage/memory"
	"github.com/fdg312/calorie-diary/internal/storage/postgres"
	"github.com/fdg312/calorie-diary/internal/templates"
)

// Server представляет HTTP сервер
type Server struct {
	config         *config.Config
	mux            *http.ServeMux
	storage        storage.Storage
	registry       *diary.Registry
	authMiddleware *auth.Middleware
}

// New создаёт новый HTTP сервер
func New(cfg *config.Config) *Server {
	s := &Server{
		config: cfg,
		mux:    http.NewServeMux(),
	}

	// Инициализируем storage
	s.initStorage()

	baseBlobStore, reportsBlobStore, reportsMode := s.initBlobStores()
	s.initRegistry(baseBlobStore)

	// Регистрируем маршруты
	s.routes(baseBlobStore, reportsBlobStore, reportsMode)
	return s
}

// initStorage инициализирует storage (Memory или Postgres) по DIARY_STORAGE.
// В режиме blob Postgres/Memory хранит только метаданные отчётов.
func (s *Server) initStorage() {
	mode := strings.ToLower(strings.TrimSpace(s.config.Diary.Storage))
	if mode == config.DiaryStorageMemory || s.config.DatabaseURL == "" {
		if mode == config.DiaryStoragePostgres {
			log.Println("WARN storage: DIARY_STORAGE=postgres without DATABASE_URL, fallback to memory")
		}
		log.Println("INFO storage: using in-memory storage")
		s.storage = memory.New()
		return
	}

	log.Println("INFO storage: connecting to PostgreSQL...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pgStorage, err := postgres.New(ctx, s.config.DatabaseURL)
	if err != nil {
		log.Printf("WARN storage: postgres connect failed: %v", err)
		log.Println("WARN storage: fallback to in-memory storage")
		s.storage = memory.New()
		return
	}
	log.Println("INFO storage: PostgreSQL connected")
	s.storage = pgStorage
}

// initBlobStores initializes the base blob store and the reports store.
// Diary blobs and backup archives follow BLOB_MODE, reports may override via REPORTS_MODE.
func (s *Server) initBlobStores() (baseStore blob.Store, reportsStore blob.Store, reportsMode string) {
	baseCfg := s.config.Blob
	baseCfg.ReportsModeSet = false
	baseCfg.ReportsMode = baseCfg.Mode

	log.Printf("INFO blob: initializing base store (BLOB_MODE=%s)", baseCfg.Mode)
	baseStore, baseMode, err := blob.NewBlobStore(baseCfg, log.Default())
	if err != nil {
		log.Fatalf("FATAL blob: failed to initialize base store: %v", err)
	}
	log.Printf("INFO blob: base blob mode: %s", baseMode)

	effectiveReportsMode := s.config.Blob.EffectiveReportsMode()
	if !s.config.Blob.ReportsModeSet || effectiveReportsMode == s.config.Blob.Mode {
		log.Printf("INFO blob: reports blob mode: %s (same as base)", baseMode)
		return baseStore, baseStore, baseMode
	}

	log.Printf("INFO blob: initializing reports store (REPORTS_MODE=%s, override from BLOB_MODE=%s)", effectiveReportsMode, s.config.Blob.Mode)
	reportsCfg := s.config.Blob
	reportsCfg.Mode = effectiveReportsMode
	reportsCfg.ReportsModeSet = false
	reportsCfg.ReportsMode = effectiveReportsMode

	reportsBlobStore, resolvedMode, err := blob.NewBlobStore(reportsCfg, log.Default())
	if err != nil {
		log.Fatalf("FATAL blob: failed to initialize reports store: %v", err)
	}

	if resolvedMode == baseMode {
		log.Printf("INFO blob: reports blob mode: %s (resolved to same as base, reusing store)", resolvedMode)
		return baseStore, baseStore, baseMode
	}

	log.Printf("INFO blob: reports blob mode: %s (separate store)", resolvedMode)
	return baseStore, reportsBlobStore, resolvedMode
}

// initRegistry выбирает backend дневника и собирает реестр владельцев.
func (s *Server) initRegistry(baseStore blob.Store) {
	var backend diary.Backend = s.storage
	if strings.EqualFold(strings.TrimSpace(s.config.Diary.Storage), config.DiaryStorageBlob) {
		if baseStore == nil {
			log.Println("WARN diary: DIARY_STORAGE=blob requires BLOB_MODE=s3|file, fallback to storage")
		} else {
			log.Println("INFO diary: state kept in blob store under diaries/")
			backend = blobstate.New(baseStore, blobstate.DefaultPrefix)
		}
	}

	policy := diary.PolicyFor(s.config.Diary.Variant)
	if s.config.Diary.GoalMin > 0 {
		policy.GoalMin = s.config.Diary.GoalMin
	}
	if s.config.Diary.GoalMax > 0 {
		policy.GoalMax = s.config.Diary.GoalMax
	}
	log.Printf("INFO diary: variant=%s goal_range=%d..%d", nonEmpty(s.config.Diary.Variant, diary.VariantClassic), policy.GoalMin, policy.GoalMax)

	s.registry = diary.NewRegistry(backend, policy, datekey.SystemClock(s.config.Diary.Location()), log.Default())
}

// routes регистрирует маршруты
func (s *Server) routes(baseBlobStore, reportsBlobStore blob.Store, reportsMode string) {
	// Health check (no auth required)
	s.mux.HandleFunc("/healthz", s.handleHealthz)

	// Auth API (no auth required)
	authService := auth.NewService(s.config)
	authHandler := auth.NewHandlers(authService)
	s.authMiddleware = auth.NewMiddleware(s.config, authService)

	s.mux.HandleFunc("POST /v1/auth/install", authHandler.HandleInstall)
	s.mux.HandleFunc("POST /v1/auth/refresh", authHandler.HandleRefresh)

	// Days & entries
	entriesHandler := entries.NewHandler(entries.NewService(s.registry))
	s.mux.HandleFunc("GET /v1/days/{date}", entriesHandler.HandleGetDay)
	s.mux.HandleFunc("DELETE /v1/days/{date}", entriesHandler.HandleClearDay)
	s.mux.HandleFunc("POST /v1/days/{date}/entries", entriesHandler.HandleCreateEntry)
	s.mux.HandleFunc("PATCH /v1/days/{date}/entries/{id}", entriesHandler.HandleUpdateEntry)
	s.mux.HandleFunc("DELETE /v1/days/{date}/entries/{id}", entriesHandler.HandleDeleteEntry)

	// Goals
	goalsHandler := goals.NewHandler(goals.NewService(s.registry))
	s.mux.HandleFunc("GET /v1/goals", goalsHandler.HandleGet)
	s.mux.HandleFunc("PUT /v1/goals", goalsHandler.HandlePut)
	s.mux.HandleFunc("POST /v1/goals/reset", goalsHandler.HandleReset)

	// Templates
	templatesHandler := templates.NewHandler(templates.NewService(s.registry))
	s.mux.HandleFunc("GET /v1/templates", templatesHandler.HandleList)
	s.mux.HandleFunc("POST /v1/templates", templatesHandler.HandleCreate)
	s.mux.HandleFunc("PATCH /v1/templates/{id}", templatesHandler.HandleUpdate)
	s.mux.HandleFunc("DELETE /v1/templates/{id}", templatesHandler.HandleDelete)
	s.mux.HandleFunc("POST /v1/templates/{id}/apply", templatesHandler.HandleApply)

	// Calendar, streak, history, navigation
	calendarHandler := calendar.NewHandler(calendar.NewService(s.registry))
	s.mux.HandleFunc("GET /v1/calendar", calendarHandler.HandleCalendar)
	s.mux.HandleFunc("GET /v1/streak", calendarHandler.HandleStreak)
	s.mux.HandleFunc("GET /v1/history", calendarHandler.HandleHistory)
	s.mux.HandleFunc("GET /v1/navigate", calendarHandler.HandleNavigate)

	// Backup
	backupHandler := backup.NewHandler(backup.NewService(s.registry, baseBlobStore, s.config.Blob.S3.PresignTTLSeconds))
	s.mux.HandleFunc("GET /v1/backup", backupHandler.HandleExport)
	s.mux.HandleFunc("POST /v1/backup", backupHandler.HandleImport)
	s.mux.HandleFunc("POST /v1/backup/archive", backupHandler.HandleArchive)

	// Barcode lookup (Open Food Facts)
	offClient := openfoodfacts.New(
		s.config.Lookup.BaseURL,
		time.Duration(s.config.Lookup.TimeoutSeconds)*time.Second,
		s.config.Lookup.RPS,
		s.config.Lookup.UserAgent,
	)
	lookupHandler := lookup.NewHandler(lookup.NewService(offClient, log.Default()))
	s.mux.HandleFunc("GET /v1/lookup/barcode/{code}", lookupHandler.HandleBarcode)

	// AI proposals
	agentHandler := agent.NewHandler(agent.NewService(s.registry, ai.NewProvider(s.config, log.Default()), log.Default()))
	s.mux.HandleFunc("POST /v1/agent/propose", agentHandler.HandlePropose)
	s.mux.HandleFunc("POST /v1/agent/confirm", agentHandler.HandleConfirm)
	s.mux.HandleFunc("POST /api/agent", agentHandler.HandleStateless)

	// Reports
	reportsService := reports.NewService(
		s.storage.GetReportsStorage(),
		s.registry,
		reportsBlobStore,
		reports.ServiceConfig{
			MaxRangeDays:      s.config.ReportsMaxRangeDays,
			PresignTTL:        s.config.Blob.S3.PresignTTLSeconds,
			PublicBaseURL:     s.config.Blob.S3.PublicBaseURL,
			PreferPublicURL:   s.config.Blob.S3.PreferPublicURL,
			RedirectDownloads: reportsMode == config.BlobModeS3,
		},
	)
	reportsHandler := reports.NewHandlers(reportsService)
	s.mux.HandleFunc("POST /v1/reports", reportsHandler.HandleCreate)
	s.mux.HandleFunc("GET /v1/reports", reportsHandler.HandleList)
	s.mux.HandleFunc("GET /v1/reports/{id}/download", reportsHandler.HandleDownload)
	s.mux.HandleFunc("DELETE /v1/reports/{id}", reportsHandler.HandleDelete)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
	})
}

// Handler собирает цепочку middleware (внешний первым): CORS → Rate Limit → Auth → Timezone → Router
func (s *Server) Handler() http.Handler {
	var handler http.Handler = TimezoneMiddleware(s.mux)
	if s.authMiddleware != nil {
		handler = s.authMiddleware.Wrap(handler)
	}
	handler = RateLimitMiddleware(s.config, handler)
	handler = CORSMiddleware(s.config, handler)
	return handler
}

const shutdownTimeout = 10 * time.Second

// Run слушает порт до отмены ctx, затем дожидается активных запросов
// и закрывает storage.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("INFO server: listening on http://localhost%s (diary: /v1/days/today, health: /healthz)", addr)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		s.Close()
		return err
	case <-ctx.Done():
	}

	log.Printf("INFO server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	if cerr := s.Close(); err == nil {
		err = cerr
	}
	return err
}

// Close закрывает storage и освобождает ресурсы
func (s *Server) Close() error {
	if s.storage != nil {
		return s.storage.Close()
	}
	return nil
}

func nonEmpty(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
