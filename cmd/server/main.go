package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/jimdaga/chapter-dash/internal/auth"
	"github.com/jimdaga/chapter-dash/internal/config"
	"github.com/jimdaga/chapter-dash/internal/dashboard"
	"github.com/jimdaga/chapter-dash/internal/database"
	"github.com/jimdaga/chapter-dash/internal/events"
	"github.com/jimdaga/chapter-dash/internal/health"
	"github.com/jimdaga/chapter-dash/internal/kv"
	"github.com/jimdaga/chapter-dash/internal/logging"
	"github.com/jimdaga/chapter-dash/internal/metrics"
	"github.com/jimdaga/chapter-dash/internal/models"
	"github.com/jimdaga/chapter-dash/internal/session"
	"github.com/jimdaga/chapter-dash/internal/worker"
	"gorm.io/gorm"
)

const sessionName = "chapterdash_session"

func main() {
	if err := run(); err != nil {
		slog.Error("Exiting", "error", err)
		os.Exit(1)
	}
}

// run wires and runs the process. Deferred cleanup happens before main exits.
func run() error {
	cfg := config.Load()
	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	db, err := openDatabase(cfg, logger)
	if err != nil {
		return fmt.Errorf("database unavailable: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
	}()

	// "server worker" runs only the background catalog sync
	if len(os.Args) > 1 && os.Args[1] == "worker" {
		return runWorker(cfg, db, logger)
	}
	return runServer(cfg, db, logger)
}

// openDatabase connects and migrates when DATABASE_URL is set. A nil DB means
// the in-memory catalog and directory are used.
func openDatabase(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory catalog and accounts")
		return nil, nil
	}

	db, err := database.Init(cfg.DatabaseURL, cfg.LogLevel == "debug")
	if err != nil {
		return nil, err
	}
	if err := database.RunMigrations(db); err != nil {
		database.Close(db)
		return nil, err
	}
	if !cfg.IsProduction() {
		if err := database.SeedDevData(context.Background(), db, time.Now()); err != nil {
			logger.Warn("Failed to seed dev data", "error", err)
		}
	}
	return db, nil
}

func runWorker(cfg *config.Config, db *gorm.DB, logger *slog.Logger) error {
	if db == nil || cfg.RedisURL == "" || cfg.CatalogManifest == "" {
		return errors.New("worker mode requires DATABASE_URL, REDIS_URL and CATALOG_MANIFEST")
	}

	stopScheduler, err := worker.StartScheduler(cfg, logger)
	if err != nil {
		return err
	}
	defer stopScheduler()

	return worker.Run(cfg, db, logger)
}

// startBackground runs the embedded worker and scheduler when Redis, a database
// and a manifest are all configured. Without Redis the manifest is synced once inline.
func startBackground(cfg *config.Config, db *gorm.DB, logger *slog.Logger) (stop func()) {
	stop = func() {}
	if db == nil || cfg.CatalogManifest == "" {
		return stop
	}

	if cfg.RedisURL == "" {
		manifest, err := events.LoadManifest(cfg.CatalogManifest)
		if err != nil {
			logger.Error("Failed to load catalog manifest", "error", err)
			return stop
		}
		run, err := events.SyncCatalog(context.Background(), db, manifest, cfg.CatalogManifest)
		if err != nil {
			metrics.ObserveCatalogSync(models.CatalogSyncStatusFailed)
			logger.Error("Failed to sync catalog", "error", err)
			return stop
		}
		metrics.ObserveCatalogSync(run.Status)
		return stop
	}

	stopWorker, err := worker.Start(cfg, db, logger)
	if err != nil {
		logger.Error("Failed to start worker", "error", err)
		return stop
	}
	stopScheduler, err := worker.StartScheduler(cfg, logger)
	if err != nil {
		logger.Error("Failed to start scheduler", "error", err)
		stopWorker()
		return stop
	}
	if err := worker.InitClient(cfg.RedisURL); err != nil {
		logger.Error("Failed to init task client", "error", err)
	} else if err := worker.EnqueueSyncCatalog(cfg.CatalogManifest); err != nil {
		logger.Warn("Failed to enqueue startup catalog sync", "error", err)
	}

	return func() {
		stopScheduler()
		stopWorker()
		worker.CloseClient()
	}
}

func runServer(cfg *config.Config, db *gorm.DB, logger *slog.Logger) error {
	var (
		catalog   events.Catalog
		directory session.Directory
	)
	if db != nil {
		catalog = events.NewDBCatalog(db)
		directory = session.NewDBDirectory(db)
	} else {
		dir, err := session.NewKVDirectory(kv.NewMemoryStore())
		if err != nil {
			return err
		}
		if err := dir.Put(context.Background(), []models.Account{database.DevAccount(time.Now())}); err != nil {
			return err
		}
		catalog = events.NewStaticCatalog(events.SampleEvents())
		directory = dir
	}

	var prefs dashboard.PreferenceStoreFunc
	if cfg.RedisURL != "" {
		rdb, err := kv.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		prefs = dashboard.RedisPreferences(kv.NewRedisStore(rdb, "chapterdash:"))
	}

	stopBackground := startBackground(cfg, db, logger)
	defer stopBackground()

	policy := events.DefaultPolicy()
	policy.RegistrationCount = cfg.RegistrationCount
	policy.UpcomingEnd = cfg.UpcomingWindowEnd
	policy.OngoingDuration = cfg.OngoingDuration
	policy.Location = cfg.Location()

	service := dashboard.NewService(catalog, dashboard.Options{
		Policy:      policy,
		TimelineCap: cfg.TimelineCap,
		Logger:      logger,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.MetricsEnabled {
		r.Use(metrics.Middleware())
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	r.GET("/health", gin.WrapF(health.Handler))

	googleEnabled := auth.InitProviders(cfg, logger)
	auth.RegisterRoutes(r, auth.NewHandlers(directory, googleEnabled, logger), !cfg.IsProduction())

	protected := r.Group("/")
	protected.Use(auth.RequireAuth())
	dashboard.RegisterRoutes(protected, dashboard.NewHandler(service, directory, prefs, nil, logger))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
