package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	api2 "github.com/karehub/volunteer-match-service/src/internal/api"
	"github.com/karehub/volunteer-match-service/src/internal/auth"
	"github.com/karehub/volunteer-match-service/src/internal/config"
	"github.com/karehub/volunteer-match-service/src/internal/logging"
	"github.com/karehub/volunteer-match-service/src/internal/service"
	"github.com/karehub/volunteer-match-service/src/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := logging.NewLogger(cfg.Env, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	sugar := logger.Sugar()

	db, err := connectDBWithRetry(cfg.DatabaseURL, 15, 2*time.Second, sugar)
	if err != nil {
		sugar.Fatalf("failed to connect to db: %v", err)
	}
	defer func(db *sqlx.DB) {
		if err := db.Close(); err != nil {
			sugar.Errorf("failed to close db: %v", err)
		}
	}(db)

	if err := runMigrations(cfg.DatabaseURL, cfg.MigrationsDir, sugar); err != nil {
		sugar.Fatalf("migrations failed: %v", err)
	}
	sugar.Info("migrations applied")

	repos := store.NewRepositories(db, logger)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	hasher := auth.BcryptHasher{}
	svc := service.NewService(repos, logger, tokens, hasher, service.Options{
		Production:        cfg.Production(),
		ExposeResetTokens: cfg.ExposeResetTokens,
		ResetTokenTTL:     cfg.ResetTokenTTL,
	})
	h := api2.NewHandler(svc, logger)

	r := chi.NewRouter()
	r.Use(api2.RequestIDMiddleware, api2.LoggerMiddleware(logger), api2.Recoverer)
	api2.RegisterRoutes(r, h, tokens)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	runnerCtx, stopRunner := context.WithCancel(context.Background())
	defer stopRunner()
	go reportRunner(runnerCtx, svc, cfg.ReportRunnerInterval, sugar)

	go func() {
		sugar.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	sugar.Infof("shutting down server")
	stopRunner()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		sugar.Fatalf("server forced to shutdown: %v", err)
	}
	sugar.Info("server stopped")
}

// reportRunner periodically advances due scheduled reports until ctx ends.
func reportRunner(ctx context.Context, svc *service.Service, interval time.Duration, sugar *zap.SugaredLogger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if err := svc.RunDueReports(ctx, now.UTC()); err != nil {
				sugar.Warnf("report runner: %v", err)
			}
		}
	}
}

func connectDBWithRetry(dsn string, attempts int, delay time.Duration, sugar *zap.SugaredLogger) (*sqlx.DB, error) {
	var db *sql.DB
	var err error

	for i := 0; i < attempts; i++ {
		db, err = sql.Open("postgres", dsn)
		if err == nil {
			if err = db.Ping(); err == nil {
				return sqlx.NewDb(db, "postgres"), nil
			}
		}
		sugar.Warnf("db ping error: %v (attempt %d/%d)", err, i+1, attempts)
		time.Sleep(delay)
	}
	return nil, fmt.Errorf("db connect failed: %w", err)
}

func runMigrations(dsn, migrationsDir string, sugar *zap.SugaredLogger) error {
	sugar.Infof("running migrations from %s", migrationsDir)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("migration open db: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://"+migrationsDir,
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("migration init: %w", err)
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up: %w", err)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		sugar.Info("no new migrations, already up to date")
	}

	return nil
}
