package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fintrack/internal/config"
	"fintrack/internal/core"
	apphttp "fintrack/internal/http"
	"fintrack/internal/ledger"
	"fintrack/internal/ledger/memory"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: applog.ComponentApp,
	})
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", applog.FieldError, err.Error())
		os.Exit(1)
	}

	repo, err := openRepository(cfg, logger)
	if err != nil {
		logger.Error("Failed to open data backend", applog.FieldError, err.Error(), applog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Error("Failed to close data backend", applog.FieldError, err.Error())
		}
	}()

	mode := core.StrictCategories
	if cfg.CategoryResolution == "lenient" {
		mode = core.LenientCategories
	}

	analytics := services.NewAnalyticsService(repo, repo, mode)
	dashboard := services.NewDashboardService(repo, cfg.DefaultBudgetAmount)

	srv := apphttp.NewServer(apphttp.Options{
		Addr:         ":" + cfg.Port,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}, analytics, dashboard, repo, logger)
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", applog.FieldOperation, applog.OpShutdown, "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err.Error())
		}
		cancel()
	}()

	logger.Info("Starting fintrack server",
		applog.FieldOperation, applog.OpStartup,
		"port", cfg.Port, applog.FieldBackend, cfg.DataBackend, "category_resolution", cfg.CategoryResolution)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

// openRepository wires the configured storage backend.
func openRepository(cfg *config.Config, logger *applog.Logger) (ledger.Repository, error) {
	switch cfg.DataBackend {
	case "sqlite":
		repo, err := storage.OpenSQLite(cfg.SQLiteDBPath)
		if err != nil {
			return nil, err
		}
		logger.Info("Initialized sqlite backend", applog.FieldBackend, cfg.DataBackend, "path", cfg.SQLiteDBPath)
		return repo, nil
	case "postgres":
		repo, err := storage.OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		logger.Info("Initialized postgres backend", applog.FieldBackend, cfg.DataBackend)
		return repo, nil
	default:
		logger.Info("Initialized memory backend", applog.FieldBackend, cfg.DataBackend)
		return memory.New(), nil
	}
}
