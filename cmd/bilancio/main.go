package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"bilancio/internal/config"
	"bilancio/internal/export/sheets"
	apphttp "bilancio/internal/http"
	"bilancio/internal/log"
	"bilancio/internal/quota"
	"bilancio/internal/tools"
	"bilancio/internal/ynab"
)

func main() {
	// Local development convenience; in deployment the environment is
	// already populated.
	_ = godotenv.Load()

	cfg := config.Load()

	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: log.ComponentApp,
	})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", log.FieldError, err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ledger, err := quota.NewLedger(cfg.QuotaDBPath)
	if err != nil {
		logger.Error("Failed to open quota ledger", log.FieldError, err.Error(), "path", cfg.QuotaDBPath)
		os.Exit(1)
	}
	defer func() {
		if err := ledger.Close(); err != nil {
			logger.Warn("Quota ledger close failed", log.FieldError, err.Error())
		}
	}()

	scheduler, err := quota.NewScheduler(ctx, ledger, cfg.QuotaPerHour)
	if err != nil {
		logger.Error("Failed to start quota scheduler", log.FieldError, err.Error())
		os.Exit(1)
	}

	client := ynab.New(cfg.APIBaseURL, cfg.AccessToken, ynab.Options{
		Timeout: cfg.RequestTimeout,
		Retry: ynab.RetryPolicy{
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  cfg.BackoffBase,
			MaxDelay:   cfg.BackoffMax,
		},
		Scheduler: scheduler,
		PageSize:  cfg.PageSize,
	})

	var exporter tools.SummaryExporter
	if cfg.ExportEnabled() {
		exp, err := sheets.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Error("Failed to initialize Sheets exporter", log.FieldError, err.Error())
			os.Exit(1)
		}
		exporter = exp
		logger.Info("Sheets export enabled", "sheet", cfg.GoogleSheetName)
	}

	service := tools.NewService(tools.NewClientAPI(client), cfg.CacheTTL, exporter)
	registry := tools.NewRegistry(service)

	srv := apphttp.NewServer(":"+cfg.Port, registry)
	srv.ReadTimeout = 15 * time.Second
	srv.WriteTimeout = 120 * time.Second // tool calls may wait on quota
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
		}
		cancel()
	}()

	logger.Info("Starting bilancio server",
		log.FieldOperation, log.OpStartup,
		"port", cfg.Port,
		"quota_per_hour", cfg.QuotaPerHour,
		"tools", len(registry.Names()))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully", log.FieldOperation, log.OpShutdown)
}
