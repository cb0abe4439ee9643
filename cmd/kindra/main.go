package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"kindra/internal/amqp"
	"kindra/internal/config"
	apphttp "kindra/internal/http"
	"kindra/internal/log"
	"kindra/internal/refresh"
	gsheet "kindra/internal/sheets/google"
	"kindra/internal/source"
	"kindra/internal/storage"
	"kindra/internal/store"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	fetcher, err := source.New(source.Config{
		Kind:          source.Kind(cfg.DataSource),
		BaseURL:       cfg.UpstreamBaseURL,
		ServiceToken:  cfg.UpstreamServiceToken,
		DataDirectory: cfg.DataDirectory,
	}, logger.Logger)
	if err != nil {
		logger.Error("Failed to initialize data source", log.FieldError, err.Error(), "source", cfg.DataSource)
		os.Exit(1)
	}

	st := store.New()

	// Snapshot persistence is optional; without it the service starts cold
	// and waits for the first refresh.
	coordOpts := []refresh.Option{refresh.WithTimeout(cfg.RefreshTimeout)}
	var repo *storage.SQLiteRepository
	if cfg.SQLiteDBPath != "" {
		repo, err = storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite repository", log.FieldError, err.Error(), "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer repo.Close()
		coordOpts = append(coordOpts, refresh.WithPersister(repo))

		restoreCtx, restoreCancel := context.WithTimeout(context.Background(), 30*time.Second)
		restored, err := repo.LoadInto(restoreCtx, st)
		restoreCancel()
		if err != nil {
			logger.Warn("Warm start restore failed", log.FieldOperation, log.OpRestore, log.FieldError, err.Error())
		} else if restored > 0 {
			logger.Info("Restored snapshot from disk", log.FieldOperation, log.OpRestore, "collections", restored)
		}
	}

	coordinator := refresh.New(fetcher, st, logger.Logger, coordOpts...)

	serverOpts := []apphttp.Option{
		apphttp.WithViewCache(cfg.CacheSize, cfg.CacheTTL),
	}

	// With a broker configured, refresh requests are queued for the worker
	// instead of running in-process.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
			os.Exit(1)
		}
		defer amqpClient.Close()
		serverOpts = append(serverOpts, apphttp.WithPublisher(amqpClient))
	}

	if cfg.ExportEnabled() {
		sheetsClient, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err.Error())
			os.Exit(1)
		}
		serverOpts = append(serverOpts, apphttp.WithReportWriter(sheetsClient))
		logger.Info("Report export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Report export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	srv := apphttp.NewServer(":"+cfg.Port, st, coordinator, logger, serverOpts...)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Warm the snapshot right away rather than waiting for the schedule.
	coordinator.TriggerAsync()

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown, "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
		}
		cancel()
	}()

	logger.Info("Starting kindra server",
		log.FieldOperation, log.OpStartup,
		"port", cfg.Port,
		"source", cfg.DataSource,
		"persistence", cfg.SQLiteDBPath != "",
		"broker", cfg.AMQPURL != "")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
