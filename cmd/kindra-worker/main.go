package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"kindra/internal/amqp"
	"kindra/internal/config"
	"kindra/internal/log"
	"kindra/internal/refresh"
	"kindra/internal/source"
	"kindra/internal/storage"
	"kindra/internal/store"
	"kindra/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{Component: log.ComponentWorker})
	log.SetDefault(logger)

	logger.Info("Starting kindra-worker", log.FieldOperation, log.OpStartup)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	if cfg.AMQPURL == "" && cfg.RefreshSchedule == "" {
		logger.Error("Nothing to do - set AMQP_URL, REFRESH_SCHEDULE or both")
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

	// The worker's store is write-through scratch space; persistence is the
	// output the server processes read on warm start.
	coordOpts := []refresh.Option{refresh.WithTimeout(cfg.RefreshTimeout)}
	if cfg.SQLiteDBPath != "" {
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite repository", log.FieldError, err.Error(), "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer repo.Close()
		coordOpts = append(coordOpts, refresh.WithPersister(repo))
	} else {
		logger.Info("Snapshot persistence disabled - no SQLITE_DB_PATH provided")
	}

	coordinator := refresh.New(fetcher, st, logger.Logger, coordOpts...)
	refreshWorker := worker.NewRefreshWorker(coordinator, cfg.RefreshSchedule, logger.Logger)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
			os.Exit(1)
		}
		defer amqpClient.Close()

		go func() {
			handler := func(msg *amqp.RefreshRequestMessage) error {
				return refreshWorker.HandleRefreshRequest(ctx, msg)
			}
			if err := amqpClient.ConsumeRefreshRequests(ctx, handler); err != nil {
				if !errors.Is(err, context.Canceled) {
					logger.Error("Message consumption failed", log.FieldError, err.Error())
				}
				cancel()
			}
		}()
	} else {
		logger.Info("Skipping AMQP message consumption - no broker configured")
	}

	if err := refreshWorker.StartSchedule(ctx); err != nil {
		logger.Error("Failed to start refresh schedule", log.FieldError, err.Error(), "schedule", cfg.RefreshSchedule)
		os.Exit(1)
	}

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown, "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	cancel()

	// StopSchedule waits for any in-flight scheduled refresh to finish.
	refreshWorker.StopSchedule()

	logger.Info("Worker stopped gracefully")
}
