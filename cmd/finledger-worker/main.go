package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"finledger/internal/backend"
	"finledger/internal/config"
	applog "finledger/internal/log"
	"finledger/internal/worker"
)

func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	logger.Info("Starting finledger worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	be, err := backend.New(cfg, logger.WithComponent(applog.ComponentBackend))
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err)
		os.Exit(1)
	}
	defer be.Close()

	// Unlike the API server, the worker is pointless without a queue.
	if be.Events == nil {
		logger.Error("AMQP is required for the worker; set AMQP_URL")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	notifier := worker.NewNotifier(be.Store, be.Events, logger, cfg.ReminderScanInterval)

	logger.Info("Worker running", "scan_interval", cfg.ReminderScanInterval.String())
	if err := notifier.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", applog.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
