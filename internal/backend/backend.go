// Package backend wires a configured store and event publisher for the
// engine, selecting the implementation from config.
package backend

import (
	"fmt"

	"finledger/internal/amqp"
	"finledger/internal/config"
	"finledger/internal/ledger"
	"finledger/internal/ledger/memory"
	"finledger/internal/log"
	"finledger/internal/storage"
)

// Backend bundles the selected store with the optional AMQP client.
type Backend struct {
	Store  ledger.Store
	Events *amqp.Client // nil when AMQP is not configured or unreachable

	cleanup []func() error
}

// New builds the backend named by cfg.DataBackend. AMQP is best effort: a
// failed connection logs a warning and disables events instead of aborting
// startup.
func New(cfg *config.Config, logger *log.Logger) (*Backend, error) {
	b := &Backend{}

	switch cfg.DataBackend {
	case "sqlite":
		store, err := storage.NewSQLiteLedger(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite ledger: %w", err)
		}
		b.Store = store
		b.cleanup = append(b.cleanup, store.Close)
		logger.Info("Initialized sqlite backend", "db_path", cfg.SQLiteDBPath)

	case "memory":
		b.Store = memory.New()
		logger.Info("Initialized memory backend")

	default:
		return nil, fmt.Errorf("unsupported data backend: %s", cfg.DataBackend)
	}

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			b.Events = client
			b.cleanup = append(b.cleanup, client.Close)
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	return b, nil
}

// Close releases backend resources in reverse initialization order.
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.cleanup) - 1; i >= 0; i-- {
		if err := b.cleanup[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close backend: %v", errs)
	}
	return nil
}
