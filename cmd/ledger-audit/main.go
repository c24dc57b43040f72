// ledger-audit tails the ledger event queue and logs an audit trail of every
// mutation, resolving created and updated records against the store.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"ledger/internal/amqp"
	"ledger/internal/config"
	"ledger/internal/core"
	"ledger/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the audit worker")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting ledger audit worker", "queue", cfg.AMQPQueue)

	err = client.ConsumeLedgerEvents(ctx, func(event *amqp.LedgerEvent) error {
		switch event.Action {
		case amqp.ActionDeleted:
			logger.Info("Audit: transaction deleted", "id", event.ID, "at", event.Timestamp)
			return nil
		default:
			t, err := repo.GetTransaction(ctx, event.ID)
			if err != nil {
				if core.IsNotFound(err) {
					// The record may have been deleted since the event was
					// published; log what we know and move on.
					logger.Warn("Audit: transaction no longer present", "action", event.Action, "id", event.ID)
					return nil
				}
				return err
			}
			logger.Info("Audit: transaction mutated",
				"action", event.Action,
				"id", t.ID,
				"type", t.Type,
				"category", t.Category,
				"amount", t.Amount,
				"date", t.Date.String(),
				"at", event.Timestamp)
			return nil
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Audit worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Audit worker stopped gracefully")
}
