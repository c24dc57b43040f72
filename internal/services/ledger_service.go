package services

import (
	"context"
	"fmt"
	"log/slog"

	"ledger/internal/amqp"
	"ledger/internal/core"
)

// TransactionStore is the durable collection the ledger operates on. The
// SQLite repository implements it; tests substitute an in-memory fake.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
	Summarize(ctx context.Context) (core.Summary, error)
}

// EventPublisher notifies external consumers of ledger mutations.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, action string, id int64) error
}

// LedgerService validates and executes transaction operations against the
// store. It holds no state of its own.
type LedgerService struct {
	store  TransactionStore
	events EventPublisher
}

// NewLedgerService creates a ledger service. events may be nil, in which case
// mutations are not announced.
func NewLedgerService(store TransactionStore, events EventPublisher) *LedgerService {
	return &LedgerService{
		store:  store,
		events: events,
	}
}

// Create validates and persists a new transaction, returning it with the
// generated ID.
func (s *LedgerService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	t.ID = 0 // the store assigns identifiers

	created, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	s.publish(ctx, amqp.ActionCreated, created.ID)
	return created, nil
}

// List returns all stored transactions in insertion order.
func (s *LedgerService) List(ctx context.Context) ([]core.Transaction, error) {
	out, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

// GetByID returns the transaction matching id, or a NotFoundError.
func (s *LedgerService) GetByID(ctx context.Context, id int64) (core.Transaction, error) {
	t, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		if core.IsNotFound(err) {
			return core.Transaction{}, err
		}
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return t, nil
}

// Update replaces all mutable fields of the transaction matching id. The same
// presence validation as Create applies.
func (s *LedgerService) Update(ctx context.Context, id int64, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	t.ID = id

	updated, err := s.store.UpdateTransaction(ctx, t)
	if err != nil {
		if core.IsNotFound(err) {
			return core.Transaction{}, err
		}
		return core.Transaction{}, fmt.Errorf("update transaction %d: %w", id, err)
	}

	s.publish(ctx, amqp.ActionUpdated, id)
	return updated, nil
}

// Delete removes the transaction matching id.
func (s *LedgerService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		if core.IsNotFound(err) {
			return err
		}
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}

	s.publish(ctx, amqp.ActionDeleted, id)
	return nil
}

// publish announces a mutation. Failures are logged but never fail the
// operation: the write already succeeded locally.
func (s *LedgerService) publish(ctx context.Context, action string, id int64) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishLedgerEvent(ctx, action, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"action", action,
			"id", id,
			"error", err)
	}
}
