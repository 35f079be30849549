package ledger

import (
	"context"
	"fmt"

	"vibeledger/internal/amqp"
	"vibeledger/internal/core"
	"vibeledger/internal/log"
	syncpkg "vibeledger/internal/sync"
)

// Publisher is the subset of the broker client the service needs.
type Publisher interface {
	PublishTransactionChanged(msg *amqp.TransactionChanged) error
}

// Metrics is the aggregate view the dashboard renders: today's totals
// alongside the all-time ones.
type Metrics struct {
	Today   core.Summary
	AllTime core.Summary
}

// Service records and reads transactions for authenticated owners. The
// broker client and hub are both optional; when absent the corresponding
// notification path is simply skipped.
type Service struct {
	store  Store
	broker Publisher
	hub    *syncpkg.Hub
	logger *log.Logger
}

// NewService wires a ledger service. broker and hub may be nil.
func NewService(store Store, broker Publisher, hub *syncpkg.Hub, logger *log.Logger) *Service {
	return &Service{
		store:  store,
		broker: broker,
		hub:    hub,
		logger: logger.WithComponent(log.ComponentLedger),
	}
}

// Record validates and persists a transaction, then notifies listeners.
// Notification failures are logged and swallowed: the record is already
// durable and clients recover on their next refresh.
func (s *Service) Record(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	saved, err := s.store.InsertTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "transaction recorded",
		log.FieldTxID, saved.ID,
		log.FieldOwner, saved.Owner,
		log.FieldKind, string(saved.Kind),
		log.FieldAmountCents, saved.Amount.Cents,
	)

	s.notify(ctx, saved)
	return saved, nil
}

func (s *Service) notify(ctx context.Context, tx core.Transaction) {
	if s.hub != nil {
		s.hub.Publish(syncpkg.Event{Owner: tx.Owner, TxID: tx.ID, Kind: string(tx.Kind)})
	}
	if s.broker != nil {
		msg := amqp.NewTransactionChanged(tx.ID, tx.Owner, string(tx.Kind), tx.Amount.Cents)
		if err := s.broker.PublishTransactionChanged(msg); err != nil {
			s.logger.WarnContext(ctx, "failed to publish change event",
				log.FieldTxID, tx.ID, log.FieldError, err)
		}
	}
}

// List returns all of an owner's transactions, newest first.
func (s *Service) List(ctx context.Context, owner string) ([]core.Transaction, error) {
	records, err := s.store.ListTransactions(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return records, nil
}

// Recent returns at most limit of an owner's newest transactions.
func (s *Service) Recent(ctx context.Context, owner string, limit int) ([]core.Transaction, error) {
	records, err := s.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Get fetches a single transaction, scoped to its owner. A record owned
// by someone else is indistinguishable from a missing one.
func (s *Service) Get(ctx context.Context, owner, id string) (core.Transaction, error) {
	tx, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if tx.Owner != owner {
		return core.Transaction{}, ErrNotFound
	}
	return tx, nil
}

// Count reports how many transactions the owner has recorded.
func (s *Service) Count(ctx context.Context, owner string) (int64, error) {
	return s.store.CountTransactions(ctx, owner)
}

// Metrics computes today's and all-time summaries from the owner's full
// history.
func (s *Service) Metrics(ctx context.Context, owner string) (Metrics, error) {
	records, err := s.List(ctx, owner)
	if err != nil {
		return Metrics{}, err
	}
	return Metrics{
		Today:   core.SummarizeOn(records, core.Today()),
		AllTime: core.Summarize(records),
	}, nil
}

// CategoryBreakdown returns per-category totals for one kind, largest
// first.
func (s *Service) CategoryBreakdown(ctx context.Context, owner string, kind core.Kind) ([]core.CategoryAmount, error) {
	records, err := s.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	return core.SummarizeByCategory(records, kind), nil
}
