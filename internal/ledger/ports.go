package ledger

import (
	"context"
	"errors"

	"vibeledger/internal/core"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Ports for the persistence collaborator. The storage package implements
// them over SQLite; the memory store mirrors them for tests.
type (
	// TransactionWriter persists a validated transaction, assigning its
	// ID and creation timestamp.
	TransactionWriter interface {
		InsertTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	}

	// TransactionLister returns one owner's transactions, newest first.
	TransactionLister interface {
		ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error)
	}

	// TransactionGetter fetches a single transaction by ID.
	TransactionGetter interface {
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	}

	// TransactionCounter reports how many records one owner has.
	TransactionCounter interface {
		CountTransactions(ctx context.Context, ownerID string) (int64, error)
	}

	// Store is the full persistence surface the ledger service needs.
	Store interface {
		TransactionWriter
		TransactionLister
		TransactionGetter
		TransactionCounter
	}
)
