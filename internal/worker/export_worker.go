// Package worker runs the background export pipeline: transactions
// recorded by the server are mirrored to a Google spreadsheet, driven by
// broker events with a periodic catch-up scan behind them.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vibeledger/internal/amqp"
	"vibeledger/internal/export"
	"vibeledger/internal/ledger"
	"vibeledger/internal/log"

	"vibeledger/internal/core"
)

// ExportStore is the storage surface the worker needs: fetch by ID for
// event-driven exports, plus the pending scan for catch-up.
type ExportStore interface {
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	PendingExport(ctx context.Context, limit int) ([]core.Transaction, error)
	MarkExported(ctx context.Context, id string) error
}

// ExportWorker mirrors transactions into a spreadsheet.
type ExportWorker struct {
	store     ExportStore
	writer    export.RowWriter
	batchSize int
	interval  time.Duration
	logger    *log.Logger
}

func NewExportWorker(store ExportStore, writer export.RowWriter, batchSize int, interval time.Duration, logger *log.Logger) *ExportWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &ExportWorker{
		store:     store,
		writer:    writer,
		batchSize: batchSize,
		interval:  interval,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// HandleChangeMessage exports the transaction named by a broker event.
// A record that has vanished since the event was published is treated as
// done; any other failure is returned so the message is redelivered.
func (w *ExportWorker) HandleChangeMessage(ctx context.Context, msg *amqp.TransactionChanged) error {
	tx, err := w.store.GetTransaction(ctx, msg.ID)
	if errors.Is(err, ledger.ErrNotFound) {
		w.logger.WarnContext(ctx, "transaction gone before export", log.FieldTxID, msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}
	return w.exportOne(ctx, tx)
}

func (w *ExportWorker) exportOne(ctx context.Context, tx core.Transaction) error {
	ref, err := w.writer.AppendRow(ctx, tx)
	if err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	if err := w.store.MarkExported(ctx, tx.ID); err != nil {
		// The row is in the sheet; a failed mark means the catch-up scan
		// may write it again. Duplicated rows beat lost ones.
		return fmt.Errorf("mark exported: %w", err)
	}
	w.logger.InfoContext(ctx, "transaction exported",
		log.FieldOperation, log.OpExportRow,
		log.FieldTxID, tx.ID,
		"sheet_ref", ref)
	return nil
}

// ProcessPending exports one batch of not-yet-exported transactions and
// reports how many succeeded.
func (w *ExportWorker) ProcessPending(ctx context.Context) (int, error) {
	pending, err := w.store.PendingExport(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("scan pending: %w", err)
	}

	exported := 0
	for _, tx := range pending {
		if err := w.exportOne(ctx, tx); err != nil {
			w.logger.ErrorContext(ctx, "export failed, will retry on next scan",
				log.FieldTxID, tx.ID, log.FieldError, err)
			continue
		}
		exported++
	}
	return exported, nil
}

// Run consumes broker events when a client is provided and scans for
// pending rows on a timer, until ctx is cancelled. The scan also covers
// transactions recorded while the broker was unreachable.
func (w *ExportWorker) Run(ctx context.Context, client *amqp.Client) error {
	if client != nil {
		go func() {
			err := client.Consume(ctx, func(msg *amqp.TransactionChanged) error {
				return w.HandleChangeMessage(ctx, msg)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				w.logger.ErrorContext(ctx, "broker consumer stopped", log.FieldError, err)
			}
		}()
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := w.ProcessPending(ctx)
			if err != nil {
				w.logger.ErrorContext(ctx, "pending scan failed", log.FieldError, err)
				continue
			}
			if n > 0 {
				w.logger.InfoContext(ctx, "pending scan complete", "exported", n)
			}
		}
	}
}
