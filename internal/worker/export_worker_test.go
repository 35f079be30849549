package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"vibeledger/internal/amqp"
	"vibeledger/internal/core"
	"vibeledger/internal/ledger"
	"vibeledger/internal/log"
)

type fakeExportStore struct {
	records  map[string]core.Transaction
	exported map[string]bool
	markErr  error
}

func newFakeExportStore() *fakeExportStore {
	return &fakeExportStore{
		records:  make(map[string]core.Transaction),
		exported: make(map[string]bool),
	}
}

func (f *fakeExportStore) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	tx, ok := f.records[id]
	if !ok {
		return core.Transaction{}, ledger.ErrNotFound
	}
	return tx, nil
}

func (f *fakeExportStore) PendingExport(ctx context.Context, limit int) ([]core.Transaction, error) {
	var out []core.Transaction
	for id, tx := range f.records {
		if !f.exported[id] {
			out = append(out, tx)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeExportStore) MarkExported(ctx context.Context, id string) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.exported[id] = true
	return nil
}

type fakeWriter struct {
	rows []core.Transaction
	fail bool
}

func (f *fakeWriter) AppendRow(ctx context.Context, t core.Transaction) (string, error) {
	if f.fail {
		return "", errors.New("quota exceeded")
	}
	f.rows = append(f.rows, t)
	return "Transactions!A2:F2", nil
}

func sampleTx(id string) core.Transaction {
	return core.Transaction{
		ID:          id,
		Owner:       "user-1",
		Kind:        core.KindIncome,
		Category:    core.CategorySales,
		Amount:      core.Money{Cents: 2000},
		Description: "cake order",
		OccurredOn:  core.Today(),
		CreatedAt:   time.Now().UTC(),
	}
}

func TestHandleChangeMessageExportsAndMarks(t *testing.T) {
	store := newFakeExportStore()
	store.records["tx-1"] = sampleTx("tx-1")
	writer := &fakeWriter{}
	w := NewExportWorker(store, writer, 10, time.Minute, log.NewTestLogger())

	msg := amqp.NewTransactionChanged("tx-1", "user-1", "income", 2000)
	if err := w.HandleChangeMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleChangeMessage: %v", err)
	}

	if len(writer.rows) != 1 {
		t.Fatalf("expected 1 row written, got %d", len(writer.rows))
	}
	if !store.exported["tx-1"] {
		t.Error("transaction was not marked exported")
	}
}

func TestHandleChangeMessageMissingRecordIsDone(t *testing.T) {
	w := NewExportWorker(newFakeExportStore(), &fakeWriter{}, 10, time.Minute, log.NewTestLogger())

	msg := amqp.NewTransactionChanged("tx-ghost", "user-1", "income", 100)
	if err := w.HandleChangeMessage(context.Background(), msg); err != nil {
		t.Errorf("missing record should not error: %v", err)
	}
}

func TestHandleChangeMessageWriterFailureIsRetryable(t *testing.T) {
	store := newFakeExportStore()
	store.records["tx-1"] = sampleTx("tx-1")
	w := NewExportWorker(store, &fakeWriter{fail: true}, 10, time.Minute, log.NewTestLogger())

	msg := amqp.NewTransactionChanged("tx-1", "user-1", "income", 2000)
	if err := w.HandleChangeMessage(context.Background(), msg); err == nil {
		t.Error("expected an error so the message is redelivered")
	}
	if store.exported["tx-1"] {
		t.Error("failed export must not be marked done")
	}
}

func TestProcessPendingExportsBatch(t *testing.T) {
	store := newFakeExportStore()
	for _, id := range []string{"tx-1", "tx-2", "tx-3"} {
		store.records[id] = sampleTx(id)
	}
	store.exported["tx-3"] = true
	writer := &fakeWriter{}
	w := NewExportWorker(store, writer, 10, time.Minute, log.NewTestLogger())

	n, err := w.ProcessPending(context.Background())
	if err != nil {
		t.Fatalf("ProcessPending: %v", err)
	}
	if n != 2 {
		t.Errorf("exported %d, want 2", n)
	}
	if !store.exported["tx-1"] || !store.exported["tx-2"] {
		t.Error("pending transactions were not marked exported")
	}
}

func TestProcessPendingContinuesPastFailures(t *testing.T) {
	store := newFakeExportStore()
	store.records["tx-1"] = sampleTx("tx-1")
	store.markErr = errors.New("disk full")
	w := NewExportWorker(store, &fakeWriter{}, 10, time.Minute, log.NewTestLogger())

	n, err := w.ProcessPending(context.Background())
	if err != nil {
		t.Fatalf("ProcessPending should not fail outright: %v", err)
	}
	if n != 0 {
		t.Errorf("exported %d, want 0", n)
	}
}
