package amqp

import (
	"testing"
	"time"
)

func TestTransactionChangedRoundTrip(t *testing.T) {
	msg := NewTransactionChanged("tx-1", "user-1", "income", 2000)

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	got, err := TransactionChangedFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}

	if got.ID != "tx-1" || got.Owner != "user-1" || got.Kind != "income" || got.AmountCents != 2000 {
		t.Errorf("unexpected event: %+v", got)
	}
	if got.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
	if time.Since(got.Timestamp) > time.Minute {
		t.Errorf("timestamp too old: %v", got.Timestamp)
	}
}

func TestTransactionChangedFromJSONRejectsGarbage(t *testing.T) {
	if _, err := TransactionChangedFromJSON([]byte("not json")); err == nil {
		t.Error("expected error for malformed payload")
	}
}
