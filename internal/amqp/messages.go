package amqp

import (
	"encoding/json"
	"time"
)

// TransactionChanged announces that a transaction was created. It carries
// only identifiers and the few fields listeners need to decide whether to
// recompute; consumers fetch the full record from storage when they need
// more.
type TransactionChanged struct {
	ID          string    `json:"id"`
	Owner       string    `json:"owner"`
	Kind        string    `json:"kind"`
	AmountCents int64     `json:"amount_cents"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewTransactionChanged builds a change event stamped with the current
// time.
func NewTransactionChanged(id, owner, kind string, amountCents int64) *TransactionChanged {
	return &TransactionChanged{
		ID:          id,
		Owner:       owner,
		Kind:        kind,
		AmountCents: amountCents,
		Timestamp:   time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes.
func (m *TransactionChanged) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionChangedFromJSON parses an event from JSON bytes.
func TransactionChangedFromJSON(data []byte) (*TransactionChanged, error) {
	var msg TransactionChanged
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
