package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"vibeledger/internal/auth"
	"vibeledger/internal/core"
	"vibeledger/internal/ledger"
)

// MemoryStore is an in-process implementation of the persistence ports,
// used by tests and zero-config runs. It mirrors the SQLite semantics:
// IDs and timestamps are assigned on insert, listings are newest first.
type MemoryStore struct {
	mu           sync.RWMutex
	users        map[string]auth.User
	transactions map[string]core.Transaction
	seq          int64
}

var (
	_ ledger.Store   = (*MemoryStore)(nil)
	_ auth.UserStore = (*MemoryStore)(nil)
)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[string]auth.User),
		transactions: make(map[string]core.Transaction),
	}
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) CreateUser(ctx context.Context, u auth.User) (auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return auth.User{}, auth.ErrEmailTaken
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now().UTC()
	m.users[u.ID] = u
	return u, nil
}

func (m *MemoryStore) FindUserByEmail(ctx context.Context, email string) (auth.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return auth.User{}, ledger.ErrNotFound
}

func (m *MemoryStore) GetUser(ctx context.Context, id string) (auth.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return auth.User{}, ledger.ErrNotFound
	}
	return u, nil
}

func (m *MemoryStore) InsertTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t.ID = uuid.NewString()
	// Monotonic timestamps keep list order stable even when inserts land
	// within the same clock tick.
	m.seq++
	t.CreatedAt = time.Now().UTC().Add(time.Duration(m.seq) * time.Nanosecond)
	m.transactions[t.ID] = t
	return t, nil
}

func (m *MemoryStore) ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []core.Transaction
	for _, t := range m.transactions {
		if t.Owner == ownerID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryStore) CountTransactions(ctx context.Context, ownerID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, t := range m.transactions {
		if t.Owner == ownerID {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.transactions[id]
	if !ok {
		return core.Transaction{}, ledger.ErrNotFound
	}
	return t, nil
}
