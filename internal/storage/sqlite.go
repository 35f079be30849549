// Package storage implements the persistence collaborator over SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"vibeledger/internal/auth"
	"vibeledger/internal/core"
	"vibeledger/internal/ledger"
	"vibeledger/internal/log"
)

type SQLiteStore struct {
	db     *sql.DB
	logger *log.Logger
}

var (
	_ ledger.Store   = (*SQLiteStore)(nil)
	_ auth.UserStore = (*SQLiteStore)(nil)
)

func NewSQLiteStore(dbPath string, logger *log.Logger) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger.WithComponent(log.ComponentStorage)}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateUser implements auth.UserStore. The ID and creation timestamp are
// assigned here.
func (s *SQLiteStore) CreateUser(ctx context.Context, u auth.User) (auth.User, error) {
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now().UTC()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, display_name, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.DisplayName, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return auth.User{}, auth.ErrEmailTaken
		}
		return auth.User{}, fmt.Errorf("insert user: %w", err)
	}

	s.logger.InfoContext(ctx, "user row created", log.FieldOwner, u.ID, log.FieldEmail, u.Email)
	return u, nil
}

// FindUserByEmail implements auth.UserStore.
func (s *SQLiteStore) FindUserByEmail(ctx context.Context, email string) (auth.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, display_name, created_at
		 FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// GetUser implements auth.UserStore.
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (auth.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, display_name, created_at
		 FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (auth.User, error) {
	var u auth.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.User{}, ledger.ErrNotFound
	}
	if err != nil {
		return auth.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

// InsertTransaction implements ledger.TransactionWriter. The record must
// already be validated; ID and CreatedAt are assigned here.
func (s *SQLiteStore) InsertTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, owner_id, kind, category, amount_cents, description, occurred_on, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Owner, string(t.Kind), string(t.Category), t.Amount.Cents,
		t.Description, t.OccurredOn.String(), t.CreatedAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "transaction row saved",
		log.FieldTxID, t.ID,
		log.FieldOwner, t.Owner,
		log.FieldKind, string(t.Kind),
		log.FieldAmountCents, t.Amount.Cents)
	return t, nil
}

// ListTransactions implements ledger.TransactionLister, newest first.
func (s *SQLiteStore) ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, kind, category, amount_cents, description, occurred_on, created_at
		 FROM transactions WHERE owner_id = ?
		 ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// GetTransaction implements ledger.TransactionGetter.
func (s *SQLiteStore) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, kind, category, amount_cents, description, occurred_on, created_at
		 FROM transactions WHERE id = ?`, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
		}
		return core.Transaction{}, ledger.ErrNotFound
	}
	return scanTransaction(rows)
}

// CountTransactions implements ledger.TransactionCounter.
func (s *SQLiteStore) CountTransactions(ctx context.Context, ownerID string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE owner_id = ?`, ownerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

// PendingExport lists transactions not yet mirrored to the export sheet,
// oldest first. Backup path for the export worker when AMQP messages are
// lost.
func (s *SQLiteStore) PendingExport(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, kind, category, amount_cents, description, occurred_on, created_at
		 FROM transactions WHERE exported_at IS NULL
		 ORDER BY created_at ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending export: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending export: %w", err)
	}
	return out, nil
}

// MarkExported records that a transaction reached the export sheet.
func (s *SQLiteStore) MarkExported(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET exported_at = ? WHERE id = ?`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t          core.Transaction
		kind       string
		category   string
		occurredOn string
	)
	err := row.Scan(&t.ID, &t.Owner, &kind, &category, &t.Amount.Cents,
		&t.Description, &occurredOn, &t.CreatedAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	t.Kind = core.Kind(kind)
	t.Category = core.Category(category)
	d, err := core.ParseDate(occurredOn)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse occurred_on %q: %w", occurredOn, err)
	}
	t.OccurredOn = d
	return t, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
