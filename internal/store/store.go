// Package store is the persistence collaborator of the import pipeline: the
// workspace's accounts/categories directory and the transactions table, all
// scoped to one workspace and user.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/tamadeu/divi-import/internal/model"
)

// DB wraps the workspace's sqlite database.
type DB struct {
	db          *sql.DB
	workspaceID string
	userID      string
	log         zerolog.Logger
}

// Open opens (or creates) the database at path.
func Open(path, workspaceID, userID string, log zerolog.Logger) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return &DB{db: db, workspaceID: workspaceID, userID: userID, log: log}, nil
}

// Close closes the underlying database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Init creates the schema if it does not exist yet. Amounts and balances
// are stored as integer cents so balance updates stay exact.
func (d *DB) Init(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY,
			workspace_id TEXT NOT NULL,
			name TEXT NOT NULL,
			balance_cents INTEGER NOT NULL DEFAULT 0,
			UNIQUE (workspace_id, name)
		);`,

		`CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			workspace_id TEXT NOT NULL,
			name TEXT NOT NULL,
			kind TEXT NOT NULL CHECK (kind IN ('income', 'expense')),
			UNIQUE (workspace_id, name, kind)
		);`,

		`CREATE TABLE IF NOT EXISTS transactions (
			id TEXT PRIMARY KEY,
			workspace_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			account_id TEXT NOT NULL REFERENCES accounts(id),
			category_id TEXT NOT NULL REFERENCES categories(id),
			name TEXT NOT NULL,
			description TEXT,
			amount_cents INTEGER NOT NULL,
			kind TEXT NOT NULL,
			transaction_date DATE NOT NULL,
			status TEXT NOT NULL,
			credit_card_id TEXT,
			installment_of TEXT,
			fingerprint TEXT NOT NULL
		);`,

		`CREATE INDEX IF NOT EXISTS idx_transactions_fingerprint
			ON transactions (workspace_id, fingerprint);`,
	}

	for _, stmt := range statements {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

// ListAccounts returns the workspace's accounts ordered by name.
func (d *DB) ListAccounts(ctx context.Context) ([]model.Account, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, name, balance_cents FROM accounts WHERE workspace_id = ? ORDER BY name`,
		d.workspaceID)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		var cents int64
		if err := rows.Scan(&a.ID, &a.Name, &cents); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		a.Balance = fromCents(cents)
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// ListCategories returns the workspace's categories ordered by name.
func (d *DB) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, name, kind FROM categories WHERE workspace_id = ? ORDER BY name`,
		d.workspaceID)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Kind); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CreateAccount inserts a new account with a starting balance.
func (d *DB) CreateAccount(ctx context.Context, name string, balance decimal.Decimal) (model.Account, error) {
	a := model.Account{ID: uuid.NewString(), Name: name, Balance: balance}
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO accounts (id, workspace_id, name, balance_cents) VALUES (?, ?, ?, ?)`,
		a.ID, d.workspaceID, a.Name, toCents(balance))
	if err != nil {
		return model.Account{}, fmt.Errorf("creating account: %w", err)
	}
	return a, nil
}

// CreateCategory inserts a new category.
func (d *DB) CreateCategory(ctx context.Context, name string, kind model.Kind) (model.Category, error) {
	if !kind.Valid() {
		return model.Category{}, fmt.Errorf("invalid kind %q", kind)
	}
	c := model.Category{ID: uuid.NewString(), Name: name, Kind: kind}
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO categories (id, workspace_id, name, kind) VALUES (?, ?, ?, ?)`,
		c.ID, d.workspaceID, c.Name, c.Kind)
	if err != nil {
		return model.Category{}, fmt.Errorf("creating category: %w", err)
	}
	return c, nil
}

// InsertTransactions inserts all records in a single database transaction,
// tagged with the workspace and importing user.
func (d *DB) InsertTransactions(ctx context.Context, records []model.TransactionRecord) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO transactions
		(id, workspace_id, user_id, account_id, category_id, name, description,
		 amount_cents, kind, transaction_date, status, credit_card_id, installment_of, fingerprint)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.ExecContext(ctx,
			rec.ID, d.workspaceID, d.userID, rec.AccountID, rec.CategoryID,
			rec.Name, rec.Description, toCents(rec.Amount), rec.Kind,
			rec.Date.Format("2006-01-02"), rec.Status,
			nullable(rec.CreditCardID), nullable(rec.InstallmentOf), rec.Fingerprint)
		if err != nil {
			return fmt.Errorf("inserting transaction %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing insert: %w", err)
	}
	return nil
}

// AddToBalance applies an atomic increment to an account's balance.
func (d *DB) AddToBalance(ctx context.Context, accountID string, delta decimal.Decimal) error {
	res, err := d.db.ExecContext(ctx,
		`UPDATE accounts SET balance_cents = balance_cents + ? WHERE id = ? AND workspace_id = ?`,
		toCents(delta), accountID, d.workspaceID)
	if err != nil {
		return fmt.Errorf("updating balance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating balance: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("unknown account %q", accountID)
	}
	return nil
}

// ExistingFingerprints returns which of the given fingerprints already exist
// in the workspace's transactions.
func (d *DB) ExistingFingerprints(ctx context.Context, fingerprints []string) (map[string]bool, error) {
	seen := make(map[string]bool, len(fingerprints))
	if len(fingerprints) == 0 {
		return seen, nil
	}

	placeholders := strings.Repeat("?,", len(fingerprints))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, 0, len(fingerprints)+1)
	args = append(args, d.workspaceID)
	for _, fp := range fingerprints {
		args = append(args, fp)
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT DISTINCT fingerprint FROM transactions WHERE workspace_id = ? AND fingerprint IN (`+placeholders+`)`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("checking fingerprints: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			return nil, fmt.Errorf("scanning fingerprint: %w", err)
		}
		seen[fp] = true
	}
	return seen, rows.Err()
}

// nullable maps an empty string to NULL for optional columns.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func toCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

func fromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
