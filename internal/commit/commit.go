// Package commit turns a fully mapped import batch into stored transactions
// and balance updates, then releases the staged batch.
package commit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/tamadeu/divi-import/internal/model"
	"github.com/tamadeu/divi-import/internal/staging"
)

var (
	// ErrNoBatch means there is no staged batch to commit.
	ErrNoBatch = errors.New("no staged batch")

	// ErrUnmappedCategories means at least one missing category has not
	// been bound to an existing category yet.
	ErrUnmappedCategories = errors.New("unmapped categories remain")

	// ErrNothingToImport means the batch holds no valid transactions.
	ErrNothingToImport = errors.New("nothing to import")
)

// Store is the slice of the persistence layer the engine writes through.
// Insert and balance update are issued as separate calls; the store applies
// balance changes as atomic increments, never as absolute overwrites.
type Store interface {
	InsertTransactions(ctx context.Context, records []model.TransactionRecord) error
	AddToBalance(ctx context.Context, accountID string, delta decimal.Decimal) error
	ExistingFingerprints(ctx context.Context, fingerprints []string) (map[string]bool, error)
}

// Result summarizes a successful commit.
type Result struct {
	Inserted int

	// Duplicates counts inserted rows whose fingerprint already existed in
	// the store, usually a sign the same file was imported before. Advisory
	// only; identical legitimate rows are allowed.
	Duplicates int

	// Warnings carries the parse-time row errors. Those rows were excluded
	// before staging, so they never roll an import back.
	Warnings []model.RowError
}

// Engine commits batches against a store. The store scopes every write to
// the importing user and workspace.
type Engine struct {
	store   Store
	staging *staging.Store
	log     zerolog.Logger
}

// NewEngine creates a commit engine.
func NewEngine(store Store, stg *staging.Store, log zerolog.Logger) *Engine {
	return &Engine{store: store, staging: stg, log: log}
}

// Commit inserts the batch's transactions and applies each affected
// account's balance delta, then clears the staged batch. On a store failure
// the staged batch is left untouched so the user can retry without
// re-uploading or re-mapping; nothing is retried automatically.
func (e *Engine) Commit(ctx context.Context, batch *model.ImportBatch) (*Result, error) {
	if batch == nil {
		return nil, ErrNoBatch
	}
	if !batch.FullyMapped() {
		return nil, ErrUnmappedCategories
	}
	if len(batch.Transactions) == 0 {
		if len(batch.Errors) > 0 {
			return nil, fmt.Errorf("%w: all %d rows failed to parse", ErrNothingToImport, len(batch.Errors))
		}
		return nil, ErrNothingToImport
	}

	records := make([]model.TransactionRecord, 0, len(batch.Transactions))
	fingerprints := make([]string, 0, len(batch.Transactions))
	for _, txn := range batch.Transactions {
		categoryID := batch.FinalCategoryID(txn)
		if categoryID == "" {
			// Guarded by FullyMapped above; never insert a malformed row.
			e.log.Error().Int("row", txn.RowNumber).Str("category", txn.OriginalCategory).
				Msg("transaction with no final category dropped")
			continue
		}

		fp := Fingerprint(txn.Date, txn.Amount, txn.Name)
		fingerprints = append(fingerprints, fp)
		records = append(records, model.TransactionRecord{
			ID:          uuid.NewString(),
			AccountID:   txn.AccountID,
			CategoryID:  categoryID,
			Name:        txn.Name,
			Description: txn.Description,
			Amount:      txn.Amount,
			Kind:        txn.Kind,
			Date:        txn.Date,
			Status:      model.StatusCompleted,
			Fingerprint: fp,
		})
	}
	if len(records) == 0 {
		return nil, ErrNothingToImport
	}

	// Advisory duplicate check; a failure here must not block the import.
	duplicates := 0
	if seen, err := e.store.ExistingFingerprints(ctx, fingerprints); err != nil {
		e.log.Warn().Err(err).Msg("duplicate check skipped")
	} else {
		for _, fp := range fingerprints {
			if seen[fp] {
				duplicates++
			}
		}
	}

	if err := e.store.InsertTransactions(ctx, records); err != nil {
		return nil, fmt.Errorf("inserting transactions: %w", err)
	}

	// Balance deltas accumulate additively from the committed rows, never
	// from a balance captured at parse time.
	deltas := make(map[string]decimal.Decimal)
	var order []string
	for _, rec := range records {
		if _, ok := deltas[rec.AccountID]; !ok {
			order = append(order, rec.AccountID)
		}
		deltas[rec.AccountID] = deltas[rec.AccountID].Add(rec.Amount)
	}
	for _, accountID := range order {
		if err := e.store.AddToBalance(ctx, accountID, deltas[accountID]); err != nil {
			return nil, fmt.Errorf("updating balance of account %s: %w", accountID, err)
		}
	}

	if err := e.staging.Clear(); err != nil {
		// The import is in the store; a stale staged batch would re-import
		// it on retry, so this is not best-effort.
		return nil, fmt.Errorf("import committed but clearing staged batch failed: %w", err)
	}

	e.log.Info().Int("inserted", len(records)).Int("duplicates", duplicates).
		Str("account", batch.AccountID).Msg("import committed")

	return &Result{
		Inserted:   len(records),
		Duplicates: duplicates,
		Warnings:   batch.Errors,
	}, nil
}

// Fingerprint derives a stable identity for a transaction from its date,
// amount and normalized name: SHA256("{date}|{amount}|{lower(name)}").
func Fingerprint(date time.Time, amount decimal.Decimal, name string) string {
	input := fmt.Sprintf("%s|%s|%s",
		date.Format("2006-01-02"),
		amount.StringFixed(2),
		strings.ToLower(strings.TrimSpace(name)))
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
