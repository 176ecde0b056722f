package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RowError describes a single row of the uploaded file that could not be
// parsed. Row errors never block the rest of the batch.
type RowError struct {
	RowNumber int    `json:"rowNumber"`
	Message   string `json:"message"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("linha %d: %s", e.RowNumber, e.Message)
}

// MissingCategory is one distinct (name, kind) pair from the uploaded file
// that matched no known category. MappedToID stays empty until the user
// binds it to an existing category.
type MissingCategory struct {
	Name     string `json:"name"`
	Kind     Kind   `json:"kind"`
	MappedTo string `json:"mappedToId,omitempty"`
}

// ImportBatch is the unit staged between parse and commit: the parsed
// candidate transactions, the row errors, the categories still awaiting a
// mapping, and the projected balance per affected account.
type ImportBatch struct {
	Transactions      []Transaction     `json:"transactions"`
	Errors            []RowError        `json:"errors"`
	MissingCategories []MissingCategory `json:"missingCategories"`

	// BalanceProjections maps account ID to the projected new balance:
	// the balance read at parse time plus the batch's signed amounts.
	BalanceProjections map[string]decimal.Decimal `json:"accountBalanceDeltas"`

	AccountID   string    `json:"selectedAccountId"`
	AccountName string    `json:"selectedAccountName"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AddMissing records a category name that matched nothing in the workspace.
// The same (name, kind) pair is recorded once no matter how many rows
// reference it; names are compared case-insensitively, matching lookup.
func (b *ImportBatch) AddMissing(name string, kind Kind) {
	if b.Missing(name, kind) != nil {
		return
	}
	b.MissingCategories = append(b.MissingCategories, MissingCategory{Name: name, Kind: kind})
}

// Missing returns the missing-category entry for (name, kind), or nil.
func (b *ImportBatch) Missing(name string, kind Kind) *MissingCategory {
	for i := range b.MissingCategories {
		m := &b.MissingCategories[i]
		if m.Kind == kind && strings.EqualFold(m.Name, name) {
			return m
		}
	}
	return nil
}

// FullyMapped reports whether every missing category has been bound to an
// existing category. A batch is commit-ready only when this holds.
func (b *ImportBatch) FullyMapped() bool {
	for _, m := range b.MissingCategories {
		if m.MappedTo == "" {
			return false
		}
	}
	return true
}

// FinalCategoryID returns the category the transaction will be committed
// under: its resolved category if the parse matched one, otherwise the
// mapping chosen for its original category name. Empty means unmapped.
func (b *ImportBatch) FinalCategoryID(t Transaction) string {
	if t.ResolvedCategoryID != "" {
		return t.ResolvedCategoryID
	}
	if m := b.Missing(t.OriginalCategory, t.Kind); m != nil {
		return m.MappedTo
	}
	return ""
}
