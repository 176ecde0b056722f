package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one normalized row from an uploaded file, parsed and
// account-resolved but not yet committed.
type Transaction struct {
	Name             string          `json:"name"`
	Amount           decimal.Decimal `json:"amount"` // signed: negative = expense
	Date             time.Time       `json:"date"`
	Kind             Kind            `json:"kind"`
	OriginalCategory string          `json:"originalCategory"`
	OriginalAccount  string          `json:"originalAccount,omitempty"`
	Description      string          `json:"description,omitempty"`

	// ResolvedCategoryID is empty while the row's category awaits mapping.
	ResolvedCategoryID string `json:"resolvedCategoryId,omitempty"`

	// AccountID is always set: the account is chosen once for the whole batch.
	AccountID string `json:"accountId"`

	// RowNumber is the 1-based line in the uploaded file (header = line 1).
	RowNumber int `json:"rowNumber"`
}

// TransactionRecord is a finalized transaction ready for insertion into the
// store. Credit-card and installment linkage stay empty for imported rows.
type TransactionRecord struct {
	ID            string
	AccountID     string
	CategoryID    string
	Name          string
	Description   string
	Amount        decimal.Decimal
	Kind          Kind
	Date          time.Time
	Status        string
	CreditCardID  string
	InstallmentOf string
	Fingerprint   string
}

// StatusCompleted marks imported transactions as settled.
const StatusCompleted = "completed"
