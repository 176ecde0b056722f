package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tamadeu/divi-import/internal/directory"
	"github.com/tamadeu/divi-import/internal/model"
)

// Expected header columns. Only the first five are required; the account
// column is read but overridden by the account selected before upload.
const (
	colDate        = "date"
	colName        = "name"
	colAmount      = "amount"
	colType        = "type"
	colCategory    = "category"
	colAccount     = "account"
	colDescription = "description"
)

const dateFormat = "2006-01-02"

var requiredColumns = []string{colDate, colName, colAmount, colType, colCategory}

// Options configure a single parse.
type Options struct {
	// Delimiter between fields. Zero means comma.
	Delimiter rune
}

// Parse reads a delimited file with a header row and builds an ImportBatch
// for the given account: valid rows become candidate transactions, invalid
// rows become row errors, and category names with no match in the directory
// become deduplicated missing-category entries.
//
// Parse is pure over the input and the directory. A header-only or empty
// file yields a batch with zero transactions and zero errors.
func Parse(r io.Reader, dir *directory.Directory, accountID string, opts Options) (*model.ImportBatch, error) {
	account, ok := dir.Account(accountID)
	if !ok {
		return nil, fmt.Errorf("unknown account %q", accountID)
	}

	cr := csv.NewReader(r)
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading import file: %w", err)
	}

	batch := &model.ImportBatch{
		AccountID:          account.ID,
		AccountName:        account.Name,
		BalanceProjections: map[string]decimal.Decimal{account.ID: account.Balance},
		CreatedAt:          time.Now(),
	}
	if len(records) == 0 {
		return batch, nil
	}

	columns, err := indexHeader(records[0])
	if err != nil {
		return nil, err
	}

	sum := decimal.Zero
	for i, rec := range records[1:] {
		rowNumber := i + 2 // header is line 1, rows are 1-based
		row := rowFields(columns, rec)

		txn, rowErr := parseRow(row, rowNumber, account.ID)
		if rowErr != nil {
			batch.Errors = append(batch.Errors, *rowErr)
			continue
		}

		if cat, ok := dir.CategoryByName(txn.OriginalCategory, txn.Kind); ok {
			txn.ResolvedCategoryID = cat.ID
		} else {
			batch.AddMissing(txn.OriginalCategory, txn.Kind)
		}

		sum = sum.Add(txn.Amount)
		batch.Transactions = append(batch.Transactions, txn)
	}

	batch.BalanceProjections[account.ID] = account.Balance.Add(sum)
	return batch, nil
}

// indexHeader maps column names to field positions. The required columns
// must all be present.
func indexHeader(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("missing required column %q in header", name)
		}
	}
	return columns, nil
}

// rowFields extracts a record into a name -> trimmed value map. Short rows
// simply leave the trailing columns empty.
func rowFields(columns map[string]int, rec []string) map[string]string {
	row := make(map[string]string, len(columns))
	for name, i := range columns {
		if i < len(rec) {
			row[name] = strings.TrimSpace(rec[i])
		}
	}
	return row
}

// parseRow validates a single data row. User-facing messages follow the
// product locale (pt-BR); the first failed check wins and drops the row.
func parseRow(row map[string]string, rowNumber int, accountID string) (model.Transaction, *model.RowError) {
	fail := func(format string, args ...any) (model.Transaction, *model.RowError) {
		return model.Transaction{}, &model.RowError{
			RowNumber: rowNumber,
			Message:   fmt.Sprintf(format, args...),
		}
	}

	var missing []string
	for _, name := range requiredColumns {
		if row[name] == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fail("campos obrigatórios ausentes: %s", strings.Join(missing, ", "))
	}

	// Amounts may use a decimal comma; they must be positive, the sign is
	// derived from the type.
	amount, err := decimal.NewFromString(strings.Replace(row[colAmount], ",", ".", 1))
	if err != nil || !amount.IsPositive() {
		return fail("valor inválido: %q", row[colAmount])
	}
	// Amounts are stored in cents; anything finer cannot round-trip.
	if !amount.Equal(amount.Round(2)) {
		return fail("valor inválido: %q", row[colAmount])
	}

	kind := model.Kind(row[colType])
	if !kind.Valid() {
		return fail("tipo inválido: %q (esperado income ou expense)", row[colType])
	}

	date, err := time.Parse(dateFormat, row[colDate])
	if err != nil {
		return fail("data inválida: %q", row[colDate])
	}

	if kind == model.KindExpense {
		amount = amount.Neg()
	}

	return model.Transaction{
		Name:             row[colName],
		Amount:           amount,
		Date:             date,
		Kind:             kind,
		OriginalCategory: row[colCategory],
		OriginalAccount:  row[colAccount],
		Description:      row[colDescription],
		AccountID:        accountID,
		RowNumber:        rowNumber,
	}, nil
}
