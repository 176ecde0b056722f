package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/tamadeu/divi-import/internal/model"
)

var (
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
)

// printBatchSummary renders the staged batch the way the confirmation
// screen would: counts, row errors, unmapped categories and the projected
// balance for the selected account.
func printBatchSummary(w io.Writer, batch *model.ImportBatch) {
	fmt.Fprintf(w, "Account: %s\n", batch.AccountName)
	fmt.Fprintf(w, "Transactions: %d\n", len(batch.Transactions))

	if len(batch.Errors) > 0 {
		warnColor.Fprintf(w, "Rows with errors: %d\n", len(batch.Errors))
		for _, e := range batch.Errors {
			warnColor.Fprintf(w, "  %s\n", e.Error())
		}
	}

	unmapped := 0
	for _, m := range batch.MissingCategories {
		if m.MappedTo == "" {
			unmapped++
		}
	}
	if len(batch.MissingCategories) > 0 {
		fmt.Fprintf(w, "Missing categories: %d (%d unmapped)\n", len(batch.MissingCategories), unmapped)
		for _, m := range batch.MissingCategories {
			if m.MappedTo == "" {
				errorColor.Fprintf(w, "  %s (%s) -> unmapped\n", m.Name, m.Kind)
			} else {
				fmt.Fprintf(w, "  %s (%s) -> %s\n", m.Name, m.Kind, m.MappedTo)
			}
		}
	}

	if projected, ok := batch.BalanceProjections[batch.AccountID]; ok {
		fmt.Fprintf(w, "Projected balance: %s\n", projected.StringFixed(2))
	}

	if unmapped > 0 {
		warnColor.Fprintln(w, "Map the remaining categories before committing.")
	} else if len(batch.Transactions) > 0 {
		successColor.Fprintln(w, "Ready to commit.")
	}
}
