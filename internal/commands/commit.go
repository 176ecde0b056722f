package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tamadeu/divi-import/internal/commit"
	"github.com/tamadeu/divi-import/internal/directory"
	"github.com/tamadeu/divi-import/internal/session"
)

func newCommitCommand(verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "commit",
		Short: "Insert the staged transactions and update balances",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(*verbose)
			if err != nil {
				return err
			}
			defer env.close()

			dir, err := directory.Load(cmd.Context(), env.db)
			if err != nil {
				return err
			}

			sess, err := session.Resume(env.stg, dir, env.log)
			if errors.Is(err, session.ErrNoImport) {
				fmt.Fprintln(cmd.OutOrStdout(), "No import in progress. Run 'divi-import parse' first.")
				return nil
			}
			if err != nil {
				return err
			}

			engine := commit.NewEngine(env.db, env.stg, env.log)
			result, err := sess.Commit(cmd.Context(), engine)
			if errors.Is(err, session.ErrInvalidTransition) || errors.Is(err, commit.ErrUnmappedCategories) {
				errorColor.Fprintln(cmd.OutOrStdout(), "Import is not ready: map the remaining categories first.")
				printBatchSummary(cmd.OutOrStdout(), sess.Batch())
				return err
			}
			if errors.Is(err, commit.ErrNothingToImport) {
				errorColor.Fprintln(cmd.OutOrStdout(), "Nothing to import.")
				for _, w := range sess.Batch().Errors {
					warnColor.Fprintf(cmd.OutOrStdout(), "  %s\n", w.Error())
				}
				return err
			}
			if err != nil {
				// The staged batch is preserved; a plain retry is safe.
				errorColor.Fprintln(cmd.OutOrStdout(), "Commit failed; the staged import was kept for retry.")
				return err
			}

			out := cmd.OutOrStdout()
			successColor.Fprintf(out, "Imported %d transactions into %s\n", result.Inserted, sess.Batch().AccountName)
			if result.Duplicates > 0 {
				warnColor.Fprintf(out, "%d rows look like previously imported transactions\n", result.Duplicates)
			}
			for _, w := range result.Warnings {
				warnColor.Fprintf(out, "  skipped %s\n", w.Error())
			}
			return nil
		},
	}
}
