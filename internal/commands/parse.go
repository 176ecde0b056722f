package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tamadeu/divi-import/internal/directory"
	"github.com/tamadeu/divi-import/internal/importer"
	"github.com/tamadeu/divi-import/internal/session"
)

func newParseCommand(verbose *bool) *cobra.Command {
	var accountName string

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a CSV file and stage it for import",
		Args:  cobra.ExactArgs(1),
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

			account, ok := dir.AccountByName(accountName)
			if !ok {
				return fmt.Errorf("unknown account %q", accountName)
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening import file: %w", err)
			}
			defer f.Close()

			batch, err := importer.Parse(f, dir, account.ID, importer.Options{
				Delimiter: env.cfg.DelimiterRune(),
			})
			if err != nil {
				return err
			}

			sess := session.New(env.stg, dir, env.log)
			if err := sess.Stage(batch); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Staged import (%s)\n", sess.State())
			printBatchSummary(out, batch)
			return nil
		},
	}

	cmd.Flags().StringVar(&accountName, "account", "", "account the whole file is imported into (required)")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}
