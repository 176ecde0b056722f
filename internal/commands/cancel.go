package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tamadeu/divi-import/internal/directory"
	"github.com/tamadeu/divi-import/internal/session"
)

func newCancelCommand(verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "Abandon the staged import",
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
				fmt.Fprintln(cmd.OutOrStdout(), "No import in progress.")
				return nil
			}
			if err != nil {
				return err
			}

			if err := sess.Cancel(); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Import cancelled; nothing was written to the store.")
			return nil
		},
	}
}
