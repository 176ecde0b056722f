package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tamadeu/divi-import/internal/directory"
	"github.com/tamadeu/divi-import/internal/model"
	"github.com/tamadeu/divi-import/internal/session"
)

func newMapCommand(verbose *bool) *cobra.Command {
	var name string
	var kind string
	var target string

	cmd := &cobra.Command{
		Use:   "map",
		Short: "Bind a missing category to an existing one",
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

			k := model.Kind(kind)
			if !k.Valid() {
				return fmt.Errorf("invalid kind %q (expected income or expense)", kind)
			}

			category, ok := dir.CategoryByName(target, k)
			if !ok {
				return fmt.Errorf("no %s category named %q in this workspace", k, target)
			}

			if sess.Batch().Missing(name, k) == nil {
				warnColor.Fprintf(cmd.OutOrStdout(), "No missing category named %q (%s) in the staged import.\n", name, k)
				return nil
			}

			if err := sess.SetMapping(name, k, category.ID); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Mapped %q (%s) to %s\n", name, k, category.Name)
			if sess.Complete() {
				successColor.Fprintln(out, "All categories mapped. Ready to commit.")
			} else {
				printBatchSummary(out, sess.Batch())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "category", "", "missing category name from the file (required)")
	_ = cmd.MarkFlagRequired("category")
	cmd.Flags().StringVar(&kind, "kind", "", "income or expense (required)")
	_ = cmd.MarkFlagRequired("kind")
	cmd.Flags().StringVar(&target, "to", "", "existing category name to map to (required)")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}
