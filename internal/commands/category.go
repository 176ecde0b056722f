package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tamadeu/divi-import/internal/model"
)

func newCategoryCommand(verbose *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage workspace categories",
	}
	cmd.AddCommand(newCategoryAddCommand(verbose))
	cmd.AddCommand(newCategoryListCommand(verbose))
	return cmd
}

func newCategoryAddCommand(verbose *bool) *cobra.Command {
	var name string
	var kind string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a category",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(*verbose)
			if err != nil {
				return err
			}
			defer env.close()

			category, err := env.db.CreateCategory(cmd.Context(), name, model.Kind(kind))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created category %s/%s (%s)\n", category.Name, category.Kind, category.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "category name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&kind, "kind", "", "income or expense (required)")
	_ = cmd.MarkFlagRequired("kind")

	return cmd
}

func newCategoryListCommand(verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(*verbose)
			if err != nil {
				return err
			}
			defer env.close()

			categories, err := env.db.ListCategories(cmd.Context())
			if err != nil {
				return err
			}

			for _, c := range categories {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", c.ID, c.Name, c.Kind)
			}
			return nil
		},
	}
}
