package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newAccountCommand(verbose *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage workspace accounts",
	}
	cmd.AddCommand(newAccountAddCommand(verbose))
	cmd.AddCommand(newAccountListCommand(verbose))
	return cmd
}

func newAccountAddCommand(verbose *bool) *cobra.Command {
	var name string
	var balance string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(*verbose)
			if err != nil {
				return err
			}
			defer env.close()

			start, err := decimal.NewFromString(balance)
			if err != nil {
				return fmt.Errorf("invalid balance %q: %w", balance, err)
			}

			account, err := env.db.CreateAccount(cmd.Context(), name, start)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created account %s (%s)\n", account.Name, account.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "account name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&balance, "balance", "0", "starting balance")

	return cmd
}

func newAccountListCommand(verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts with balances",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(*verbose)
			if err != nil {
				return err
			}
			defer env.close()

			accounts, err := env.db.ListAccounts(cmd.Context())
			if err != nil {
				return err
			}

			for _, a := range accounts {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", a.ID, a.Name, a.Balance.StringFixed(2))
			}
			return nil
		},
	}
}
