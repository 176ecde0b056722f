package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tamadeu/divi-import/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:     "divi-import",
		Short:   "Bulk CSV transaction import for Divi workspaces",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newInitCommand(&verbose))
	rootCmd.AddCommand(newAccountCommand(&verbose))
	rootCmd.AddCommand(newCategoryCommand(&verbose))
	rootCmd.AddCommand(newParseCommand(&verbose))
	rootCmd.AddCommand(newStatusCommand(&verbose))
	rootCmd.AddCommand(newMapCommand(&verbose))
	rootCmd.AddCommand(newCommitCommand(&verbose))
	rootCmd.AddCommand(newCancelCommand(&verbose))

	return rootCmd
}
