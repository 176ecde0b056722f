package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tamadeu/divi-import/internal/config"
	"github.com/tamadeu/divi-import/internal/logging"
	"github.com/tamadeu/divi-import/internal/store"
)

func newInitCommand(verbose *bool) *cobra.Command {
	var workspaceID string
	var userID string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a workspace database and config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, workspaceID, userID, *verbose)
		},
	}

	cmd.Flags().StringVar(&workspaceID, "workspace", "", "workspace id (required)")
	_ = cmd.MarkFlagRequired("workspace")
	cmd.Flags().StringVar(&userID, "user", "", "user id (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runInit(cmd *cobra.Command, dir, workspaceID, userID string, verbose bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking config: %w", err)
	}

	cfg := config.Default(workspaceID, userID)
	if err := config.Save(cfgPath, cfg); err != nil {
		return err
	}

	log := logging.New(verbose)
	db, err := store.Open(filepath.Join(dir, cfg.Workspace.Database), workspaceID, userID, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Init(cmd.Context()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized workspace %s at %s\n", workspaceID, dir)
	return nil
}
