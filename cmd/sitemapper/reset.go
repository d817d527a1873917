package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitemapper/internal/database"
)

// NewResetCmd creates the reset command.
func NewResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete every record from the visited URL database",
		Long: `Reset empties the visited URL database.

The crawl command already does this before each run unless --keep is given.
Use reset to start over after a series of --keep crawls.`,
		Args: cobra.NoArgs,
		RunE: runResetCmd,
	}
}

// runResetCmd executes the reset command.
func runResetCmd(cmd *cobra.Command, _ []string) error {
	dbDir, err := getDBDir(cmd)
	if err != nil {
		return err
	}

	store, err := database.Open(dbDir, database.ExistingOptions())
	if errors.Is(err, database.ErrDatabaseNotFound) {
		fmt.Fprintf(cmd.OutOrStdout(), "No crawl database in %s. Nothing to reset.\n", dbDir)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	count, err := store.Count(cmd.Context())
	if err != nil {
		return err
	}
	if err := store.ClearAll(cmd.Context()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d records from %s\n", count, store.Path())
	return nil
}
