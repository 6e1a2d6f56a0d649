package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Download index databases from the object store",
	Long: `Downloads every .db object under the index sync prefix whose size differs
from the local copy in the index data directory. Files are written under a
temporary name and renamed into place, so a running server never reads a
partial database.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	if err := requireSyncer(cmd.Context()); err != nil {
		return err
	}
	dataDir := currentSettings().Index.DataDir

	cmd.Printf("Synchronising databases into %s...\n", dataDir)
	files, err := indexSyncer.SyncDatabases(cmd.Context(), dataDir)
	for _, f := range files {
		cmd.Printf("  downloaded %s\n", f)
	}
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	if len(files) == 0 {
		cmd.Println("All databases are up to date.")
		return nil
	}
	cmd.Printf("%d database(s) synchronised.\n", len(files))
	return nil
}
