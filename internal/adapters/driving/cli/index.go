package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var indexQueryLimit int

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the SQLite FTS5 index",
	Long: `Build and inspect the SQLite FTS5 databases used by the index backend.

Each database lives in the index data directory as <name>.db and holds one
row per indexed line, tagged with the file it came from.`,
}

var indexAddCmd = &cobra.Command{
	Use:   "add <database> <path>",
	Short: "Index a file or directory",
	Args:  cobra.ExactArgs(2),
	RunE:  runIndexAdd,
}

var indexStatsCmd = &cobra.Command{
	Use:   "stats <database>",
	Short: "Show database statistics",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexStats,
}

var indexSourcesCmd = &cobra.Command{
	Use:   "sources <database>",
	Short: "List indexed sources",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexSources,
}

var indexDeleteCmd = &cobra.Command{
	Use:   "delete <database> <source>",
	Short: "Remove every line of a source",
	Args:  cobra.ExactArgs(2),
	RunE:  runIndexDelete,
}

var indexClearCmd = &cobra.Command{
	Use:   "clear <database>",
	Short: "Remove every line of a database",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexClear,
}

var indexQueryCmd = &cobra.Command{
	Use:   "query <database> <text>",
	Short: "Run a quick full-text query",
	Args:  cobra.ExactArgs(2),
	RunE:  runIndexQuery,
}

func init() {
	indexQueryCmd.Flags().IntVarP(&indexQueryLimit, "limit", "n", 10, "maximum number of rows")
	indexCmd.AddCommand(indexAddCmd)
	indexCmd.AddCommand(indexStatsCmd)
	indexCmd.AddCommand(indexSourcesCmd)
	indexCmd.AddCommand(indexDeleteCmd)
	indexCmd.AddCommand(indexClearCmd)
	indexCmd.AddCommand(indexQueryCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexAdd(cmd *cobra.Command, args []string) error {
	if err := requireIndexer(cmd.Context()); err != nil {
		return err
	}
	db, path := args[0], args[1]

	cmd.Printf("Indexing %s into %s...\n", path, db)
	report, err := indexerService.AddPath(cmd.Context(), db, path)
	if err != nil {
		return fmt.Errorf("index failed: %w", err)
	}

	cmd.Printf("Indexed %s lines from %d file(s), skipped %s.\n",
		humanize.Comma(report.Indexed), len(report.Files), humanize.Comma(report.Skipped))
	return nil
}

func runIndexStats(cmd *cobra.Command, args []string) error {
	if err := requireIndexer(cmd.Context()); err != nil {
		return err
	}
	stats, err := indexerService.Stats(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	cmd.Printf("Database: %s\n", stats.Name)
	cmd.Printf("  Path:    %s\n", stats.Path)
	cmd.Printf("  Records: %s\n", humanize.Comma(stats.Records))
	cmd.Printf("  Sources: %s\n", humanize.Comma(stats.Sources))
	cmd.Printf("  Size:    %s\n", humanize.Bytes(uint64(max(stats.SizeBytes, 0))))
	return nil
}

func runIndexSources(cmd *cobra.Command, args []string) error {
	if err := requireIndexer(cmd.Context()); err != nil {
		return err
	}
	sources, err := indexerService.Sources(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}
	if len(sources) == 0 {
		cmd.Println("No sources indexed.")
		return nil
	}
	for _, s := range sources {
		cmd.Printf("  %12s  %s\n", humanize.Comma(s.Count), s.Source)
	}
	return nil
}

func runIndexDelete(cmd *cobra.Command, args []string) error {
	if err := requireIndexer(cmd.Context()); err != nil {
		return err
	}
	removed, err := indexerService.DeleteSource(cmd.Context(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to delete source: %w", err)
	}
	cmd.Printf("Removed %s lines of %s.\n", humanize.Comma(removed), args[1])
	return nil
}

func runIndexClear(cmd *cobra.Command, args []string) error {
	if err := requireIndexer(cmd.Context()); err != nil {
		return err
	}
	if err := indexerService.Clear(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to clear database: %w", err)
	}
	cmd.Printf("Cleared %s.\n", args[0])
	return nil
}

func runIndexQuery(cmd *cobra.Command, args []string) error {
	if err := requireIndexer(cmd.Context()); err != nil {
		return err
	}
	records, err := indexerService.Query(cmd.Context(), args[0], args[1], indexQueryLimit)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	if len(records) == 0 {
		cmd.Println("No results found.")
		return nil
	}
	for i, rec := range records {
		cmd.Printf("  [%d] %s\n      %s\n", i+1, rec.Source(), rec.Raw())
	}
	return nil
}
