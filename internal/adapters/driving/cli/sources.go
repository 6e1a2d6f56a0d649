package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-scan/internal/core/domain"
)

var sourcesJSON bool

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List searchable sources",
	Long: `Lists the sources the active backend can search: object store files for
the stream backend, indexed sources per database for the index and bridge
backends.`,
	Args: cobra.NoArgs,
	RunE: runSources,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show backend health",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	sourcesCmd.Flags().BoolVar(&sourcesJSON, "json", false, "output sources as JSON")
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(statusCmd)
}

func runSources(cmd *cobra.Command, _ []string) error {
	if err := requireBackend(cmd.Context()); err != nil {
		return err
	}
	if inventoryService == nil {
		return errNotConfigured("inventory service")
	}

	sources, err := inventoryService.Sources(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	if sourcesJSON {
		if sources == nil {
			sources = []domain.SourceInfo{}
		}
		data, err := json.MarshalIndent(sources, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal sources: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(sources) == 0 {
		cmd.Println("No sources found.")
		return nil
	}
	for _, s := range sources {
		cmd.Println("  " + describeSource(s))
	}
	cmd.Printf("\n%d source(s)\n", len(sources))
	return nil
}

// describeSource formats one source for display.
func describeSource(s domain.SourceInfo) string {
	var b strings.Builder
	if s.Database != "" {
		b.WriteString(s.Database + "/")
	}
	b.WriteString(s.Name)
	switch {
	case s.SizeBytes > 0:
		fmt.Fprintf(&b, " (%s)", humanize.Bytes(uint64(s.SizeBytes)))
	case s.Count > 0:
		fmt.Fprintf(&b, " (%s lines)", humanize.Comma(s.Count))
	}
	return b.String()
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if err := requireBackend(cmd.Context()); err != nil {
		return err
	}
	if inventoryService == nil {
		return errNotConfigured("inventory service")
	}

	status := inventoryService.Status(cmd.Context())
	cmd.Printf("Backend: %s\n", status.Backend.Description())
	cmd.Printf("Status:  %s\n", status.Status)
	cmd.Printf("Count:   %d\n", status.Count)
	if status.Error != "" {
		cmd.Printf("Error:   %s\n", status.Error)
	}
	for _, name := range status.Names {
		cmd.Printf("  - %s\n", name)
	}
	return nil
}
