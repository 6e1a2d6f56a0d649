package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-scan/internal/core/domain"
)

var (
	searchLimit  int
	searchOffset int
	searchJSON   bool
	searchFields = map[string]*string{}
)

var searchCmd = &cobra.Command{
	Use:   "search [value]",
	Short: "Search records matching every criterion",
	Long: `Searches every resource for records matching all given criteria.

A positional value matches anywhere in a line. Field flags restrict a value
to an extracted field; when a line has no such field the whole line is used.
Matching is a case-insensitive substring match.

Examples:
  sercha-scan search alice
  sercha-scan search --email alice@example.com --password hunter2
  sercha-scan search --ip 10.0.0.1 --limit 50 --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultLimit, "maximum number of results")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "number of results to skip")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	for _, field := range domain.ExtractedFields() {
		v := new(string)
		searchFields[field] = v
		searchCmd.Flags().StringVar(v, field, "", "match the "+field+" field")
	}
	rootCmd.AddCommand(searchCmd)
}

// searchCriteria builds criteria from the positional value and field flags.
func searchCriteria(args []string) []domain.SearchCriterion {
	var criteria []domain.SearchCriterion
	if len(args) > 0 {
		criteria = append(criteria, domain.SearchCriterion{Value: args[0]})
	}
	for _, field := range domain.ExtractedFields() {
		if v := *searchFields[field]; v != "" {
			criteria = append(criteria, domain.SearchCriterion{Field: field, Value: v})
		}
	}
	return criteria
}

func runSearch(cmd *cobra.Command, args []string) error {
	criteria := searchCriteria(args)
	if len(criteria) == 0 {
		return fmt.Errorf("%w: give a value or at least one field flag", domain.ErrInvalidInput)
	}

	if err := requireBackend(cmd.Context()); err != nil {
		return err
	}
	if searchService == nil {
		return errNotConfigured("search service")
	}

	req := domain.SearchRequest{Criteria: criteria, Limit: searchLimit, Offset: searchOffset}.Normalize()
	result, err := searchService.Search(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, result)
	}
	return outputSearchTable(cmd, result, req.Offset)
}

func outputSearchJSON(cmd *cobra.Command, result *domain.SearchResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, result *domain.SearchResult, offset int) error {
	if result.Error != "" {
		cmd.Printf("Note: %s\n", result.Error)
	}
	if len(result.Results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Printf("Results %d-%d of %d", offset+1, offset+len(result.Results), result.Total)
	if result.Partial {
		cmd.Print(" (partial, search timed out)")
	}
	cmd.Println()
	cmd.Println()

	for i, rec := range result.Results {
		cmd.Printf("  [%d] %s\n", offset+i+1, rec.Source())
		var fields []string
		for _, key := range domain.ExtractedFields() {
			if v, ok := rec.Get(key); ok {
				fields = append(fields, key+"="+v)
			}
		}
		if len(fields) > 0 {
			cmd.Printf("      %s\n", strings.Join(fields, "  "))
		}
		cmd.Printf("      %s\n", rec.Raw())
		cmd.Println()
	}
	return nil
}
