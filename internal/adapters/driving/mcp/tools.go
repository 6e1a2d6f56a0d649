package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-scan/internal/core/domain"
)

// SearchInput is the input schema for the search tool. Every non-empty
// field becomes one criterion; all criteria must match.
type SearchInput struct {
	Query       string `json:"query,omitempty" jsonschema:"free text matched anywhere in the line"`
	Email       string `json:"email,omitempty" jsonschema:"email address or part of one"`
	Telephone   string `json:"telephone,omitempty" jsonschema:"phone number or part of one"`
	IP          string `json:"ip,omitempty" jsonschema:"IPv4 address or part of one"`
	URL         string `json:"url,omitempty" jsonschema:"http or https URL or part of one"`
	Identifiant string `json:"identifiant,omitempty" jsonschema:"username or identifier"`
	Password    string `json:"password,omitempty" jsonschema:"password"`
	Limit       int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 20, max 200)"`
	Offset      int    `json:"offset,omitempty" jsonschema:"number of results to skip"`
}

// SearchOutput is the output schema for the search tool. Results holds
// domain.Record values, which encode their fields in extraction order.
type SearchOutput struct {
	Results []any  `json:"results" jsonschema:"matching records; each maps field names to values"`
	Total   int    `json:"total"`
	Partial bool   `json:"partial"`
	Error   string `json:"error,omitempty"`
}

// FiltersOutput is the output schema for the filters tool.
type FiltersOutput struct {
	Filters map[string]string `json:"filters"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search flat data files for lines matching every given field",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "filters",
		Description: "List the fields that search can filter on",
	}, s.handleFilters)
}

// criteria converts the input fields into search criteria.
func (in SearchInput) criteria() []domain.SearchCriterion {
	fields := []struct {
		field, value string
	}{
		{"", in.Query},
		{domain.FieldEmail, in.Email},
		{domain.FieldTelephone, in.Telephone},
		{domain.FieldIP, in.IP},
		{domain.FieldURL, in.URL},
		{domain.FieldIdentifiant, in.Identifiant},
		{domain.FieldPassword, in.Password},
	}

	var criteria []domain.SearchCriterion
	for _, f := range fields {
		if f.value != "" {
			criteria = append(criteria, domain.SearchCriterion{Field: f.field, Value: f.value})
		}
	}
	return criteria
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	result, err := s.ports.Search.Search(ctx, domain.SearchRequest{
		Criteria: input.criteria(),
		Limit:    input.Limit,
		Offset:   input.Offset,
	})
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]any, len(result.Results)),
		Total:   result.Total,
		Partial: result.Partial,
		Error:   result.Error,
	}
	for i, rec := range result.Results {
		output.Results[i] = rec
	}

	return nil, output, nil
}

// handleFilters returns the searchable fields with their labels.
func (s *Server) handleFilters(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, FiltersOutput, error) {
	return nil, FiltersOutput{Filters: domain.FilterLabels()}, nil
}
