package mcp

import (
	"github.com/custodia-labs/sercha-scan/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search runs structured searches.
	Search driving.SearchService

	// Inventory reports backend status and sources. Optional.
	Inventory driving.InventoryService

	// Indexer exposes per-database source counts. Optional.
	Indexer driving.IndexerService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
