// Package tui provides an interactive terminal user interface for sercha-scan.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/sercha-scan/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search runs structured searches.
	Search driving.SearchService

	// Inventory reports backend health and sources. Optional.
	Inventory driving.InventoryService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(search driving.SearchService, inventory driving.InventoryService) *Ports {
	return &Ports{
		Search:    search,
		Inventory: inventory,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
