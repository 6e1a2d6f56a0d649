package api

import "github.com/custodia-labs/sercha-scan/internal/core/ports/driving"

// Ports holds the services the HTTP adapter drives.
// Search is required; Inventory backs /health and /sources.
type Ports struct {
	Search    driving.SearchService
	Inventory driving.InventoryService
}

// Validate reports whether the required services are present.
func (p Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
