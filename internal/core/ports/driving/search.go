package driving

import (
	"context"

	"github.com/custodia-labs/sercha-scan/internal/core/domain"
)

// SearchService provides search capabilities to external actors.
type SearchService interface {
	// Search runs a request and returns one page of matching records.
	// A request that fails validation returns an error wrapping
	// domain.ErrInvalidInput; every other degradation (empty catalog,
	// timeouts, unreadable resources) is reported inside the result.
	Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error)
}

// InventoryService reports what a search backend can see.
type InventoryService interface {
	// Status reports backend health and the available resources.
	Status(ctx context.Context) *domain.BackendStatus

	// Sources lists the searchable sources.
	Sources(ctx context.Context) ([]domain.SourceInfo, error)
}

// Backend is a complete search strategy.
type Backend interface {
	SearchService
	InventoryService
}
