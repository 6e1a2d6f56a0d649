package driven

import (
	"context"
	"io"

	"github.com/custodia-labs/sercha-scan/internal/core/domain"
)

// ResourceLister enumerates the searchable resources of an object store.
// Implementations only return objects with a supported extension and a
// non-zero size.
type ResourceLister interface {
	// ListResources returns every searchable resource.
	ListResources(ctx context.Context) ([]domain.Resource, error)
}

// ResourceStreamer opens resources for line-by-line reading.
type ResourceStreamer interface {
	// OpenStream opens the resource. Closing the returned reader must abort
	// any read in progress, so a search can stop mid-stream on cancellation.
	OpenStream(ctx context.Context, res domain.Resource) (io.ReadCloser, error)
}

// ObjectStore is a complete object store backend.
type ObjectStore interface {
	ResourceLister
	ResourceStreamer

	// Name identifies the backend in logs, e.g. "s3://bucket/prefix".
	Name() string
}

// BridgeHealth is the health payload returned by a remote bridge.
type BridgeHealth struct {
	Status    string   `json:"status"`
	Databases int      `json:"databases"`
	Names     []string `json:"names"`
}

// BridgeClient forwards searches to a remote bridge.
type BridgeClient interface {
	// Search forwards a normalised request.
	Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error)

	// Health probes the bridge.
	Health(ctx context.Context) (*BridgeHealth, error)

	// Sources returns the largest sources of each bridge database.
	Sources(ctx context.Context) (map[string][]domain.SourceCount, error)
}
