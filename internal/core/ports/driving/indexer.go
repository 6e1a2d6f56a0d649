package driving

import (
	"context"

	"github.com/custodia-labs/sercha-scan/internal/core/domain"
)

// IndexerService builds and maintains the SQLite FTS5 databases.
type IndexerService interface {
	// AddPath indexes a file, or every supported file under a directory.
	AddPath(ctx context.Context, db, path string) (*domain.IndexReport, error)

	// Stats returns size information for a database.
	Stats(ctx context.Context, db string) (*domain.IndexStats, error)

	// Sources lists the sources indexed in a database.
	Sources(ctx context.Context, db string) ([]domain.SourceCount, error)

	// DeleteSource removes every line of a source.
	DeleteSource(ctx context.Context, db, source string) (int64, error)

	// Clear empties a database.
	Clear(ctx context.Context, db string) error

	// Query runs a quick search against one database.
	Query(ctx context.Context, db, query string, limit int) ([]domain.Record, error)
}
