package driven

import (
	"context"

	"github.com/custodia-labs/sercha-scan/internal/core/domain"
)

// IndexStore provides read access to SQLite FTS5 databases holding a
// records(source, content) table.
type IndexStore interface {
	// Databases returns the names of the loaded databases.
	Databases(ctx context.Context) ([]string, error)

	// Query runs an FTS5 MATCH expression against one database and returns
	// rows in the store's relevance order.
	Query(ctx context.Context, db, match string, limit int) ([]domain.IndexedLine, error)

	// Sources returns per-source line counts, largest first.
	Sources(ctx context.Context, db string, limit int) ([]domain.SourceCount, error)

	// Stats returns size information for one database.
	Stats(ctx context.Context, db string) (*domain.IndexStats, error)

	// Reload rescans the data directory for databases.
	Reload(ctx context.Context) error

	// Close releases all connections.
	Close() error
}

// IndexWriter mutates index databases. Used by the indexer only.
type IndexWriter interface {
	// Insert adds lines to db in a single transaction, creating db if needed.
	Insert(ctx context.Context, db string, lines []domain.IndexedLine) error

	// DeleteSource removes every line of source and returns how many were removed.
	DeleteSource(ctx context.Context, db, source string) (int64, error)

	// Clear removes every line of db.
	Clear(ctx context.Context, db string) error
}

// IndexSyncer downloads index databases from the object store.
type IndexSyncer interface {
	// SyncDatabases downloads .db objects whose size differs from the local
	// copy into dataDir and returns the downloaded file names.
	SyncDatabases(ctx context.Context, dataDir string) ([]string, error)
}
