package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-scan/internal/core/domain"
	"github.com/custodia-labs/sercha-scan/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-scan/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-scan/internal/logger"
)

// Ensure IndexedSearchService implements the interface.
var _ driving.Backend = (*IndexedSearchService)(nil)

const (
	// overfetchFactor widens each index query to leave room for rows the
	// criterion filter rejects.
	overfetchFactor = 3

	// topSources is the number of sources reported per database.
	topSources = 50
)

// FTSPhrase quotes value as a single FTS5 phrase.
func FTSPhrase(value string) string {
	return `"` + strings.ReplaceAll(strings.TrimSpace(value), `"`, `""`) + `"`
}

// IndexedSearchService searches local SQLite FTS5 databases.
//
// Rows come back in the store's relevance order, database by database,
// and are re-parsed and filtered exactly like streamed lines.
type IndexedSearchService struct {
	store driven.IndexStore
}

// NewIndexedSearchService creates an index-backed search service.
func NewIndexedSearchService(store driven.IndexStore) *IndexedSearchService {
	return &IndexedSearchService{store: store}
}

// Search queries each database with the first criterion and filters the
// rows with every criterion until enough results are aggregated.
func (s *IndexedSearchService) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req = req.Normalize()

	filled := domain.FilledCriteria(req.Criteria)
	if len(filled) == 0 {
		return domain.EmptyResult(), nil
	}

	reqLog := logger.With("request", uuid.NewString(), "backend", domain.SearchBackendIndex)

	dbs, err := s.store.Databases(ctx)
	if err != nil {
		reqLog.Warn("listing databases failed", "err", err)
	}
	if len(dbs) == 0 {
		result := domain.EmptyResult()
		result.Error = domain.NoDataFilesMessage
		return result, nil
	}

	needed := req.Needed()
	match := FTSPhrase(filled[0].Value)
	all := make([]domain.Record, 0, needed)
	partial := false

	for _, db := range dbs {
		if len(all) >= needed {
			break
		}
		if ctx.Err() != nil {
			partial = true
			break
		}

		remaining := needed - len(all)
		rows, err := s.store.Query(ctx, db, match, remaining*overfetchFactor)
		if err != nil {
			reqLog.Warn("database skipped", "db", db, "err", err)
			continue
		}
		all = append(all, filterRows(rows, filled, remaining)...)
	}

	reqLog.Info("search done", "databases", len(dbs), "results", len(all))

	return Assemble(all, req.Offset, req.Limit, partial), nil
}

// filterRows parses rows and keeps at most limit records matching criteria.
func filterRows(rows []domain.IndexedLine, criteria []domain.SearchCriterion, limit int) []domain.Record {
	records := make([]domain.Record, 0, min(len(rows), limit))
	for _, row := range rows {
		rec := ExtractRecord(row.Content, row.Source)
		if !MatchesCriteria(rec, criteria) {
			continue
		}
		records = append(records, rec)
		if len(records) >= limit {
			break
		}
	}
	return records
}

// Status reports the loaded databases.
func (s *IndexedSearchService) Status(ctx context.Context) *domain.BackendStatus {
	status := &domain.BackendStatus{
		Status:  domain.StatusOK,
		Backend: domain.SearchBackendIndex,
		Names:   []string{},
	}

	dbs, err := s.store.Databases(ctx)
	if err != nil {
		status.Status = domain.StatusDegraded
		status.Error = err.Error()
		return status
	}

	status.Count = len(dbs)
	status.Names = append(status.Names, dbs...)
	return status
}

// Sources lists the largest sources of every database.
func (s *IndexedSearchService) Sources(ctx context.Context) ([]domain.SourceInfo, error) {
	dbs, err := s.store.Databases(ctx)
	if err != nil {
		return nil, fmt.Errorf("list databases: %w", err)
	}

	var sources []domain.SourceInfo
	for _, db := range dbs {
		counts, err := s.store.Sources(ctx, db, topSources)
		if err != nil {
			logger.Warn("Failed to list sources of %s: %v", db, err)
			continue
		}
		for _, c := range counts {
			sources = append(sources, domain.SourceInfo{Name: c.Source, Database: db, Count: c.Count})
		}
	}
	return sources, nil
}
