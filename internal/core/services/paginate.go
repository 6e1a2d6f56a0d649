package services

import "github.com/custodia-labs/sercha-scan/internal/core/domain"

// Assemble slices one page out of the aggregated results.
// Total is the number of results aggregated, not a universe count, and the
// aggregation order is kept as is.
func Assemble(all []domain.Record, offset, limit int, partial bool) *domain.SearchResult {
	return &domain.SearchResult{
		Results: applyPagination(all, offset, limit),
		Total:   len(all),
		Partial: partial,
	}
}

// applyPagination applies offset and limit to results.
func applyPagination(results []domain.Record, offset, limit int) []domain.Record {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(results) || limit <= 0 {
		return []domain.Record{}
	}

	end := offset + limit
	if end > len(results) {
		end = len(results)
	}

	return results[offset:end]
}
