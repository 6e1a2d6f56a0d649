package services

import (
	"strings"

	"github.com/custodia-labs/sercha-scan/internal/core/domain"
)

// MatchesCriteria reports whether a record satisfies every criterion.
//
// A criterion with a field present in the record is tested against that
// field; otherwise it is tested against the raw line. All comparisons are
// case-insensitive substring tests.
func MatchesCriteria(rec domain.Record, criteria []domain.SearchCriterion) bool {
	for _, c := range criteria {
		needle := strings.ToLower(strings.TrimSpace(c.Value))

		haystack := rec.Raw()
		if c.Field != "" {
			if v, ok := rec.Get(c.Field); ok {
				haystack = v
			}
		}

		if !strings.Contains(strings.ToLower(haystack), needle) {
			return false
		}
	}
	return true
}

// containsAny reports whether lower contains at least one of tokens.
// Both sides must already be lowercased.
func containsAny(lower string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}
