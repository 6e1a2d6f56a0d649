package domain

import "strings"

// SearchCriterion is one field/value constraint of a search.
// Criteria in a request are combined with AND semantics.
type SearchCriterion struct {
	// Value is matched case-insensitively as a substring.
	Value string `json:"value"`

	// Field optionally restricts the match to an extracted field.
	// When the field is absent from a record, the raw line is used instead.
	Field string `json:"field,omitempty"`
}

// IsBlank reports whether the criterion has no usable value.
func (c SearchCriterion) IsBlank() bool {
	return strings.TrimSpace(c.Value) == ""
}

// Token returns the trimmed, lowercased value used for quick rejection.
func (c SearchCriterion) Token() string {
	return strings.ToLower(strings.TrimSpace(c.Value))
}

// FilledCriteria returns the criteria whose value is non-blank.
func FilledCriteria(criteria []SearchCriterion) []SearchCriterion {
	filled := make([]SearchCriterion, 0, len(criteria))
	for _, c := range criteria {
		if !c.IsBlank() {
			filled = append(filled, c)
		}
	}
	return filled
}

// SearchTokens returns the lowercased values of the given criteria.
func SearchTokens(criteria []SearchCriterion) []string {
	tokens := make([]string, 0, len(criteria))
	for _, c := range criteria {
		if t := c.Token(); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}
