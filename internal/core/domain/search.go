package domain

import (
	"encoding/json"
	"fmt"
)

// Pagination bounds for a search request.
const (
	DefaultLimit = 20
	MinLimit     = 1
	MaxLimit     = 200
)

// SearchRequest is a validated search over all resources.
type SearchRequest struct {
	// Criteria are combined with AND semantics.
	Criteria []SearchCriterion `json:"criteria"`

	// Limit is the page size, clamped to [MinLimit, MaxLimit].
	Limit int `json:"limit,omitempty"`

	// Offset is the number of results to skip, clamped to >= 0.
	Offset int `json:"offset,omitempty"`
}

// searchRequestWire distinguishes a missing limit from an explicit zero.
type searchRequestWire struct {
	Criteria []SearchCriterion `json:"criteria"`
	Limit    *int              `json:"limit"`
	Offset   int               `json:"offset"`
}

// UnmarshalJSON decodes a request. A missing limit stays zero, so Normalize
// applies DefaultLimit; an explicit limit below MinLimit becomes MinLimit.
func (r *SearchRequest) UnmarshalJSON(data []byte) error {
	var w searchRequestWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = SearchRequest{Criteria: w.Criteria, Offset: w.Offset}
	if w.Limit != nil {
		r.Limit = max(*w.Limit, MinLimit)
	}
	return nil
}

// Normalize returns a copy of the request with limit and offset clamped.
// A zero limit takes DefaultLimit.
func (r SearchRequest) Normalize() SearchRequest {
	switch {
	case r.Limit == 0:
		r.Limit = DefaultLimit
	case r.Limit < MinLimit:
		r.Limit = MinLimit
	case r.Limit > MaxLimit:
		r.Limit = MaxLimit
	}
	if r.Offset < 0 {
		r.Offset = 0
	}
	return r
}

// Validate checks the request shape. Blank values are not a validation
// failure: a request whose criteria are all blank yields an empty result.
func (r SearchRequest) Validate() error {
	if len(r.Criteria) == 0 {
		return fmt.Errorf("%w: 'criteria' array required", ErrInvalidInput)
	}
	return nil
}

// Needed returns how many results must be aggregated to serve the page.
func (r SearchRequest) Needed() int {
	return r.Limit + r.Offset
}

// SearchResult is one page of matching records.
type SearchResult struct {
	// Results is the requested page, in aggregation order.
	Results []Record `json:"results"`

	// Total is the number of matches aggregated before pagination.
	// It is not the size of the full universe: search stops early.
	Total int `json:"total"`

	// Partial is true when the deadline fired before the search finished.
	Partial bool `json:"partial"`

	// Error is an advisory note, e.g. when no resources are available.
	Error string `json:"error,omitempty"`
}

// EmptyResult returns a result with no records.
func EmptyResult() *SearchResult {
	return &SearchResult{Results: []Record{}}
}

// FilterLabels returns the searchable fields with their display labels.
func FilterLabels() map[string]string {
	return map[string]string{
		FieldEmail:       "Email address",
		FieldTelephone:   "Phone number",
		FieldIP:          "IP address",
		FieldURL:         "URL",
		FieldIdentifiant: "Username / identifier",
		FieldPassword:    "Password",
	}
}
