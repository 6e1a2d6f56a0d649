package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchRequest_Normalize(t *testing.T) {
	tests := []struct {
		name       string
		req        SearchRequest
		wantLimit  int
		wantOffset int
	}{
		{"zero limit takes default", SearchRequest{}, DefaultLimit, 0},
		{"negative limit clamps to min", SearchRequest{Limit: -5}, MinLimit, 0},
		{"large limit clamps to max", SearchRequest{Limit: 1000}, MaxLimit, 0},
		{"limit in range kept", SearchRequest{Limit: 50, Offset: 10}, 50, 10},
		{"negative offset clamps to zero", SearchRequest{Limit: 5, Offset: -3}, 5, 0},
		{"max limit kept", SearchRequest{Limit: MaxLimit}, MaxLimit, 0},
		{"min limit kept", SearchRequest{Limit: MinLimit}, MinLimit, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.req.Normalize()
			assert.Equal(t, tt.wantLimit, got.Limit)
			assert.Equal(t, tt.wantOffset, got.Offset)
		})
	}
}

func TestSearchRequest_Normalize_DoesNotMutate(t *testing.T) {
	req := SearchRequest{Limit: 500, Offset: -1}
	_ = req.Normalize()

	assert.Equal(t, 500, req.Limit)
	assert.Equal(t, -1, req.Offset)
}

func TestSearchRequest_Validate(t *testing.T) {
	err := SearchRequest{}.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	// Blank values are valid shape; the search short-circuits instead.
	err = SearchRequest{Criteria: []SearchCriterion{{Value: "  "}}}.Validate()
	assert.NoError(t, err)
}

func TestSearchRequest_Needed(t *testing.T) {
	req := SearchRequest{Limit: 20, Offset: 40}
	assert.Equal(t, 60, req.Needed())
}

func TestSearchRequest_UnmarshalJSON(t *testing.T) {
	var req SearchRequest
	err := json.Unmarshal([]byte(`{"criteria":[{"value":"alice","field":"email"},{"value":"x"}],"limit":5}`), &req)
	require.NoError(t, err)

	require.Len(t, req.Criteria, 2)
	assert.Equal(t, "alice", req.Criteria[0].Value)
	assert.Equal(t, "email", req.Criteria[0].Field)
	assert.Empty(t, req.Criteria[1].Field)
	assert.Equal(t, 5, req.Limit)
	assert.Equal(t, 0, req.Offset)
}

func TestSearchRequest_UnmarshalJSON_Limit(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing takes default", `{"criteria":[{"value":"a"}]}`, DefaultLimit},
		{"explicit zero clamps to min", `{"criteria":[{"value":"a"}],"limit":0}`, MinLimit},
		{"negative clamps to min", `{"criteria":[{"value":"a"}],"limit":-3}`, MinLimit},
		{"above max clamps to max", `{"criteria":[{"value":"a"}],"limit":500}`, MaxLimit},
		{"in range kept", `{"criteria":[{"value":"a"}],"limit":50}`, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req SearchRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			assert.Equal(t, tt.want, req.Normalize().Limit)
		})
	}
}

func TestSearchResult_JSON(t *testing.T) {
	rec := NewRecord("a.txt", "alice:pw")
	res := SearchResult{Results: []Record{rec}, Total: 1, Partial: true}

	data, err := json.Marshal(res)
	require.NoError(t, err)

	assert.JSONEq(t, `{"results":[{"_source":"a.txt","_raw":"alice:pw"}],"total":1,"partial":true}`, string(data))
}

func TestEmptyResult(t *testing.T) {
	res := EmptyResult()

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"results":[],"total":0,"partial":false}`, string(data))
}

func TestEmptyResult_WithError(t *testing.T) {
	res := EmptyResult()
	res.Error = NoDataFilesMessage

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"results":[],"total":0,"partial":false,"error":"No data files found"}`, string(data))
}

func TestFilterLabels_CoversExtractedFields(t *testing.T) {
	labels := FilterLabels()
	for _, f := range ExtractedFields() {
		assert.NotEmpty(t, labels[f], "missing label for %s", f)
	}
}
