package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-scan/internal/core/domain"
	"github.com/custodia-labs/sercha-scan/internal/core/ports/driven"
)

// mockBridgeClient implements driven.BridgeClient for testing.
type mockBridgeClient struct {
	result    *domain.SearchResult
	searchErr error
	health    *driven.BridgeHealth
	healthErr error
	sources   map[string][]domain.SourceCount
	lastReq   domain.SearchRequest
}

func (m *mockBridgeClient) Search(_ context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	m.lastReq = req
	return m.result, m.searchErr
}

func (m *mockBridgeClient) Health(_ context.Context) (*driven.BridgeHealth, error) {
	return m.health, m.healthErr
}

func (m *mockBridgeClient) Sources(_ context.Context) (map[string][]domain.SourceCount, error) {
	if m.sources == nil {
		return nil, errors.New("unreachable")
	}
	return m.sources, nil
}

func TestBridgeSearch_ForwardsNormalisedRequest(t *testing.T) {
	client := &mockBridgeClient{result: &domain.SearchResult{
		Results: []domain.Record{domain.NewRecord("index", "alice:pw")},
		Total:   1,
	}}
	svc := NewBridgeSearchService(client)

	res, err := svc.Search(context.Background(), domain.SearchRequest{
		Criteria: []domain.SearchCriterion{{Value: ""}, {Value: "alice"}},
		Limit:    900,
		Offset:   -1,
	})
	require.NoError(t, err)
	assert.Len(t, res.Results, 1)
	assert.Equal(t, []domain.SearchCriterion{{Value: "alice"}}, client.lastReq.Criteria)
	assert.Equal(t, domain.MaxLimit, client.lastReq.Limit)
	assert.Zero(t, client.lastReq.Offset)
}

func TestBridgeSearch_FailureIsEmptyResult(t *testing.T) {
	svc := NewBridgeSearchService(&mockBridgeClient{searchErr: errors.New("timeout")})

	res, err := svc.Search(context.Background(), aliceRequest(10, 0))
	require.NoError(t, err)
	assert.NotNil(t, res.Results)
	assert.Empty(t, res.Results)
	assert.Equal(t, domain.ErrSearchUnavailable.Error(), res.Error)
}

func TestBridgeSearch_NilResultsBecomeEmpty(t *testing.T) {
	svc := NewBridgeSearchService(&mockBridgeClient{result: &domain.SearchResult{}})

	res, err := svc.Search(context.Background(), aliceRequest(10, 0))
	require.NoError(t, err)
	assert.NotNil(t, res.Results)
}

func TestBridgeSearch_BlankCriteriaSkipBridge(t *testing.T) {
	client := &mockBridgeClient{searchErr: errors.New("must not be called")}
	svc := NewBridgeSearchService(client)

	res, err := svc.Search(context.Background(), domain.SearchRequest{
		Criteria: []domain.SearchCriterion{{Value: "  "}},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Error)
	assert.Nil(t, client.lastReq.Criteria)
}

func TestBridgeSearch_Status(t *testing.T) {
	svc := NewBridgeSearchService(&mockBridgeClient{health: &driven.BridgeHealth{
		Status: "ok", Databases: 2, Names: []string{"index", "index2"},
	}})

	status := svc.Status(context.Background())
	assert.Equal(t, domain.StatusOK, status.Status)
	assert.Equal(t, 2, status.Count)
	assert.Equal(t, []string{"index", "index2"}, status.Names)

	svc = NewBridgeSearchService(&mockBridgeClient{healthErr: errors.New("refused")})
	status = svc.Status(context.Background())
	assert.Equal(t, domain.StatusDegraded, status.Status)
	assert.Equal(t, "refused", status.Error)
}

func TestBridgeSearch_Sources(t *testing.T) {
	svc := NewBridgeSearchService(&mockBridgeClient{sources: map[string][]domain.SourceCount{
		"index2": {{Source: "b.csv", Count: 4}},
		"index":  {{Source: "a.txt", Count: 9}},
	}})

	sources, err := svc.Sources(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.SourceInfo{
		{Name: "a.txt", Database: "index", Count: 9},
		{Name: "b.csv", Database: "index2", Count: 4},
	}, sources)

	_, err = NewBridgeSearchService(&mockBridgeClient{}).Sources(context.Background())
	assert.ErrorIs(t, err, domain.ErrSearchUnavailable)
}
