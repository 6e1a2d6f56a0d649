package api

import (
	"context"

	"github.com/custodia-labs/sercha-scan/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	result *domain.SearchResult
	err    error
	calls  int
	last   domain.SearchRequest
}

func (m *mockSearchService) Search(_ context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	m.calls++
	m.last = req
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return domain.EmptyResult(), nil
	}
	return m.result, nil
}

// mockInventoryService is a mock implementation of driving.InventoryService.
type mockInventoryService struct {
	status  *domain.BackendStatus
	sources []domain.SourceInfo
	err     error
}

func (m *mockInventoryService) Status(_ context.Context) *domain.BackendStatus {
	return m.status
}

func (m *mockInventoryService) Sources(_ context.Context) ([]domain.SourceInfo, error) {
	return m.sources, m.err
}
