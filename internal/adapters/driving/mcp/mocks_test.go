package mcp

import (
	"context"

	"github.com/custodia-labs/sercha-scan/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	result *domain.SearchResult
	err    error
	last   domain.SearchRequest
}

func (m *mockSearchService) Search(_ context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
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

// mockIndexerService is a mock implementation of driving.IndexerService.
type mockIndexerService struct {
	sources []domain.SourceCount
	err     error
	db      string
}

func (m *mockIndexerService) AddPath(_ context.Context, _, _ string) (*domain.IndexReport, error) {
	return nil, m.err
}

func (m *mockIndexerService) Stats(_ context.Context, _ string) (*domain.IndexStats, error) {
	return nil, m.err
}

func (m *mockIndexerService) Sources(_ context.Context, db string) ([]domain.SourceCount, error) {
	m.db = db
	return m.sources, m.err
}

func (m *mockIndexerService) DeleteSource(_ context.Context, _, _ string) (int64, error) {
	return 0, m.err
}

func (m *mockIndexerService) Clear(_ context.Context, _ string) error {
	return m.err
}

func (m *mockIndexerService) Query(_ context.Context, _, _ string, _ int) ([]domain.Record, error) {
	return nil, m.err
}
