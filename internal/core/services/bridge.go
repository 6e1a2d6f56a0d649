package services

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/custodia-labs/sercha-scan/internal/core/domain"
	"github.com/custodia-labs/sercha-scan/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-scan/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-scan/internal/logger"
)

// Ensure BridgeSearchService implements the interface.
var _ driving.Backend = (*BridgeSearchService)(nil)

// BridgeSearchService forwards searches to a remote bridge.
// A failing bridge yields an empty result, never an error.
type BridgeSearchService struct {
	client driven.BridgeClient
}

// NewBridgeSearchService creates a bridge-backed search service.
func NewBridgeSearchService(client driven.BridgeClient) *BridgeSearchService {
	return &BridgeSearchService{client: client}
}

// Search forwards the request with blank criteria removed.
func (s *BridgeSearchService) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req = req.Normalize()

	req.Criteria = domain.FilledCriteria(req.Criteria)
	if len(req.Criteria) == 0 {
		return domain.EmptyResult(), nil
	}

	result, err := s.client.Search(ctx, req)
	if err != nil {
		logger.Warn("Remote bridge request failed: %v", err)
		empty := domain.EmptyResult()
		empty.Error = domain.ErrSearchUnavailable.Error()
		return empty, nil
	}
	if result.Results == nil {
		result.Results = []domain.Record{}
	}
	return result, nil
}

// Status probes the bridge health endpoint.
func (s *BridgeSearchService) Status(ctx context.Context) *domain.BackendStatus {
	status := &domain.BackendStatus{
		Status:  domain.StatusOK,
		Backend: domain.SearchBackendBridge,
		Names:   []string{},
	}

	health, err := s.client.Health(ctx)
	if err != nil {
		status.Status = domain.StatusDegraded
		status.Error = err.Error()
		return status
	}

	if health.Status != "" && health.Status != domain.StatusOK {
		status.Status = domain.StatusDegraded
	}
	status.Count = health.Databases
	status.Names = append(status.Names, health.Names...)
	return status
}

// Sources returns the per-database source counts reported by the bridge.
func (s *BridgeSearchService) Sources(ctx context.Context) ([]domain.SourceInfo, error) {
	byDB, err := s.client.Sources(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchUnavailable, err)
	}

	var sources []domain.SourceInfo
	for _, db := range slices.Sorted(maps.Keys(byDB)) {
		for _, c := range byDB[db] {
			sources = append(sources, domain.SourceInfo{Name: c.Source, Database: db, Count: c.Count})
		}
	}
	return sources, nil
}
