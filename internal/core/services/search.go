package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sercha-scan/internal/core/domain"
	"github.com/custodia-labs/sercha-scan/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-scan/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-scan/internal/logger"
)

// Ensure StreamSearchService implements the interface.
var _ driving.Backend = (*StreamSearchService)(nil)

const (
	// minPerResource is the floor of the per-resource cap.
	minPerResource = 10

	// progressEvery is how many batches pass between progress logs.
	progressEvery = 5
)

// StreamSearchConfig configures a StreamSearchService.
type StreamSearchConfig struct {
	// Workers is the batch width. Defaults to domain.DefaultWorkers.
	Workers int

	// Timeout is the deadline of one request. Defaults to domain.DefaultSearchTimeout.
	Timeout time.Duration

	// Blacklist holds resource display names that are never scanned.
	Blacklist []string
}

// StreamSearchService searches flat files in an object store by streaming
// them concurrently in fixed-width batches.
type StreamSearchService struct {
	catalog driven.ResourceLister
	worker  *resourceWorker
	workers int
	timeout time.Duration
}

// NewStreamSearchService creates a streaming search service.
// catalog is usually a CachedCatalog.
func NewStreamSearchService(
	catalog driven.ResourceLister,
	streamer driven.ResourceStreamer,
	cfg StreamSearchConfig,
) *StreamSearchService {
	if cfg.Workers <= 0 {
		cfg.Workers = domain.DefaultWorkers
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = domain.DefaultSearchTimeout
	}
	return &StreamSearchService{
		catalog: catalog,
		worker: &resourceWorker{
			streamer:  streamer,
			blacklist: NewBlacklist(cfg.Blacklist),
		},
		workers: cfg.Workers,
		timeout: cfg.Timeout,
	}
}

// searchRun is the state of one request: a cancellable context, the
// deadline watcher and the partial flag it raises. It is never shared.
type searchRun struct {
	ctx     context.Context
	cancel  context.CancelFunc
	timer   *time.Timer
	partial atomic.Bool
}

func newSearchRun(parent context.Context, timeout time.Duration, onTimeout func()) *searchRun {
	ctx, cancel := context.WithCancel(parent)
	run := &searchRun{ctx: ctx, cancel: cancel}
	run.timer = time.AfterFunc(timeout, func() {
		run.partial.Store(true)
		cancel()
		onTimeout()
	})
	return run
}

func (r *searchRun) cancelled() bool {
	return r.ctx.Err() != nil
}

func (r *searchRun) stop() {
	r.timer.Stop()
	r.cancel()
}

// resultSink collects worker output in completion order.
type resultSink struct {
	mu      sync.Mutex
	records []domain.Record
}

func (s *resultSink) append(records []domain.Record) {
	if len(records) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
}

func (s *resultSink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *resultSink) snapshot() []domain.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Search scans the catalog for records matching every criterion.
//
// It stops dispatching once limit+offset results are aggregated or the
// deadline fires; in the latter case the result is marked partial.
func (s *StreamSearchService) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req = req.Normalize()

	filled := domain.FilledCriteria(req.Criteria)
	if len(filled) == 0 {
		logger.Debug("No filled criteria, returning no results")
		return domain.EmptyResult(), nil
	}
	tokens := domain.SearchTokens(filled)

	reqLog := logger.With("request", uuid.NewString())
	logger.Section("Stream Search")

	resources, err := s.catalog.ListResources(ctx)
	if err != nil {
		reqLog.Warn("listing resources failed", "err", fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err))
	}
	if len(resources) == 0 {
		reqLog.Warn("no data files found")
		result := domain.EmptyResult()
		result.Error = domain.NoDataFilesMessage
		return result, nil
	}

	reqLog.Info("searching", "files", len(resources), "criteria", len(filled), "limit", req.Limit, "offset", req.Offset)
	started := time.Now()

	run := newSearchRun(ctx, s.timeout, func() {
		reqLog.Warn("search timeout", "after", s.timeout)
	})
	defer run.stop()

	all, scanned, failed := s.dispatch(run, resources, tokens, filled, req.Needed(), reqLog)

	// A caller that went away gets an incomplete result, flagged as such.
	if ctx.Err() != nil {
		run.partial.Store(true)
	}
	partial := run.partial.Load()

	reqLog.Info("search done", "elapsed", time.Since(started), "results", len(all), "partial", partial)

	result := Assemble(all, req.Offset, req.Limit, partial)
	if len(all) == 0 && scanned > 0 && failed == scanned {
		result.Error = domain.NoDataFilesMessage
	}
	return result, nil
}

// dispatch runs workers over resources in batches of s.workers. It returns
// the aggregated records in completion order, the number of resources
// scanned and how many of them failed.
func (s *StreamSearchService) dispatch(
	run *searchRun,
	resources []domain.Resource,
	tokens []string,
	criteria []domain.SearchCriterion,
	needed int,
	reqLog *log.Logger,
) (records []domain.Record, scanned, failed int) {
	sink := &resultSink{}
	batches := 0
	var failures atomic.Int64

	for start := 0; start < len(resources); start += s.workers {
		if sink.len() >= needed || run.cancelled() {
			break
		}

		batch := resources[start:min(start+s.workers, len(resources))]
		perResource := max((needed-sink.len())/len(batch), minPerResource)

		var g errgroup.Group
		g.SetLimit(s.workers)
		for _, res := range batch {
			g.Go(func() error {
				found, ok := s.searchOne(run.ctx, res, tokens, criteria, perResource, reqLog)
				if !ok {
					failures.Add(1)
				}
				sink.append(found)
				return nil
			})
		}
		_ = g.Wait()

		batches++
		scanned = start + len(batch)
		if batches%progressEvery == 0 || scanned >= len(resources) {
			reqLog.Info("progress", "files", fmt.Sprintf("%d/%d", scanned, len(resources)), "results", sink.len())
		}
	}

	run.cancel()
	return sink.snapshot(), scanned, int(failures.Load())
}

// searchOne runs the worker for one resource. Failures, including panics,
// are logged and count as zero results; they never abort the batch.
// ok is false when the resource failed.
func (s *StreamSearchService) searchOne(
	ctx context.Context,
	res domain.Resource,
	tokens []string,
	criteria []domain.SearchCriterion,
	limit int,
	reqLog *log.Logger,
) (records []domain.Record, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			reqLog.Error("worker failed", "resource", res.Key, "err", fmt.Errorf("%w: %v", domain.ErrInternal, r))
			records, ok = nil, false
		}
	}()

	records, err := s.worker.search(ctx, res, tokens, criteria, limit, reqLog)
	if err != nil {
		reqLog.Warn("resource skipped", "resource", res.Key, "err", err)
		return nil, false
	}
	return records, true
}

// Status reports the catalog size.
func (s *StreamSearchService) Status(ctx context.Context) *domain.BackendStatus {
	status := &domain.BackendStatus{
		Status:  domain.StatusOK,
		Backend: domain.SearchBackendStream,
		Names:   []string{},
	}

	resources, err := s.catalog.ListResources(ctx)
	if err != nil {
		status.Status = domain.StatusDegraded
		status.Error = err.Error()
		return status
	}

	status.Count = len(resources)
	for _, r := range resources {
		status.Names = append(status.Names, r.Name())
	}
	return status
}

// Sources lists every resource in the catalog, blacklisted ones excluded.
func (s *StreamSearchService) Sources(ctx context.Context) ([]domain.SourceInfo, error) {
	resources, err := s.catalog.ListResources(ctx)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}

	sources := make([]domain.SourceInfo, 0, len(resources))
	for _, r := range resources {
		if s.worker.blacklist.Contains(r) {
			continue
		}
		sources = append(sources, domain.SourceInfo{Name: r.Name(), SizeBytes: r.Size})
	}
	return sources, nil
}
