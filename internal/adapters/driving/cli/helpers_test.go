package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-scan/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-scan/internal/core/domain"
	"github.com/custodia-labs/sercha-scan/internal/core/services"
)

// mockBackend implements driving.Backend for command tests.
type mockBackend struct {
	result   *domain.SearchResult
	err      error
	requests []domain.SearchRequest

	status     *domain.BackendStatus
	sources    []domain.SourceInfo
	sourcesErr error
}

func (m *mockBackend) Search(_ context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return domain.EmptyResult(), nil
	}
	return m.result, nil
}

func (m *mockBackend) Status(_ context.Context) *domain.BackendStatus {
	if m.status == nil {
		return &domain.BackendStatus{Status: domain.StatusOK, Backend: domain.SearchBackendStream}
	}
	return m.status
}

func (m *mockBackend) Sources(_ context.Context) ([]domain.SourceInfo, error) {
	return m.sources, m.sourcesErr
}

// mockIndexer implements driving.IndexerService for command tests.
type mockIndexer struct {
	report  *domain.IndexReport
	stats   *domain.IndexStats
	sources []domain.SourceCount
	removed int64
	records []domain.Record
	err     error

	calls []string
}

func (m *mockIndexer) AddPath(_ context.Context, db, path string) (*domain.IndexReport, error) {
	m.calls = append(m.calls, "add "+db+" "+path)
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

func (m *mockIndexer) Stats(_ context.Context, db string) (*domain.IndexStats, error) {
	m.calls = append(m.calls, "stats "+db)
	return m.stats, m.err
}

func (m *mockIndexer) Sources(_ context.Context, db string) ([]domain.SourceCount, error) {
	m.calls = append(m.calls, "sources "+db)
	return m.sources, m.err
}

func (m *mockIndexer) DeleteSource(_ context.Context, db, source string) (int64, error) {
	m.calls = append(m.calls, "delete "+db+" "+source)
	return m.removed, m.err
}

func (m *mockIndexer) Clear(_ context.Context, db string) error {
	m.calls = append(m.calls, "clear "+db)
	return m.err
}

func (m *mockIndexer) Query(_ context.Context, db, query string, limit int) ([]domain.Record, error) {
	m.calls = append(m.calls, "query "+db+" "+query)
	if limit < len(m.records) {
		return m.records[:limit], m.err
	}
	return m.records, m.err
}

// mockSyncer implements driven.IndexSyncer for command tests.
type mockSyncer struct {
	files   []string
	err     error
	dataDir string
}

func (m *mockSyncer) SyncDatabases(_ context.Context, dataDir string) ([]string, error) {
	m.dataDir = dataDir
	return m.files, m.err
}

// mockScheduler implements driving.Scheduler for command tests.
type mockScheduler struct {
	started chan struct{}
	stopped bool
}

func (m *mockScheduler) Start(ctx context.Context) error {
	close(m.started)
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockScheduler) Stop() error {
	m.stopped = true
	return nil
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	backend *mockBackend
	indexer *mockIndexer
	syncer    *mockSyncer
	scheduler *mockScheduler
	dir       string
}

// setupTestServices installs mock services and a settings service backed by
// a temporary config directory. State is reset when the test ends.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()

	dir := t.TempDir()
	store, err := file.NewConfigStore(dir)
	require.NoError(t, err)

	ts := &testServices{
		backend:   &mockBackend{},
		indexer:   &mockIndexer{},
		syncer:    &mockSyncer{},
		scheduler: &mockScheduler{started: make(chan struct{})},
		dir:       dir,
	}

	settingsService = services.NewSettingsService(store, func(string) string { return "" })
	searchService = ts.backend
	inventoryService = ts.backend
	indexerService = ts.indexer
	indexSyncer = ts.syncer
	scheduler = ts.scheduler

	t.Cleanup(resetCLIState)
	return ts
}

// resetCLIState clears services and flag values shared between commands.
func resetCLIState() {
	settingsService = nil
	searchService = nil
	inventoryService = nil
	indexerService = nil
	indexSyncer = nil
	scheduler = nil
	appSettings = nil
	indexStore = nil
	catalog = nil
	closers = nil

	verbose = false
	configDir = ""
	searchLimit = domain.DefaultLimit
	searchOffset = 0
	searchJSON = false
	for _, v := range searchFields {
		*v = ""
	}
	sourcesJSON = false
	indexQueryLimit = 10
	tuiPageSize = 0
	serveAddr = ""

	rootCmd.SetArgs(nil)
	rootCmd.SetOut(nil)
	rootCmd.SetErr(nil)
}

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}
