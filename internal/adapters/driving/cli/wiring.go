package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/sercha-scan/internal/adapters/driven/bridge"
	"github.com/custodia-labs/sercha-scan/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-scan/internal/adapters/driven/objectstore/local"
	"github.com/custodia-labs/sercha-scan/internal/adapters/driven/objectstore/minio"
	"github.com/custodia-labs/sercha-scan/internal/adapters/driven/objectstore/s3"
	"github.com/custodia-labs/sercha-scan/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sercha-scan/internal/core/domain"
	"github.com/custodia-labs/sercha-scan/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-scan/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-scan/internal/core/services"
	"github.com/custodia-labs/sercha-scan/internal/logger"
)

// Services used by the commands. They are built lazily from the loaded
// settings, so a command only opens what it needs. Tests replace them.
var (
	settingsService  driving.SettingsService
	searchService    driving.SearchService
	inventoryService driving.InventoryService
	indexerService   driving.IndexerService
	indexSyncer      driven.IndexSyncer
	scheduler        driving.Scheduler

	appSettings *domain.Settings

	// indexStore is shared by the index backend, the indexer and the watcher.
	indexStore *sqlite.IndexStore
	// catalog is the cached listing of the stream backend.
	catalog *services.CachedCatalog

	closers []func() error
)

func newSettingsService(dir string) (driving.SettingsService, error) {
	store, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, err
	}
	return services.NewSettingsService(store, nil), nil
}

// currentSettings returns the loaded settings, or defaults before loading.
func currentSettings() *domain.Settings {
	if appSettings == nil {
		d := domain.DefaultSettings()
		return &d
	}
	return appSettings
}

// requireBackend builds the configured search backend once.
func requireBackend(ctx context.Context) error {
	if searchService != nil {
		return nil
	}
	cfg := currentSettings()

	var backend driving.Backend
	switch cfg.Search.Backend {
	case domain.SearchBackendStream:
		store, err := newObjectStore(ctx, cfg.Store, cfg.Search.Extensions)
		if err != nil {
			return err
		}
		catalog = services.NewCachedCatalog(store, cfg.Search.CatalogTTL)
		backend = services.NewStreamSearchService(catalog, store, services.StreamSearchConfig{
			Workers:   cfg.Search.Workers,
			Timeout:   cfg.Search.Timeout,
			Blacklist: cfg.Search.Blacklist,
		})
		logger.Debug("Search backend: stream over %s", store.Name())

	case domain.SearchBackendIndex:
		idx, err := openIndexStore(ctx)
		if err != nil {
			return err
		}
		backend = services.NewIndexedSearchService(idx)
		logger.Debug("Search backend: index in %s", idx.Dir())

	case domain.SearchBackendBridge:
		client, err := bridge.NewClient(bridge.Config{
			BaseURL: cfg.Bridge.URL,
			Secret:  cfg.Bridge.Secret,
			Timeout: cfg.Bridge.Timeout,
		})
		if err != nil {
			return err
		}
		backend = services.NewBridgeSearchService(client)
		logger.Debug("Search backend: bridge at %s", cfg.Bridge.URL)

	default:
		return fmt.Errorf("%w: search backend %q", domain.ErrUnsupportedType, cfg.Search.Backend)
	}

	searchService = backend
	inventoryService = backend
	return nil
}

// newObjectStore builds the object store for the configured driver.
func newObjectStore(ctx context.Context, cfg domain.StoreSettings, exts []string) (driven.ObjectStore, error) {
	if !cfg.IsConfigured() {
		return nil, domain.ErrStoreNotConfigured
	}
	switch cfg.Driver {
	case domain.StoreDriverS3:
		return s3.New(ctx, cfg, exts)
	case domain.StoreDriverMinio:
		return minio.New(cfg, exts)
	case domain.StoreDriverLocal:
		return local.NewStore(cfg.LocalRoot, exts)
	default:
		return nil, fmt.Errorf("%w: store driver %q", domain.ErrUnsupportedType, cfg.Driver)
	}
}

// openIndexStore opens the SQLite index directory once.
func openIndexStore(ctx context.Context) (*sqlite.IndexStore, error) {
	if indexStore != nil {
		return indexStore, nil
	}
	idx, err := sqlite.NewIndexStore(ctx, currentSettings().Index.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	indexStore = idx
	closers = append(closers, idx.Close)
	return idx, nil
}

// requireIndexer builds the indexer over the SQLite index directory.
func requireIndexer(ctx context.Context) error {
	if indexerService != nil {
		return nil
	}
	idx, err := openIndexStore(ctx)
	if err != nil {
		return err
	}
	indexerService = services.NewIndexerService(idx, idx, currentSettings().Search.Extensions)
	return nil
}

// requireSyncer builds the index syncer. Only S3-compatible stores can
// hold databases for download.
func requireSyncer(ctx context.Context) error {
	if indexSyncer != nil {
		return nil
	}
	cfg := currentSettings()
	if !cfg.Store.IsConfigured() {
		return domain.ErrStoreNotConfigured
	}
	if cfg.Store.Driver != domain.StoreDriverS3 {
		return fmt.Errorf("%w: index sync needs the s3 driver, got %q", domain.ErrUnsupportedType, cfg.Store.Driver)
	}
	client, err := s3.NewClient(ctx, cfg.Store)
	if err != nil {
		return err
	}
	indexSyncer = s3.NewSyncer(client, cfg.Store.Bucket, cfg.Index.SyncPrefix)
	return nil
}

// requireScheduler builds the scheduler for the active backend.
// The state store records task runs; failing to open it only disables history.
func requireScheduler(ctx context.Context) error {
	if scheduler != nil {
		return nil
	}
	cfg := currentSettings()

	deps := services.SchedulerDeps{DataDir: cfg.Index.DataDir}
	if catalog != nil {
		deps.Catalog = catalog
	}
	if cfg.Search.Backend == domain.SearchBackendIndex {
		if err := requireSyncer(ctx); err != nil {
			logger.Debug("Index sync disabled: %v", err)
		} else {
			deps.Syncer = indexSyncer
		}
		if indexStore != nil {
			deps.Index = indexStore
		}
	}

	state, err := sqlite.NewStateStore(configDir)
	if err != nil {
		logger.Warn("Scheduler history disabled: %v", err)
	} else {
		closers = append(closers, state.Close)
		deps.Store = state.SchedulerStore()
	}

	scheduler = services.NewScheduler(cfg.Scheduler, deps)
	return nil
}

// closeServices releases every opened resource.
func closeServices() {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		errs = append(errs, closers[i]())
	}
	closers = nil
	if err := errors.Join(errs...); err != nil {
		logger.Warn("Failed to release resources: %v", err)
	}
}
