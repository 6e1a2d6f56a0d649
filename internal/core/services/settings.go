package services

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-scan/internal/core/domain"
	"github.com/custodia-labs/sercha-scan/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-scan/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyStoreDriver     = "store.driver"
	keyStoreEndpoint   = "store.endpoint"
	keyStoreRegion     = "store.region"
	keyStoreBucket     = "store.bucket"
	keyStoreAccessKey  = "store.access_key_id"
	keyStoreSecretKey  = "store.secret_access_key"
	keyStorePrefix     = "store.prefix"
	keyStoreUseSSL     = "store.use_ssl"
	keyStoreLocalRoot  = "store.local_root"
	keySearchBackend   = "search.backend"
	keySearchWorkers   = "search.workers"
	keySearchTimeout   = "search.timeout"
	keySearchTTL       = "search.catalog_ttl"
	keySearchExts      = "search.extensions"
	keySearchBlacklist = "search.blacklist"
	keyIndexDataDir    = "index.data_dir"
	keyIndexWatch      = "index.watch"
	keyIndexSyncPrefix = "index.sync_prefix"
	keyBridgeURL       = "bridge.url"
	keyBridgeSecret    = "bridge.secret"
	keyBridgeTimeout   = "bridge.timeout"
	keyServerAddr      = "server.addr"
	keyServerSecret    = "server.secret"
	keyServerOrigin    = "server.allowed_origin"
	keyServerRate      = "server.rate_limit"
	keyServerBurst     = "server.rate_burst"
	keySchedEnabled    = "scheduler.enabled"
	keySchedCatalog    = "scheduler.catalog_refresh"
	keySchedIndexSync  = "scheduler.index_sync"
	keyLogFormat       = "log.format"
	keyLogLevel        = "log.level"
)

// keyKind is how a config key is parsed and validated.
type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
	kindBool
	kindDuration
	kindList
)

var keyKinds = map[string]keyKind{
	keyStoreDriver:     kindString,
	keyStoreEndpoint:   kindString,
	keyStoreRegion:     kindString,
	keyStoreBucket:     kindString,
	keyStoreAccessKey:  kindString,
	keyStoreSecretKey:  kindString,
	keyStorePrefix:     kindString,
	keyStoreUseSSL:     kindBool,
	keyStoreLocalRoot:  kindString,
	keySearchBackend:   kindString,
	keySearchWorkers:   kindInt,
	keySearchTimeout:   kindDuration,
	keySearchTTL:       kindDuration,
	keySearchExts:      kindList,
	keySearchBlacklist: kindList,
	keyIndexDataDir:    kindString,
	keyIndexWatch:      kindBool,
	keyIndexSyncPrefix: kindString,
	keyBridgeURL:       kindString,
	keyBridgeSecret:    kindString,
	keyBridgeTimeout:   kindDuration,
	keyServerAddr:      kindString,
	keyServerSecret:    kindString,
	keyServerOrigin:    kindString,
	keyServerRate:      kindFloat,
	keyServerBurst:     kindInt,
	keySchedEnabled:    kindBool,
	keySchedCatalog:    kindString,
	keySchedIndexSync:  kindString,
	keyLogFormat:       kindString,
	keyLogLevel:        kindString,
}

// Environment variables that override the config file.
var envOverrides = []struct {
	env string
	key string
}{
	{"STORE_DRIVER", keyStoreDriver},
	{"S3_ENDPOINT", keyStoreEndpoint},
	{"S3_REGION", keyStoreRegion},
	{"S3_BUCKET", keyStoreBucket},
	{"S3_ACCESS_KEY_ID", keyStoreAccessKey},
	{"S3_SECRET_ACCESS_KEY", keyStoreSecretKey},
	{"R2_DATA_PREFIX", keyStorePrefix},
	{"S3_PREFIX", keyIndexSyncPrefix},
	{"DATA_DIR", keyIndexDataDir},
	{"SEARCH_BACKEND", keySearchBackend},
	{"VPS_SEARCH_URL", keyBridgeURL},
	{"VPS_BRIDGE_SECRET", keyBridgeSecret},
	{"BRIDGE_SECRET", keyServerSecret},
	{"ALLOWED_ORIGIN", keyServerOrigin},
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
// getenv resolves environment overrides; nil means os.Getenv.
func NewSettingsService(configStore driven.ConfigStore, getenv func(string) string) *SettingsService {
	if getenv == nil {
		getenv = os.Getenv
	}
	return &SettingsService{
		configStore: configStore,
		getenv:      getenv,
	}
}

// Load resolves settings from defaults, the config file and the environment,
// in increasing order of precedence.
func (s *SettingsService) Load() (*domain.Settings, error) {
	d := domain.DefaultSettings()
	v := s.resolver()

	settings := &domain.Settings{
		Store: domain.StoreSettings{
			Driver:          domain.StoreDriver(v.str(keyStoreDriver, d.Store.Driver.String())),
			Endpoint:        v.str(keyStoreEndpoint, d.Store.Endpoint),
			Region:          v.str(keyStoreRegion, d.Store.Region),
			Bucket:          v.str(keyStoreBucket, d.Store.Bucket),
			AccessKeyID:     v.str(keyStoreAccessKey, d.Store.AccessKeyID),
			SecretAccessKey: v.str(keyStoreSecretKey, d.Store.SecretAccessKey),
			Prefix:          v.str(keyStorePrefix, d.Store.Prefix),
			UseSSL:          v.boolean(keyStoreUseSSL, d.Store.UseSSL),
			LocalRoot:       v.str(keyStoreLocalRoot, d.Store.LocalRoot),
		},
		Search: domain.SearchSettings{
			Backend:    domain.SearchBackend(v.str(keySearchBackend, "")),
			Workers:    v.integer(keySearchWorkers, d.Search.Workers),
			Timeout:    v.duration(keySearchTimeout, d.Search.Timeout),
			CatalogTTL: v.duration(keySearchTTL, d.Search.CatalogTTL),
			Extensions: v.list(keySearchExts, d.Search.Extensions),
			Blacklist:  v.list(keySearchBlacklist, d.Search.Blacklist),
		},
		Index: domain.IndexSettings{
			DataDir:    v.str(keyIndexDataDir, d.Index.DataDir),
			Watch:      v.boolean(keyIndexWatch, d.Index.Watch),
			SyncPrefix: v.str(keyIndexSyncPrefix, d.Index.SyncPrefix),
		},
		Bridge: domain.BridgeSettings{
			URL:     strings.TrimRight(v.str(keyBridgeURL, d.Bridge.URL), "/"),
			Secret:  v.str(keyBridgeSecret, d.Bridge.Secret),
			Timeout: v.duration(keyBridgeTimeout, d.Bridge.Timeout),
		},
		Server: domain.ServerSettings{
			Addr:          v.str(keyServerAddr, d.Server.Addr),
			Secret:        v.str(keyServerSecret, d.Server.Secret),
			AllowedOrigin: v.str(keyServerOrigin, d.Server.AllowedOrigin),
			RateLimit:     v.float(keyServerRate, d.Server.RateLimit),
			RateBurst:     v.integer(keyServerBurst, d.Server.RateBurst),
		},
		Scheduler: domain.SchedulerSettings{
			Enabled:        v.boolean(keySchedEnabled, d.Scheduler.Enabled),
			CatalogRefresh: v.str(keySchedCatalog, d.Scheduler.CatalogRefresh),
			IndexSync:      v.str(keySchedIndexSync, d.Scheduler.IndexSync),
		},
		Log: domain.LogSettings{
			Format: v.str(keyLogFormat, d.Log.Format),
			Level:  v.str(keyLogLevel, d.Log.Level),
		},
	}

	if port := s.getenv("PORT"); port != "" {
		settings.Server.Addr = ":" + port
	}

	// A bridge URL selects the bridge backend unless one is chosen explicitly.
	if settings.Search.Backend == "" {
		settings.Search.Backend = d.Search.Backend
		if settings.Bridge.URL != "" {
			settings.Search.Backend = domain.SearchBackendBridge
		}
	}

	if !settings.Search.Backend.IsValid() {
		return nil, fmt.Errorf("%w: search backend %q", domain.ErrInvalidInput, settings.Search.Backend)
	}
	if !settings.Store.Driver.IsValid() {
		return nil, fmt.Errorf("%w: store driver %q", domain.ErrInvalidInput, settings.Store.Driver)
	}
	if v.err != nil {
		return nil, v.err
	}

	return settings, nil
}

// Get returns the raw value of a config key from the config file.
func (s *SettingsService) Get(key string) (any, bool) {
	return s.configStore.Get(key)
}

// Set validates a value for key and persists it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := keyKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	parsed, err := parseValue(kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
	}

	switch key {
	case keySearchBackend:
		if !domain.SearchBackend(value).IsValid() {
			return fmt.Errorf("%w: invalid search backend: %s", domain.ErrInvalidInput, value)
		}
	case keyStoreDriver:
		if !domain.StoreDriver(value).IsValid() {
			return fmt.Errorf("%w: invalid store driver: %s", domain.ErrInvalidInput, value)
		}
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return s.configStore.Save()
}

// Keys returns every known config key, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(keyKinds))
	for k := range keyKinds {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Path returns the config file path.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

// parseValue converts a CLI value to the stored representation.
func parseValue(kind keyKind, value string) (any, error) {
	switch kind {
	case kindInt:
		return strconv.Atoi(value)
	case kindFloat:
		return strconv.ParseFloat(value, 64)
	case kindBool:
		return strconv.ParseBool(value)
	case kindDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return nil, err
		}
		return value, nil
	case kindList:
		return splitList(value), nil
	default:
		return value, nil
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// resolver reads a key from the environment first, then the config store.
// The first malformed value is kept in err.
type resolver struct {
	s   *SettingsService
	env map[string]string
	err error
}

func (s *SettingsService) resolver() *resolver {
	env := make(map[string]string)
	for _, o := range envOverrides {
		if val := s.getenv(o.env); val != "" {
			if _, set := env[o.key]; !set {
				env[o.key] = val
			}
		}
	}
	return &resolver{s: s, env: env}
}

// raw returns the environment override of key, if any.
func (r *resolver) raw(key string) (string, bool) {
	val, ok := r.env[key]
	return val, ok
}

func (r *resolver) fail(key string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
	}
}

func (r *resolver) str(key, def string) string {
	if val, ok := r.raw(key); ok {
		return val
	}
	if val := r.s.configStore.GetString(key); val != "" {
		return val
	}
	return def
}

func (r *resolver) integer(key string, def int) int {
	if val, ok := r.raw(key); ok {
		n, err := strconv.Atoi(val)
		if err != nil {
			r.fail(key, err)
			return def
		}
		return n
	}
	if _, ok := r.s.configStore.Get(key); ok {
		return r.s.configStore.GetInt(key)
	}
	return def
}

func (r *resolver) float(key string, def float64) float64 {
	val, ok := r.s.configStore.Get(key)
	if !ok {
		return def
	}
	switch f := val.(type) {
	case float64:
		return f
	case int64:
		return float64(f)
	case int:
		return float64(f)
	default:
		r.fail(key, fmt.Errorf("not a number: %v", val))
		return def
	}
}

func (r *resolver) boolean(key string, def bool) bool {
	if _, ok := r.s.configStore.Get(key); ok {
		return r.s.configStore.GetBool(key)
	}
	return def
}

func (r *resolver) duration(key string, def time.Duration) time.Duration {
	val := r.s.configStore.GetString(key)
	if val == "" {
		return def
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		r.fail(key, err)
		return def
	}
	return d
}

func (r *resolver) list(key string, def []string) []string {
	if vals := r.s.configStore.GetStringSlice(key); len(vals) > 0 {
		return vals
	}
	if val := r.s.configStore.GetString(key); val != "" {
		return splitList(val)
	}
	return def
}
