package domain

import "time"

const unknownDescription = "Unknown"

// SearchBackend selects the strategy serving search requests.
type SearchBackend string

// Available search backends.
const (
	// SearchBackendStream scans flat files in an object store concurrently.
	SearchBackendStream SearchBackend = "stream"

	// SearchBackendIndex queries local SQLite FTS5 databases.
	SearchBackendIndex SearchBackend = "index"

	// SearchBackendBridge forwards requests to a remote bridge.
	SearchBackendBridge SearchBackend = "bridge"
)

// IsValid returns true if the backend is recognised.
func (b SearchBackend) IsValid() bool {
	switch b {
	case SearchBackendStream, SearchBackendIndex, SearchBackendBridge:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b SearchBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b SearchBackend) Description() string {
	switch b {
	case SearchBackendStream:
		return "Stream (object store scan)"
	case SearchBackendIndex:
		return "Index (SQLite FTS5)"
	case SearchBackendBridge:
		return "Bridge (remote search API)"
	default:
		return unknownDescription
	}
}

// AllSearchBackends returns all backends in display order.
func AllSearchBackends() []SearchBackend {
	return []SearchBackend{SearchBackendStream, SearchBackendIndex, SearchBackendBridge}
}

// StoreDriver identifies the object store implementation.
type StoreDriver string

// Available store drivers.
const (
	StoreDriverS3    StoreDriver = "s3"
	StoreDriverMinio StoreDriver = "minio"
	StoreDriverLocal StoreDriver = "local"
)

// IsValid returns true if the driver is recognised.
func (d StoreDriver) IsValid() bool {
	switch d {
	case StoreDriverS3, StoreDriverMinio, StoreDriverLocal:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (d StoreDriver) String() string {
	return string(d)
}

// StoreSettings configures the object store holding the flat files.
type StoreSettings struct {
	Driver          StoreDriver
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	// Prefix restricts listing to keys under it.
	Prefix string
	UseSSL bool
	// LocalRoot is the directory scanned by the local driver.
	LocalRoot string
}

// IsConfigured returns true if the store has enough settings to connect.
func (s StoreSettings) IsConfigured() bool {
	if s.Driver == StoreDriverLocal {
		return s.LocalRoot != ""
	}
	return s.Bucket != "" && s.AccessKeyID != "" && s.SecretAccessKey != ""
}

// SearchSettings holds search behaviour configuration.
type SearchSettings struct {
	Backend SearchBackend
	// Workers is the batch width of the orchestrator.
	Workers int
	// Timeout is the global deadline of one request.
	Timeout time.Duration
	// CatalogTTL is how long a resource listing is reused.
	CatalogTTL time.Duration
	// Extensions are the supported resource extensions.
	Extensions []string
	// Blacklist holds resource display names that are never scanned.
	Blacklist []string
}

// IndexSettings configures the SQLite FTS5 backend.
type IndexSettings struct {
	DataDir string
	// Watch reloads databases when files appear in DataDir.
	Watch bool
	// SyncPrefix is the object store prefix holding .db files.
	SyncPrefix string
}

// BridgeSettings configures the remote bridge backend.
type BridgeSettings struct {
	URL     string
	Secret  string
	Timeout time.Duration
}

// ServerSettings configures the HTTP surface.
type ServerSettings struct {
	Addr          string
	Secret        string
	AllowedOrigin string
	RateLimit     float64
	RateBurst     int
}

// SchedulerSettings configures background tasks as cron specs.
// An empty spec disables the task.
type SchedulerSettings struct {
	Enabled        bool
	CatalogRefresh string
	IndexSync      string
}

// LogSettings configures the logger.
type LogSettings struct {
	// Format is "text", "logfmt" or "json".
	Format string
	// Level is the minimum level when not verbose.
	Level string
}

// Settings is the full runtime configuration.
type Settings struct {
	Search    SearchSettings
	Store     StoreSettings
	Index     IndexSettings
	Bridge    BridgeSettings
	Server    ServerSettings
	Scheduler SchedulerSettings
	Log       LogSettings
}

// Default values.
const (
	DefaultWorkers       = 10
	DefaultSearchTimeout = 60 * time.Second
	DefaultCatalogTTL    = 5 * time.Minute
	DefaultBridgeTimeout = 30 * time.Second
	DefaultPrefix        = "data-files/"
	DefaultServerAddr    = ":5050"
)

// DefaultExtensions returns the supported resource extensions.
func DefaultExtensions() []string {
	return []string{".txt", ".csv", ".log", ".json", ".tsv", ".sql", ".dat"}
}

// DefaultBlacklist returns the resource names excluded by default.
func DefaultBlacklist() []string {
	return []string{"Pass'Sport.csv", "Pass'Sport", "PassSport.csv", "PassSport"}
}

// DefaultSettings returns the default configuration.
func DefaultSettings() Settings {
	return Settings{
		Search: SearchSettings{
			Backend:    SearchBackendStream,
			Workers:    DefaultWorkers,
			Timeout:    DefaultSearchTimeout,
			CatalogTTL: DefaultCatalogTTL,
			Extensions: DefaultExtensions(),
			Blacklist:  DefaultBlacklist(),
		},
		Store: StoreSettings{
			Driver: StoreDriverS3,
			Region: "auto",
			Prefix: DefaultPrefix,
			UseSSL: true,
		},
		Index: IndexSettings{
			DataDir: "./data",
			Watch:   true,
		},
		Bridge: BridgeSettings{
			Timeout: DefaultBridgeTimeout,
		},
		Server: ServerSettings{
			Addr:      DefaultServerAddr,
			RateLimit: 20,
			RateBurst: 40,
		},
		Scheduler: SchedulerSettings{
			Enabled:        true,
			CatalogRefresh: "@every 5m",
			IndexSync:      "@every 1h",
		},
		Log: LogSettings{
			Format: "text",
			Level:  "warn",
		},
	}
}
