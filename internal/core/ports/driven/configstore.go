package driven

// ConfigStore holds persisted settings under dotted keys such as
// "store.bucket" or "search.timeout". The settings service layers
// environment overrides and defaults on top and validates every value.
//
// Values come back in the shapes the backing format decodes to: a TOML
// file yields int64 integers and []any lists, so the typed getters accept
// those alongside the plain Go types a caller may Set.
type ConfigStore interface {
	// Get returns the raw value of key and whether it is present.
	Get(key string) (any, bool)

	// GetString returns "" when key is missing or not a string.
	GetString(key string) string

	// GetInt returns 0 when key is missing or not numeric.
	GetInt(key string) int

	// GetBool returns false when key is missing or not a boolean.
	GetBool(key string) bool

	// GetStringSlice returns list settings such as search.extensions.
	GetStringSlice(key string) []string

	// Set stores a value. The file store persists it at once; others
	// may wait for Save.
	Set(key string, value any) error

	// Save persists every value.
	Save() error

	// Load replaces in-memory values with the persisted ones.
	Load() error

	// Path returns where the settings are persisted.
	Path() string
}
