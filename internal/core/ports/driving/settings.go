package driving

import "github.com/custodia-labs/sercha-scan/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Load resolves settings from defaults, the config file and the environment.
	Load() (*domain.Settings, error)

	// Get returns the raw value of a config key.
	Get(key string) (any, bool)

	// Set validates and persists a config key.
	Set(key, value string) error

	// Keys returns every known config key.
	Keys() []string

	// Path returns the config file path.
	Path() string
}
