package memory

import (
	"maps"
	"sync"

	"github.com/custodia-labs/sercha-scan/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in memory. Save snapshots the values in the
// shapes a TOML round trip produces (int64 integers, []any lists) and Load
// restores that snapshot, so callers see what a reloaded config file holds.
type ConfigStore struct {
	mu      sync.RWMutex
	values  map[string]any
	saved   map[string]any
	saves   int
	saveErr error
}

// NewConfigStore creates an empty store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{
		values: make(map[string]any),
		saved:  make(map[string]any),
	}
}

// Get returns the value stored under a dotted key such as "store.bucket".
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok
}

// GetString returns a string value, or "" for missing or non-string values.
func (s *ConfigStore) GetString(key string) string {
	str, _ := s.getOrNil(key).(string)
	return str
}

// GetInt returns an integer value in any of the numeric shapes settings use.
func (s *ConfigStore) GetInt(key string) int {
	switch v := s.getOrNil(key).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// GetBool returns a boolean value, or false.
func (s *ConfigStore) GetBool(key string) bool {
	b, _ := s.getOrNil(key).(bool)
	return b
}

// GetStringSlice returns list settings such as search.extensions.
func (s *ConfigStore) GetStringSlice(key string) []string {
	switch v := s.getOrNil(key).(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

func (s *ConfigStore) getOrNil(key string) any {
	val, _ := s.Get(key)
	return val
}

// Set stores a value as given. It is not persisted until Save.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Save snapshots the current values, or returns the error set by FailSave.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = make(map[string]any, len(s.values))
	for k, v := range s.values {
		s.saved[k] = persisted(v)
	}
	s.saves++
	return nil
}

// Load replaces the current values with the last snapshot.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = maps.Clone(s.saved)
	return nil
}

// Path returns a placeholder location.
func (s *ConfigStore) Path() string {
	return ":memory:"
}

// Saves reports how many times Save succeeded.
func (s *ConfigStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// FailSave makes subsequent Save calls return err. A nil err clears it.
func (s *ConfigStore) FailSave(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

// persisted converts a value to the shape the TOML decoder yields for it.
func persisted(v any) any {
	switch t := v.(type) {
	case int:
		return int64(t)
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	default:
		return v
	}
}
