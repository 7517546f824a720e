package memory

import (
	"maps"
	"sync"
	"time"

	"github.com/custodia-labs/docmeta/internal/adapters/driven/config/values"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in memory. It backs tests and runs started
// with --no-config, where settings come from defaults and the environment.
type ConfigStore struct {
	mu     sync.RWMutex
	values values.Map
}

// NewConfigStore creates an empty store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{values: make(values.Map)}
}

// NewConfigStoreWith creates a store seeded with a copy of settings keyed
// in dot notation.
func NewConfigStoreWith(settings map[string]any) *ConfigStore {
	s := NewConfigStore()
	maps.Copy(s.values, settings)
	return s
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *ConfigStore) String(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.String(key)
}

func (s *ConfigStore) Int(key string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Int(key)
}

func (s *ConfigStore) Float(key string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Float(key)
}

func (s *ConfigStore) Bool(key string) (bool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Bool(key)
}

func (s *ConfigStore) Duration(key string) (time.Duration, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Duration(key)
}

func (s *ConfigStore) Strings(key string) ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Strings(key)
}

func (s *ConfigStore) Tables(key string) ([]map[string]any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Tables(key)
}

func (s *ConfigStore) Section(prefix string) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Section(prefix)
}

func (s *ConfigStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Keys()
}

func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *ConfigStore) Unset(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values.Delete(key)
	return nil
}

// Save is a no-op; nothing outlives the process.
func (s *ConfigStore) Save() error {
	return nil
}

// Load is a no-op.
func (s *ConfigStore) Load() error {
	return nil
}

// Path returns ":memory:".
func (s *ConfigStore) Path() string {
	return ":memory:"
}
