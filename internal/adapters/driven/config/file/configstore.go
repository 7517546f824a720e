package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/docmeta/internal/adapters/driven/config/values"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
)

// ConfigFile is the settings file name inside the docmeta home.
const ConfigFile = "config.toml"

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps docmeta settings in config.toml. Keys are addressed in
// dot notation and written back as nested tables; arrays of tables such as
// field_map are kept whole.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	values   values.Map
}

// NewConfigStore opens the settings in configDir, creating the directory
// when needed. An empty configDir means DefaultDir(). A missing file is an
// empty configuration.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, ConfigFile),
		values:   make(values.Map),
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
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

// Set stores a value and rewrites the file. On a write failure the
// previous value is restored.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.values[key]
	s.values[key] = value
	if err := s.save(); err != nil {
		if had {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		return err
	}
	return nil
}

// Unset removes key and everything below it, then rewrites the file.
func (s *ConfigStore) Unset(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.values.Delete(key) {
		return nil
	}
	return s.save()
}

// Save rewrites the file from the current settings.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// save writes through a temporary file so a failed write never leaves a
// truncated config.toml. Caller holds the lock.
func (s *ConfigStore) save() error {
	data, err := toml.Marshal(s.values.Nest())
	if err != nil {
		return fmt.Errorf("encode %s: %w", ConfigFile, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.filePath), ConfigFile+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.filePath)
}

// Load re-reads the file. A missing file empties the store.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		s.values = make(values.Map)
		return nil
	}
	if err != nil {
		return err
	}

	var tree map[string]any
	if err := toml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("parse %s: %w", s.filePath, err)
	}
	s.values = values.Flatten(tree)
	return nil
}

// Path returns the config.toml path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
