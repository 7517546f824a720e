package driven

import "time"

// ConfigStore persists docmeta settings under dotted keys such as
// "models.primary.model" or "cleaning.selection_mappings.:selected:".
//
// Typed getters report false when the key is absent or holds a value of
// another kind, leaving the caller to apply its default.
type ConfigStore interface {
	// Get returns the raw value at key.
	Get(key string) (any, bool)

	String(key string) (string, bool)
	Int(key string) (int, bool)
	Float(key string) (float64, bool)
	Bool(key string) (bool, bool)

	// Duration reads "90s" style strings or a number of seconds. A present
	// value that is neither yields an error.
	Duration(key string) (time.Duration, bool, error)

	// Strings returns a list value.
	Strings(key string) ([]string, bool)

	// Tables returns an array of tables, such as field_map.
	Tables(key string) ([]map[string]any, bool)

	// Section returns the string values below prefix keyed by the rest of
	// their key.
	Section(prefix string) map[string]string

	// Keys returns every stored key, sorted.
	Keys() []string

	// Set stores a value. Stores backed by a file persist immediately.
	Set(key string, value any) error

	// Unset removes key and every key below it. Removing a missing key
	// is not an error.
	Unset(key string) error

	// Save persists the current settings.
	Save() error

	// Load replaces the current settings with the persisted ones.
	Load() error

	// Path returns where the settings are persisted.
	Path() string
}
