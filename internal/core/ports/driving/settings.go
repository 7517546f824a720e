package driving

import "github.com/custodia-labs/docmeta/internal/core/domain"

// SettingsService manages extraction settings.
type SettingsService interface {
	// Extraction returns the effective extraction config: defaults, then the
	// config file, then environment overrides.
	Extraction() (domain.ExtractionConfig, error)

	// Get returns a raw configuration value by dotted key.
	Get(key string) (any, bool)

	// Set stores a raw configuration value after validating it.
	Set(key, value string) error

	// Unset removes a stored value, or a whole table of them, so the
	// default applies again.
	Unset(key string) error

	// Keys returns all stored keys.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.ExtractionConfig
}
