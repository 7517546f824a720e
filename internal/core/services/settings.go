package services

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
	"github.com/custodia-labs/docmeta/internal/core/ports/driving"
	"github.com/custodia-labs/docmeta/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyProfile           = "extraction.profile"
	keyLoader            = "extraction.loader"
	keyAttempts          = "extraction.attempts"
	keyEnableFallback    = "extraction.enable_fallback"
	keyDefaultLanguage   = "extraction.default_language"
	keyTemperature       = "extraction.temperature"
	keyMaxTokens         = "extraction.max_tokens"
	keyPassTimeout       = "extraction.pass_timeout"
	keyRequestsPerSecond = "extraction.requests_per_second"
	keyCleaningSteps     = "extraction.cleaning_steps"

	keyPatternsToRemove      = "cleaning.patterns_to_remove"
	keySelectionMappings     = "cleaning.selection_mappings"
	keyDocNoRegex            = "cleaning.doc_no_regex"
	keyVersionRegex          = "cleaning.version_regex"
	keyUncontrolledCopyRegex = "cleaning.uncontrolled_copy_regex"
	keyLengthThreshold       = "cleaning.length_threshold"
	keyFrequencyThreshold    = "cleaning.frequency_threshold"

	keyMaxLength  = "chunking.max_length"
	keyHeadLength = "chunking.head_length"

	keyFieldMap = "field_map"

	keyPrimaryPrefix  = "models.primary"
	keyFallbackPrefix = "models.fallback"

	// KeyStorageBackend selects the run store ("sqlite" or "memory").
	KeyStorageBackend = "storage.backend"

	// KeyStoragePath is the sqlite database path.
	KeyStoragePath = "storage.path"
)

// Environment overrides applied on top of the config file.
const (
	EnvAttempts        = "SLM_EXTRACTION_ATTEMPTS"
	EnvEnableFallback  = "ENABLE_LLM"
	EnvDefaultLanguage = "DEFAULT_LANGUAGE"
	EnvProvider        = "DOCMETA_PROVIDER"
)

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
	kindBool
	kindDuration
	kindList
	kindProvider
)

var modelKeys = map[string]keyKind{
	"provider":        kindProvider,
	"model":           kindString,
	"api_version":     kindString,
	"endpoint":        kindString,
	"api_key":         kindString,
	"model_env":       kindString,
	"api_version_env": kindString,
	"endpoint_env":    kindString,
	"api_key_env":     kindString,
}

var settingKeys = func() map[string]keyKind {
	keys := map[string]keyKind{
		keyProfile:               kindString,
		keyLoader:                kindString,
		keyAttempts:              kindInt,
		keyEnableFallback:        kindBool,
		keyDefaultLanguage:       kindString,
		keyTemperature:           kindFloat,
		keyMaxTokens:             kindInt,
		keyPassTimeout:           kindDuration,
		keyRequestsPerSecond:     kindFloat,
		keyCleaningSteps:         kindList,
		keyPatternsToRemove:      kindList,
		keyDocNoRegex:            kindString,
		keyVersionRegex:          kindString,
		keyUncontrolledCopyRegex: kindString,
		keyLengthThreshold:       kindInt,
		keyFrequencyThreshold:    kindInt,
		keyMaxLength:             kindInt,
		keyHeadLength:            kindInt,
		KeyStorageBackend:        kindString,
		KeyStoragePath:           kindString,
	}
	for _, prefix := range []string{keyPrimaryPrefix, keyFallbackPrefix} {
		for k, kind := range modelKeys {
			keys[prefix+"."+k] = kind
		}
	}
	return keys
}()

// SettingsService builds the extraction configuration from defaults, the
// config store and environment overrides.
type SettingsService struct {
	configStore driven.ConfigStore
	lookup      domain.LookupFunc
}

// NewSettingsService creates a new settings service. lookup reads
// environment overrides and may be nil.
func NewSettingsService(configStore driven.ConfigStore, lookup domain.LookupFunc) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookup:      lookup,
	}
}

// GetDefaults returns the built-in configuration.
func (s *SettingsService) GetDefaults() domain.ExtractionConfig {
	return domain.DefaultExtractionConfig()
}

// Extraction returns the effective configuration.
func (s *SettingsService) Extraction() (domain.ExtractionConfig, error) {
	cfg := domain.DefaultExtractionConfig()

	// 1. Config store
	cfg.Profile = s.getString(keyProfile, cfg.Profile)
	cfg.Loader = s.getString(keyLoader, cfg.Loader)
	cfg.Attempts = s.getInt(keyAttempts, cfg.Attempts)
	cfg.EnableFallback = s.getBool(keyEnableFallback, cfg.EnableFallback)
	cfg.DefaultLanguage = s.getString(keyDefaultLanguage, cfg.DefaultLanguage)
	cfg.Temperature = s.getFloat(keyTemperature, cfg.Temperature)
	cfg.MaxTokens = s.getInt(keyMaxTokens, cfg.MaxTokens)
	cfg.RequestsPerSecond = s.getFloat(keyRequestsPerSecond, cfg.RequestsPerSecond)
	if v := s.getList(keyCleaningSteps); v != nil {
		cfg.CleaningSteps = v
	}

	timeout, err := s.getDuration(keyPassTimeout, cfg.PassTimeout)
	if err != nil {
		return cfg, err
	}
	cfg.PassTimeout = timeout

	cfg.Primary = s.getModel(keyPrimaryPrefix, cfg.Primary)
	cfg.Fallback = s.getModel(keyFallbackPrefix, cfg.Fallback)

	if v := s.getList(keyPatternsToRemove); v != nil {
		cfg.Cleaning.PatternsToRemove = v
	}
	if m := s.configStore.Section(keySelectionMappings); len(m) > 0 {
		cfg.Cleaning.SelectionMappings = m
	}
	cfg.Cleaning.DocNoRegex = s.getString(keyDocNoRegex, cfg.Cleaning.DocNoRegex)
	cfg.Cleaning.VersionRegex = s.getString(keyVersionRegex, cfg.Cleaning.VersionRegex)
	cfg.Cleaning.UncontrolledCopyRegex = s.getString(keyUncontrolledCopyRegex, cfg.Cleaning.UncontrolledCopyRegex)
	cfg.Cleaning.LengthThreshold = s.getInt(keyLengthThreshold, cfg.Cleaning.LengthThreshold)
	cfg.Cleaning.FrequencyThreshold = s.getInt(keyFrequencyThreshold, cfg.Cleaning.FrequencyThreshold)

	cfg.Chunking.MaxLength = s.getInt(keyMaxLength, cfg.Chunking.MaxLength)
	cfg.Chunking.HeadLength = s.getInt(keyHeadLength, cfg.Chunking.HeadLength)

	fm, err := s.getFieldMap()
	if err != nil {
		return cfg, err
	}
	cfg.FieldMap = fm

	// 2. Environment
	if err := s.applyEnv(&cfg); err != nil {
		return cfg, err
	}

	// 3. Validate
	if cfg.Attempts < 1 {
		return cfg, fmt.Errorf("%w: attempts must be at least 1, got %d", domain.ErrInvalidInput, cfg.Attempts)
	}
	if !cfg.Primary.Provider.IsValid() {
		return cfg, fmt.Errorf("%w: primary provider %q", domain.ErrUnsupportedType, cfg.Primary.Provider)
	}
	if !cfg.Fallback.Provider.IsValid() {
		return cfg, fmt.Errorf("%w: fallback provider %q", domain.ErrUnsupportedType, cfg.Fallback.Provider)
	}
	return cfg, nil
}

func (s *SettingsService) applyEnv(cfg *domain.ExtractionConfig) error {
	if v, ok := s.env(EnvAttempts); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", domain.ErrInvalidInput, EnvAttempts, v)
		}
		cfg.Attempts = n
	}
	if v, ok := s.env(EnvEnableFallback); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a boolean", domain.ErrInvalidInput, EnvEnableFallback, v)
		}
		cfg.EnableFallback = b
	}
	if v, ok := s.env(EnvDefaultLanguage); ok {
		cfg.DefaultLanguage = v
	}
	if v, ok := s.env(EnvProvider); ok {
		p := domain.AIProvider(strings.ToLower(v))
		cfg.Primary.Provider = p
		cfg.Fallback.Provider = p
	}
	return nil
}

func (s *SettingsService) env(key string) (string, bool) {
	if s.lookup == nil {
		return "", false
	}
	v, ok := s.lookup(key)
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Get returns a stored value.
func (s *SettingsService) Get(key string) (any, bool) {
	return s.configStore.Get(key)
}

// Keys returns every recognised setting key, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKeys))
	for k := range settingKeys {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Set parses value according to the key's type and persists it.
func (s *SettingsService) Set(key, value string) error {
	if marker, ok := strings.CutPrefix(key, keySelectionMappings+"."); ok && marker != "" {
		return s.configStore.Set(key, value)
	}

	kind, ok := settingKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var parsed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
		parsed = int64(n)
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, key)
		}
		parsed = f
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		parsed = b
	case kindDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%w: %s must be a duration such as 90s", domain.ErrInvalidInput, key)
		}
		parsed = value
	case kindList:
		parsed = splitList(value)
	case kindProvider:
		p := domain.AIProvider(strings.ToLower(value))
		if !p.IsValid() {
			return fmt.Errorf("%w: provider %q (available: %s)", domain.ErrUnsupportedType, value, providerNames())
		}
		parsed = p.String()
	default:
		parsed = value
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Unset removes a stored setting so its default applies again. Whole
// tables can be cleared: a model block, the selection mappings or the
// field map.
func (s *SettingsService) Unset(key string) error {
	_, known := settingKeys[key]
	switch {
	case known:
	case key == keyFieldMap, key == keySelectionMappings:
	case key == keyPrimaryPrefix, key == keyFallbackPrefix:
	case strings.HasPrefix(key, keySelectionMappings+"."):
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	if err := s.configStore.Unset(key); err != nil {
		return fmt.Errorf("unset %s: %w", key, err)
	}
	return nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (s *SettingsService) getModel(prefix string, def domain.ModelSettings) domain.ModelSettings {
	m := def
	if p, _ := s.configStore.String(prefix + ".provider"); p != "" {
		m.Provider = domain.AIProvider(strings.ToLower(p))
	}
	m.Model = s.getString(prefix+".model", m.Model)
	m.APIVersion = s.getString(prefix+".api_version", m.APIVersion)
	m.Endpoint = s.getString(prefix+".endpoint", m.Endpoint)
	m.APIKey = s.getString(prefix+".api_key", m.APIKey)
	m.ModelEnv = s.getString(prefix+".model_env", m.ModelEnv)
	m.APIVersionEnv = s.getString(prefix+".api_version_env", m.APIVersionEnv)
	m.EndpointEnv = s.getString(prefix+".endpoint_env", m.EndpointEnv)
	m.APIKeyEnv = s.getString(prefix+".api_key_env", m.APIKeyEnv)
	return m
}

func (s *SettingsService) getFieldMap() (domain.FieldMap, error) {
	if _, ok := s.configStore.Get(keyFieldMap); !ok {
		return nil, nil
	}
	tables, ok := s.configStore.Tables(keyFieldMap)
	if !ok {
		return nil, fmt.Errorf("%w: field_map must be an array of tables", domain.ErrInvalidInput)
	}

	fm := make(domain.FieldMap, 0, len(tables))
	for _, entry := range tables {
		canonical, _ := entry["canonical"].(string)
		output, _ := entry["output"].(string)
		if output == "" {
			output = canonical
		}
		fm = append(fm, domain.FieldMapping{Canonical: canonical, Output: output})
	}
	if err := fm.Validate(); err != nil {
		return nil, err
	}
	return fm, nil
}

// warnMistyped logs a stored value that cannot be read as its kind.
func (s *SettingsService) warnMistyped(key, kind string) {
	if _, present := s.configStore.Get(key); present {
		logger.Warn("settings: %s is not %s, using default", key, kind)
	}
}

// getString returns the stored string or defaultVal.
func (s *SettingsService) getString(key, defaultVal string) string {
	if val, _ := s.configStore.String(key); val != "" {
		return val
	}
	return defaultVal
}

// getInt returns the stored integer or defaultVal.
func (s *SettingsService) getInt(key string, defaultVal int) int {
	if n, ok := s.configStore.Int(key); ok {
		return n
	}
	s.warnMistyped(key, "an integer")
	return defaultVal
}

// getBool returns the stored bool or defaultVal.
func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if b, ok := s.configStore.Bool(key); ok {
		return b
	}
	s.warnMistyped(key, "a boolean")
	return defaultVal
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if f, ok := s.configStore.Float(key); ok {
		return f
	}
	s.warnMistyped(key, "a number")
	return defaultVal
}

func (s *SettingsService) getList(key string) []string {
	list, _ := s.configStore.Strings(key)
	return list
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	d, ok, err := s.configStore.Duration(key)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	if !ok {
		return defaultVal, nil
	}
	return d, nil
}

func providerNames() string {
	providers := domain.AllProviders()
	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = p.String()
	}
	return strings.Join(names, ", ")
}
