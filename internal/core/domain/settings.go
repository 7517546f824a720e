package domain

import (
	"maps"
	"slices"
	"strings"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies a model service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderAzure is an Azure OpenAI deployment.
	AIProviderAzure AIProvider = "azure"

	// AIProviderOpenAI is OpenAI cloud API or any compatible server.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderAzure, AIProviderOpenAI, AIProviderAnthropic, AIProviderOllama:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// DefaultEndpoint returns the public endpoint of the provider.
// Azure deployments have no default.
func (p AIProvider) DefaultEndpoint() string {
	switch p {
	case AIProviderOpenAI:
		return "https://api.openai.com/v1"
	case AIProviderAnthropic:
		return "https://api.anthropic.com"
	case AIProviderOllama:
		return "http://localhost:11434"
	default:
		return ""
	}
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderAzure:
		return "Azure OpenAI (cloud)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	default:
		return unknownDescription
	}
}

// AllProviders returns the supported model providers.
func AllProviders() []AIProvider {
	return []AIProvider{
		AIProviderAzure,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderOllama,
	}
}

// ModelSettings describes how to route one model role (primary or fallback).
// Values come from static configuration and may be overridden by
// environment variables named by the *Env fields.
type ModelSettings struct {
	// Provider selects the adapter. Defaults to azure.
	Provider AIProvider `toml:"provider"`

	// Model is the model or deployment name.
	Model string `toml:"model"`

	// APIVersion is the provider API version (Azure only).
	APIVersion string `toml:"api_version"`

	// Endpoint is the service base URL.
	Endpoint string `toml:"endpoint"`

	// APIKey authenticates requests. Prefer APIKeyEnv.
	APIKey string `toml:"api_key,omitempty"`

	// ModelEnv is the base env var for the model name, e.g. AZURE_OPENAI_SLM.
	// A language override is read from <ModelEnv>_<LANG>.
	ModelEnv string `toml:"model_env"`

	// APIVersionEnv is the base env var for the API version.
	APIVersionEnv string `toml:"api_version_env"`

	// EndpointEnv names the env var holding the endpoint.
	EndpointEnv string `toml:"endpoint_env"`

	// APIKeyEnv names the env var holding the API key.
	APIKeyEnv string `toml:"api_key_env"`
}

// LookupFunc reads a setting by name, typically os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Resolve produces the model target for one run in the given language.
// The language override applies only when both the model and API version
// overrides are present. The receiver is never modified so that settings can
// be shared by concurrent runs.
func (s ModelSettings) Resolve(language string, lookup LookupFunc) ModelTarget {
	t := ModelTarget{
		Provider:   s.Provider,
		Model:      s.Model,
		APIVersion: s.APIVersion,
		Endpoint:   s.Endpoint,
		APIKey:     s.APIKey,
	}
	if t.Provider == "" {
		t.Provider = AIProviderAzure
	}

	get := func(key string) (string, bool) {
		if lookup == nil || key == "" {
			return "", false
		}
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return "", false
		}
		return strings.TrimSpace(v), true
	}

	lang := strings.ToUpper(strings.TrimSpace(language))
	langModel, okModel := get(suffixed(s.ModelEnv, lang))
	langVersion, okVersion := get(suffixed(s.APIVersionEnv, lang))
	if lang != "" && okModel && okVersion {
		t.Model, t.APIVersion = langModel, langVersion
	} else {
		if v, ok := get(s.ModelEnv); ok {
			t.Model = v
		}
		if v, ok := get(s.APIVersionEnv); ok {
			t.APIVersion = v
		}
	}
	if v, ok := get(s.EndpointEnv); ok {
		t.Endpoint = v
	}
	if v, ok := get(s.APIKeyEnv); ok {
		t.APIKey = v
	}
	if t.Endpoint == "" {
		t.Endpoint = t.Provider.DefaultEndpoint()
	}
	return t
}

func suffixed(base, lang string) string {
	if base == "" || lang == "" {
		return ""
	}
	return base + "_" + lang
}

// ModelTarget is a fully resolved model route for one call.
type ModelTarget struct {
	Provider   AIProvider
	Model      string
	APIVersion string
	Endpoint   string
	APIKey     string
}

// Validate checks the target carries a model name and endpoint.
func (t ModelTarget) Validate() error {
	if strings.TrimSpace(t.Model) == "" {
		return &ConfigurationError{Field: "model"}
	}
	if strings.TrimSpace(t.Endpoint) == "" {
		return &ConfigurationError{Field: "endpoint"}
	}
	return nil
}

// String identifies the target in logs without exposing credentials.
func (t ModelTarget) String() string {
	return string(t.Provider) + ":" + t.Model
}

// CleaningConfig holds the text cleaning rules.
type CleaningConfig struct {
	// PatternsToRemove are regexes deleted from the text, dot matching newlines.
	PatternsToRemove []string `toml:"patterns_to_remove"`

	// SelectionMappings replaces fixed marker tokens.
	SelectionMappings map[string]string `toml:"selection_mappings"`

	// DocNoRegex matches document number header lines.
	DocNoRegex string `toml:"doc_no_regex"`

	// VersionRegex matches version header lines.
	VersionRegex string `toml:"version_regex"`

	// UncontrolledCopyRegex matches the uncontrolled copy watermark.
	UncontrolledCopyRegex string `toml:"uncontrolled_copy_regex"`

	// LengthThreshold is the minimum length of a line considered for frequency removal.
	LengthThreshold int `toml:"length_threshold"`

	// FrequencyThreshold is the minimum number of repeats for a line to be removed.
	FrequencyThreshold int `toml:"frequency_threshold"`
}

// DefaultCleaningConfig returns the built-in cleaning rules.
func DefaultCleaningConfig() CleaningConfig {
	return CleaningConfig{
		PatternsToRemove: []string{
			`<figure>.*?</figure>`,
			`<!-- PageFooter=".*?" -->`,
			`<!-- PageHeader=".*?" -->`,
		},
		SelectionMappings: map[string]string{
			":selected:":   "☒",
			":unselected:": "☐",
		},
		DocNoRegex:            `Doc No\. : \w{3}-\d+`,
		VersionRegex:          `Version : \d+\.\d+`,
		UncontrolledCopyRegex: `Uncontrolled Copy`,
		LengthThreshold:       10,
		FrequencyThreshold:    10,
	}
}

// Clone returns a deep copy.
func (c CleaningConfig) Clone() CleaningConfig {
	c.PatternsToRemove = slices.Clone(c.PatternsToRemove)
	c.SelectionMappings = maps.Clone(c.SelectionMappings)
	return c
}

// ChunkingConfig bounds the text sent to the model.
type ChunkingConfig struct {
	MaxLength  int `toml:"max_length"`
	HeadLength int `toml:"head_length"`
}

// ExtractionConfig holds the per-run settings.
// It is read-only once loaded; model routing is resolved per document
// language into private ModelTargets.
type ExtractionConfig struct {
	// Profile selects the extraction policy ("sop" or "generic").
	Profile string `toml:"profile"`

	// Loader forces a loader by name. Empty selects by file extension.
	Loader string `toml:"loader"`

	// Primary is the model tried first on every pass.
	Primary ModelSettings `toml:"primary"`

	// Fallback is tried once per pass after primary attempts are exhausted.
	Fallback ModelSettings `toml:"fallback"`

	// Attempts is the number of primary attempts per pass.
	Attempts int `toml:"attempts"`

	// EnableFallback enables the fallback model.
	EnableFallback bool `toml:"enable_fallback"`

	// DefaultLanguage applies when the filename carries no language.
	DefaultLanguage string `toml:"default_language"`

	// Temperature for model calls.
	Temperature float64 `toml:"temperature"`

	// MaxTokens caps the model response.
	MaxTokens int `toml:"max_tokens"`

	// PassTimeout bounds a single model call.
	PassTimeout time.Duration `toml:"pass_timeout"`

	// RequestsPerSecond throttles model calls per client. Zero disables throttling.
	RequestsPerSecond float64 `toml:"requests_per_second"`

	Cleaning CleaningConfig `toml:"cleaning"`
	Chunking ChunkingConfig `toml:"chunking"`

	// CleaningSteps overrides the profile's cleaning step names when set.
	CleaningSteps []string `toml:"cleaning_steps"`

	// FieldMap overrides the profile's output projection when set.
	FieldMap FieldMap `toml:"field_map"`
}

// Defaults used by DefaultExtractionConfig.
const (
	DefaultAttempts    = 3
	DefaultMaxTokens   = 16384
	DefaultMaxLength   = 160000
	DefaultHeadLength  = 80000
	DefaultLanguage    = "en"
	DefaultPassTimeout = 120 * time.Second
)

// DefaultExtractionConfig returns settings with sensible defaults.
// Model names and endpoints are left to the environment.
func DefaultExtractionConfig() ExtractionConfig {
	return ExtractionConfig{
		Profile: "sop",
		Primary: ModelSettings{
			Provider:      AIProviderAzure,
			ModelEnv:      "AZURE_OPENAI_SLM",
			APIVersionEnv: "AZURE_OPENAI_SLM_API_VERSION",
			EndpointEnv:   "AZURE_OPENAI_ENDPOINT",
			APIKeyEnv:     "AZURE_OPENAI_KEY",
		},
		Fallback: ModelSettings{
			Provider:      AIProviderAzure,
			ModelEnv:      "AZURE_OPENAI_LLM",
			APIVersionEnv: "AZURE_OPENAI_LLM_API_VERSION",
			EndpointEnv:   "AZURE_OPENAI_ENDPOINT",
			APIKeyEnv:     "AZURE_OPENAI_KEY",
		},
		Attempts:        DefaultAttempts,
		EnableFallback:  false,
		DefaultLanguage: DefaultLanguage,
		Temperature:     0.0,
		MaxTokens:       DefaultMaxTokens,
		PassTimeout:     DefaultPassTimeout,
		Cleaning:        DefaultCleaningConfig(),
		Chunking: ChunkingConfig{
			MaxLength:  DefaultMaxLength,
			HeadLength: DefaultHeadLength,
		},
	}
}

// Clone returns a deep copy so callers can adjust a config without
// affecting concurrent readers.
func (c ExtractionConfig) Clone() ExtractionConfig {
	c.Cleaning = c.Cleaning.Clone()
	c.CleaningSteps = slices.Clone(c.CleaningSteps)
	c.FieldMap = slices.Clone(c.FieldMap)
	return c
}
