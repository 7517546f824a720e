package ai

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/custodia-labs/docmeta/internal/core/domain"
)

// TargetProblem describes why a resolved model target cannot be used.
type TargetProblem struct {
	// Role is "primary" or "fallback".
	Role   string
	Target domain.ModelTarget
	Err    error
}

// ValidateTarget checks a resolved target offline: a known provider, a
// model name, a parseable endpoint and an API key where the provider
// needs one.
func ValidateTarget(t domain.ModelTarget) error {
	if !t.Provider.IsValid() {
		return fmt.Errorf("%w: unknown provider %q", domain.ErrConfiguration, t.Provider)
	}
	if err := t.Validate(); err != nil {
		return err
	}
	u, err := url.Parse(t.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: endpoint %q is not an absolute URL", domain.ErrConfiguration, t.Endpoint)
	}
	if (t.Provider.RequiresAPIKey() || t.Provider == domain.AIProviderAzure) && t.APIKey == "" {
		return &domain.ConfigurationError{Field: "api_key"}
	}
	return nil
}

// ValidateConfig resolves the primary and, when enabled, the fallback model
// for language and reports every target that fails ValidateTarget.
func ValidateConfig(cfg domain.ExtractionConfig, language string, lookup domain.LookupFunc) []TargetProblem {
	if language == "" {
		language = cfg.DefaultLanguage
	}

	var problems []TargetProblem
	check := func(role string, s domain.ModelSettings) {
		t := s.Resolve(language, lookup)
		if err := ValidateTarget(t); err != nil {
			problems = append(problems, TargetProblem{Role: role, Target: t, Err: err})
		}
	}
	check("primary", cfg.Primary)
	if cfg.EnableFallback {
		check("fallback", cfg.Fallback)
	}
	return problems
}

// JoinProblems folds problems into one error, nil when there are none.
func JoinProblems(problems []TargetProblem) error {
	errs := make([]error, 0, len(problems))
	for _, p := range problems {
		errs = append(errs, fmt.Errorf("%s model (%s): %w", p.Role, p.Target, p.Err))
	}
	return errors.Join(errs...)
}
