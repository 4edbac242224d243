package config

import (
	"fmt"
	"path"
	"slices"

	"github.com/go-playground/validator/v10"

	"github.com/marmos91/dittodav/pkg/repository"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules.
//
// Note: Log level normalization is handled in ApplyDefaults, not here.
// Validation accepts both uppercase and lowercase log levels.
//
// Returns an error describing validation failures.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	if err := validateCustomRules(cfg); err != nil {
		return err
	}

	return nil
}

// validateCustomRules performs custom validation beyond struct tags.
func validateCustomRules(cfg *Config) error {
	names := make(map[string]bool)
	urls := make(map[string]bool)
	types := repository.DefaultTypes()

	for i, b := range cfg.Backends {
		if b.Name == "" {
			return fmt.Errorf("backends[%d]: name is required", i)
		}
		if names[b.Name] {
			return fmt.Errorf("backends[%d]: duplicate backend name %q", i, b.Name)
		}
		names[b.Name] = true

		rootURL := path.Clean(b.RootURL)
		if urls[rootURL] {
			return fmt.Errorf("backends[%d]: duplicate root_url %q", i, b.RootURL)
		}
		urls[rootURL] = true

		if b.PathCacheSize <= 0 {
			return fmt.Errorf("backends[%d]: path_cache_size must be positive", i)
		}

		for _, t := range b.RootTypes {
			dt, ok := types.Lookup(t)
			if !ok {
				return fmt.Errorf("backends[%d]: unknown root type %q", i, t)
			}
			if !slices.Contains(dt.Facets, repository.FacetFolderish) {
				return fmt.Errorf("backends[%d]: root type %q is not a container", i, t)
			}
		}
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
	}
	return err
}
