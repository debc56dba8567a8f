package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports every invalid setting in cfg.
func Validate(cfg Config) error {
	var problems []string

	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validating config: %w", err)
		}
		for _, fe := range fieldErrs {
			problems = append(problems, fmt.Sprintf("%s: failed %q (got %v)", fe.Namespace(), fe.Tag(), fe.Value()))
		}
	}

	if cfg.Appearance.Locale != "" {
		if _, err := language.Parse(cfg.Appearance.Locale); err != nil {
			problems = append(problems, fmt.Sprintf("Config.Appearance.Locale: %v", err))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Tag returns the parsed locale, falling back to English.
func (a AppearanceConfig) Tag() language.Tag {
	tag, err := language.Parse(a.Locale)
	if err != nil {
		return language.English
	}
	return tag
}
