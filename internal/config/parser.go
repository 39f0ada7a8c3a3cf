package config

import (
	"errors"
	"strings"
)

// Parse reads JSONC configuration content over base and validates the result.
func Parse(content string, base Config) (Config, []Warning, error) {
	cfg, err := decode(content, base)
	if err != nil {
		return Config{}, nil, err
	}
	warnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, warnings, nil
}

// decode applies JSONC content over base without validating.
func decode(content string, base Config) (Config, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return base, nil
	}
	if !strings.HasPrefix(trimmed, "{") {
		return Config{}, errors.New("config must be a JSONC object")
	}
	return parseJSONC(content, base)
}
