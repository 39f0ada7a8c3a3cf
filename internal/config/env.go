package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// ServiceURLEnv overrides service.base_url when set.
const ServiceURLEnv = "REHEARSE_SERVICE_URL"

type envOverrides struct {
	ServiceURL string `env:"REHEARSE_SERVICE_URL"`
}

// applyEnv layers environment overrides over file values.
func applyEnv(cfg *Config) ([]Warning, error) {
	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	var warnings []Warning
	if url := strings.TrimSpace(overrides.ServiceURL); url != "" {
		cfg.Service.BaseURL = url
		warnings = append(warnings, Warning{
			Message: fmt.Sprintf("service.base_url overridden by %s", ServiceURLEnv),
		})
	}
	return warnings, nil
}
