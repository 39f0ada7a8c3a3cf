package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

var logLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if err := validate.Var(cfg.Service.BaseURL, "required,http_url"); err != nil {
		return nil, fmt.Errorf("service.base_url must be an absolute http(s) URL, got %q", cfg.Service.BaseURL)
	}
	if cfg.Service.StartTimeoutMS <= 0 {
		return nil, fmt.Errorf("service.start_timeout_ms must be > 0")
	}
	if cfg.Service.AnswerTimeoutMS <= 0 {
		return nil, fmt.Errorf("service.answer_timeout_ms must be > 0")
	}
	if cfg.Service.EndTimeoutMS <= 0 {
		return nil, fmt.Errorf("service.end_timeout_ms must be > 0")
	}
	if cfg.Service.EndTimeoutMS < cfg.Service.AnswerTimeoutMS {
		warnings = append(warnings, Warning{
			Message: "service.end_timeout_ms is shorter than service.answer_timeout_ms; report generation usually takes longer",
		})
	}

	if _, ok := logLevels[strings.ToLower(strings.TrimSpace(cfg.Log.Level))]; !ok {
		return nil, fmt.Errorf("log.level must be one of: debug, info, warn, error")
	}

	if strings.TrimSpace(cfg.Report.Copy.Raw) != "" && len(cfg.Report.Copy.Argv) == 0 {
		return nil, fmt.Errorf("report.copy_cmd is configured but empty")
	}

	return warnings, nil
}
