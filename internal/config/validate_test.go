package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateDefaults(t *testing.T) {
	warnings, err := Validate(Default())
	require.NoError(t, err)
	require.Empty(t, warnings)
}

func TestValidateRejectsInvalidCoreFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "empty base url", mutate: func(c *Config) { c.Service.BaseURL = "" }, wantErr: "service.base_url"},
		{name: "relative base url", mutate: func(c *Config) { c.Service.BaseURL = "/api" }, wantErr: "service.base_url"},
		{name: "non-http base url", mutate: func(c *Config) { c.Service.BaseURL = "ftp://example.com" }, wantErr: "service.base_url"},
		{name: "zero start timeout", mutate: func(c *Config) { c.Service.StartTimeoutMS = 0 }, wantErr: "start_timeout_ms"},
		{name: "negative answer timeout", mutate: func(c *Config) { c.Service.AnswerTimeoutMS = -1 }, wantErr: "answer_timeout_ms"},
		{name: "zero end timeout", mutate: func(c *Config) { c.Service.EndTimeoutMS = 0 }, wantErr: "end_timeout_ms"},
		{name: "unknown log level", mutate: func(c *Config) { c.Log.Level = "trace" }, wantErr: "log.level"},
		{name: "copy command raw but empty argv", mutate: func(c *Config) {
			c.Report.Copy = CommandConfig{Raw: "wl-copy"}
		}, wantErr: "report.copy_cmd"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)

			_, err := Validate(cfg)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidateWarnsOnShortEndTimeout(t *testing.T) {
	cfg := Default()
	cfg.Service.EndTimeoutMS = 1000

	warnings, err := Validate(cfg)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0].Message, "end_timeout_ms")
}

func TestServiceTimeoutDurations(t *testing.T) {
	svc := Default().Service
	require.Equal(t, "1m0s", svc.StartTimeout().String())
	require.Equal(t, "1m30s", svc.AnswerTimeout().String())
	require.Equal(t, "2m0s", svc.EndTimeout().String())
}
