// Package config resolves, parses, validates, and defaults rehearse configuration.
package config

import "time"

// Config is the fully materialized runtime configuration used by rehearse.
type Config struct {
	Service ServiceConfig
	Audio   AudioConfig
	Report  ReportConfig
	Cues    CueConfig
	Log     LogConfig
	Debug   DebugConfig
}

// ServiceConfig locates the interview service and bounds each remote operation.
type ServiceConfig struct {
	BaseURL         string
	StartTimeoutMS  int
	AnswerTimeoutMS int
	EndTimeoutMS    int
}

// StartTimeout bounds the resume upload.
func (s ServiceConfig) StartTimeout() time.Duration {
	return time.Duration(s.StartTimeoutMS) * time.Millisecond
}

// AnswerTimeout bounds one answer submission.
func (s ServiceConfig) AnswerTimeout() time.Duration {
	return time.Duration(s.AnswerTimeoutMS) * time.Millisecond
}

// EndTimeout bounds report generation.
func (s ServiceConfig) EndTimeout() time.Duration {
	return time.Duration(s.EndTimeoutMS) * time.Millisecond
}

// AudioConfig controls preferred and fallback input-source selection.
type AudioConfig struct {
	Input    string
	Fallback string
}

// ReportConfig controls what happens to the rendered report.
type ReportConfig struct {
	Copy CommandConfig
}

// CueConfig controls audible recording cues.
type CueConfig struct {
	Enable bool
}

// LogConfig controls the JSONL log sink.
type LogConfig struct {
	Level string
}

// CommandConfig stores a raw command string and its parsed argv form.
type CommandConfig struct {
	Raw  string
	Argv []string
}

// DebugConfig controls optional debug behavior.
type DebugConfig struct {
	EnableAudioDump bool
	StrictContracts bool
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
