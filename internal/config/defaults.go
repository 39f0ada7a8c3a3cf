package config

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	return Config{
		Service: ServiceConfig{
			BaseURL:         "http://127.0.0.1:8000",
			StartTimeoutMS:  60_000,
			AnswerTimeoutMS: 90_000,
			EndTimeoutMS:    120_000,
		},
		Audio: AudioConfig{
			Input:    "default",
			Fallback: "default",
		},
		Log:   LogConfig{Level: "info"},
		Debug: DebugConfig{},
	}
}
