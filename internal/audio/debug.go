package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DebugDir returns the directory for debug WAV dumps.
func DebugDir() (string, error) {
	stateDir, err := resolveStateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(stateDir, "rehearse", "debug"), nil
}

// writeDebugWAV stores one answer WAV under dir and returns its path.
func writeDebugWAV(dir string, wav []byte, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create debug dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("answer-%s.wav", now.Format("20060102-150405.000")))
	if err := os.WriteFile(path, wav, 0o600); err != nil {
		return "", fmt.Errorf("write debug audio %q: %w", path, err)
	}
	return path, nil
}

// resolveStateDir returns XDG_STATE_HOME or its ~/.local/state fallback.
func resolveStateDir() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); xdg != "" {
		return xdg, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory for state: %w", err)
	}
	return filepath.Join(home, ".local", "state"), nil
}
