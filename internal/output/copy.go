// Package output hands the rendered interview report to an external command such as a clipboard tool.
package output

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/rbright/rehearse/internal/config"
)

const copyTimeout = 2 * time.Second

// Copier pipes report text to report.copy_cmd.
type Copier struct {
	argv   []string
	logger *slog.Logger
}

// NewCopier constructs a copier from runtime config.
func NewCopier(cfg config.ReportConfig, logger *slog.Logger) *Copier {
	return &Copier{argv: cfg.Copy.Argv, logger: logger}
}

// Enabled reports whether a copy command is configured.
func (c *Copier) Enabled() bool {
	return len(c.argv) > 0
}

// Copy writes text to the configured command's stdin. No-op without a command or text.
func (c *Copier) Copy(ctx context.Context, text string) error {
	if !c.Enabled() || text == "" {
		return nil
	}

	copyCtx, cancel := context.WithTimeout(ctx, copyTimeout)
	defer cancel()
	if err := runCommandWithInput(copyCtx, c.argv, text); err != nil {
		c.logCopyFailure(err)
		return fmt.Errorf("copy report: %w", err)
	}
	if c.logger != nil {
		c.logger.Debug("report copied", "command", c.argv[0], "bytes", len(text))
	}
	return nil
}

// runCommandWithInput executes argv and optionally writes input to stdin.
func runCommandWithInput(ctx context.Context, argv []string, input string) error {
	if len(argv) == 0 {
		return fmt.Errorf("command argv cannot be empty")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("open stdin for %s: %w", argv[0], err)
	}

	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		return fmt.Errorf("start command %s: %w", argv[0], err)
	}

	if input != "" {
		if _, err := stdin.Write([]byte(input)); err != nil {
			_ = stdin.Close()
			_ = cmd.Wait()
			return fmt.Errorf("write stdin for %s: %w", argv[0], err)
		}
	}
	_ = stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait for %s: %w", argv[0], err)
	}
	return nil
}

// logCopyFailure records copy errors; the report was already printed.
func (c *Copier) logCopyFailure(err error) {
	if c.logger == nil || err == nil {
		return
	}
	c.logger.Error("report copy failed", "error", err.Error())
}
