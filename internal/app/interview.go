package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rbright/rehearse/internal/audio"
	"github.com/rbright/rehearse/internal/config"
	"github.com/rbright/rehearse/internal/cue"
	"github.com/rbright/rehearse/internal/handoff"
	"github.com/rbright/rehearse/internal/ipc"
	"github.com/rbright/rehearse/internal/output"
	"github.com/rbright/rehearse/internal/remote"
	"github.com/rbright/rehearse/internal/report"
	"github.com/rbright/rehearse/internal/session"
)

const consoleHelp = "Commands: r record/stop, s stop, c cancel, e end, t transcript, status, q quit"

// commandInterview owns one interview: it serves the control socket and the console until a report exists.
func (r Runner) commandInterview(ctx context.Context, cfg config.Config, resumePath string, logger *slog.Logger) int {
	resume, err := readResume(resumePath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	listener, socketPath, err := r.acquireSocket(ctx, logger)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if listener != nil {
		defer func() {
			_ = listener.Close()
			_ = os.Remove(socketPath)
		}()
	}

	controller := session.NewController(logger, newClient(cfg, logger), session.Options{
		Timeouts: session.Timeouts{
			Start:  cfg.Service.StartTimeout(),
			Answer: cfg.Service.AnswerTimeout(),
			End:    cfg.Service.EndTimeout(),
		},
		StrictContracts: cfg.Debug.StrictContracts,
	})

	con := newConsole(ctx, controller, r.Stdout, logger)
	con.cues = cue.NewPlayer(cfg.Cues, logger)
	manager := handoff.NewManager(controller, con.onAnswer, logger)
	con.recorder = audio.NewRecorder(r.audioSource(cfg, logger), manager.Handle, audio.RecorderOptions{
		Gate:    controller,
		Logger:  logger,
		DumpDir: debugDumpDir(cfg, logger),
	})

	startedAt := time.Now()
	fmt.Fprintf(r.Stdout, "Uploading %s...\n", resume.Name)
	if err := controller.Start(ctx, &resume); err != nil {
		fmt.Fprintf(r.Stderr, "error: start interview: %v\n", err)
		return 1
	}

	snap := controller.Snapshot()
	if len(snap.Transcript) > 0 {
		fmt.Fprintf(r.Stdout, "Interviewer: %s\n", snap.Transcript[0].Content)
	}
	fmt.Fprintln(r.Stdout, consoleHelp)

	serveErrCh := make(chan error, 1)
	serveCtx, stopServe := context.WithCancel(ctx)
	defer stopServe()
	if listener != nil {
		go func() {
			serveErrCh <- ipc.Serve(serveCtx, listener, con)
		}()
	} else {
		serveErrCh <- nil
	}

	quit := con.Run(r.stdin())

	if err := con.recorder.Cancel(); err != nil {
		logger.Warn("discard recording on exit failed", "error", err.Error())
	}
	con.recorder.Wait()
	con.wait()
	con.cues.Wait()
	stopServe()
	if serveErr := <-serveErrCh; serveErr != nil {
		fmt.Fprintf(r.Stderr, "error: ipc server failed: %v\n", serveErr)
	}

	final := controller.Snapshot()
	logInterviewResult(logger, final, startedAt, time.Now())

	if final.Report == nil {
		switch {
		case quit:
			fmt.Fprintln(r.Stdout, "left the interview without a report")
			return 0
		default:
			fmt.Fprintln(r.Stderr, "error: interview interrupted before a report was generated")
			return 1
		}
	}

	fmt.Fprintln(r.Stdout)
	if err := report.Render(r.Stdout, *final.Report); err != nil {
		logger.Warn("render report failed", "error", err.Error())
	}

	copier := output.NewCopier(cfg.Report, logger)
	if copier.Enabled() {
		if err := copier.Copy(context.WithoutCancel(ctx), report.String(*final.Report)); err != nil {
			fmt.Fprintf(r.Stderr, "warning: %v\n", err)
		} else {
			fmt.Fprintln(r.Stdout, "report copied")
		}
	}
	return 0
}

// acquireSocket claims the control socket. A missing runtime dir disables forwarding instead of failing.
func (r Runner) acquireSocket(ctx context.Context, logger *slog.Logger) (net.Listener, string, error) {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "warning: control socket disabled: %v\n", err)
		logger.Warn("control socket disabled", "error", err.Error())
		return nil, "", nil
	}

	listener, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8)
	if errors.Is(err, ipc.ErrAlreadyRunning) {
		return nil, "", errors.New("another rehearse interview is already running")
	}
	if err != nil {
		return nil, "", err
	}
	return listener, socketPath, nil
}

func (r Runner) audioSource(cfg config.Config, logger *slog.Logger) audio.Source {
	if r.Source != nil {
		return r.Source
	}
	return audio.PulseSource{
		Input:    cfg.Audio.Input,
		Fallback: cfg.Audio.Fallback,
		Logger:   logger,
	}
}

func debugDumpDir(cfg config.Config, logger *slog.Logger) string {
	if !cfg.Debug.EnableAudioDump {
		return ""
	}
	dir, err := audio.DebugDir()
	if err != nil {
		logger.Warn("debug audio dump disabled", "error", err.Error())
		return ""
	}
	return dir
}

// readResume loads the resume and sniffs its media type.
func readResume(path string) (remote.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return remote.File{}, fmt.Errorf("read resume: %w", err)
	}
	return remote.File{
		Name:        filepath.Base(path),
		ContentType: resumeContentType(path, data),
		Data:        data,
	}, nil
}

func resumeContentType(path string, data []byte) string {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return "application/pdf"
	}
	if len(data) == 0 {
		return "application/octet-stream"
	}
	return mimetype.Detect(data).String()
}

func logInterviewResult(logger *slog.Logger, snap session.Snapshot, startedAt, finishedAt time.Time) {
	if logger == nil {
		return
	}
	fields := []any{
		"session_id", snap.SessionID,
		"phase", snap.Phase,
		"turns", len(snap.Transcript),
		"started_at", startedAt.Format(time.RFC3339Nano),
		"finished_at", finishedAt.Format(time.RFC3339Nano),
		"duration_ms", finishedAt.Sub(startedAt).Milliseconds(),
	}
	if snap.Report == nil {
		logger.Warn("interview closed without report", fields...)
		return
	}
	fields = append(fields,
		"score", snap.Report.Score,
		"verdict", snap.Report.Verdict,
	)
	logger.Info("interview complete", fields...)
}
