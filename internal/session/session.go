// Package session owns interview lifecycle state and sequences its remote operations.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rbright/rehearse/internal/fsm"
	"github.com/rbright/rehearse/internal/remote"
	"github.com/rbright/rehearse/internal/transcript"
	"golang.org/x/sync/singleflight"
)

// PlaceholderText is shown for an answer that is still being transcribed.
const PlaceholderText = "Audio answer sent…"

// Service is the remote interview API used by the controller.
type Service interface {
	StartInterview(context.Context, remote.File) (remote.StartResponse, error)
	SubmitAnswer(context.Context, string, remote.File) (remote.AnswerResponse, error)
	EndInterview(context.Context, string) (remote.Report, error)
}

// Timeouts bounds each remote operation. Zero disables the bound.
type Timeouts struct {
	Start  time.Duration
	Answer time.Duration
	End    time.Duration
}

// Options tunes controller behavior.
type Options struct {
	Timeouts Timeouts
	// StrictContracts panics on internal invariant violations instead of logging them.
	StrictContracts bool
}

// AnswerResult is what one successful SubmitAnswer produced.
type AnswerResult struct {
	Transcription string
	FollowUp      string
	Finished      bool
	Report        *remote.Report
}

// Snapshot is a consistent copy of controller state.
type Snapshot struct {
	Phase      fsm.Phase
	SessionID  string
	Busy       bool
	Transcript []transcript.Turn
	Report     *remote.Report
}

type operation string

const (
	opNone   operation = ""
	opStart  operation = "start"
	opSubmit operation = "submit"
	opEnd    operation = "end"
)

// Controller owns the session identity, transcript, and report.
type Controller struct {
	logger  *slog.Logger
	service Service
	opts    Options

	mu         sync.Mutex
	phase      fsm.Phase
	sessionID  string
	transcript *transcript.Transcript
	report     *remote.Report
	inflight   operation
	// holders counts callers sharing inflight; the slot clears when the last one leaves.
	holders int

	ends singleflight.Group
}

// NewController constructs a controller in the NotStarted phase.
func NewController(logger *slog.Logger, service Service, opts Options) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		logger:     logger,
		service:    service,
		opts:       opts,
		phase:      fsm.PhaseNotStarted,
		transcript: transcript.New(),
	}
}

// Phase returns the current lifecycle phase.
func (c *Controller) Phase() fsm.Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Busy reports whether a remote operation is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight != opNone
}

// Transcript returns a copy of the turn log.
func (c *Controller) Transcript() []transcript.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript.Turns()
}

// Report returns the final report once the session has ended.
func (c *Controller) Report() (remote.Report, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.report == nil {
		return remote.Report{}, false
	}
	return *c.report, true
}

// Snapshot returns a consistent copy of all controller state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{
		Phase:      c.phase,
		SessionID:  c.sessionID,
		Busy:       c.inflight != opNone,
		Transcript: c.transcript.Turns(),
	}
	if c.report != nil {
		report := *c.report
		snap.Report = &report
	}
	return snap
}

// Start uploads resume and opens the session with the service's first question.
func (c *Controller) Start(ctx context.Context, resume *remote.File) error {
	if resume == nil || len(resume.Data) == 0 {
		return c.reject("start", fmt.Errorf("%w: no resume selected", ErrValidation))
	}

	c.mu.Lock()
	if op := c.inflight; op != opNone {
		c.mu.Unlock()
		return c.reject("start", fmt.Errorf("%w: %s in progress", ErrBusy, op))
	}
	if c.phase != fsm.PhaseNotStarted {
		phase := c.phase
		c.mu.Unlock()
		return c.reject("start", fmt.Errorf("%w: cannot start from phase %s", ErrValidation, phase))
	}
	c.acquire(opStart)
	c.mu.Unlock()
	defer c.release()

	opCtx, cancel := withTimeout(ctx, c.opts.Timeouts.Start)
	defer cancel()

	resp, err := c.service.StartInterview(opCtx, *resume)
	if err != nil {
		return c.remoteFailure("start", opCtx, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := fsm.Transition(c.phase, fsm.EventStarted)
	if err != nil {
		return c.violation("start", err)
	}
	fresh := transcript.New()
	if err := fresh.AppendTurn(transcript.Turn{Role: transcript.RoleAI, Content: resp.CurrentQuestion}); err != nil {
		return c.violation("start", err)
	}
	c.phase = next
	c.sessionID = resp.SessionID
	c.transcript = fresh
	c.report = nil

	c.logger.Info("interview started", "session_id", resp.SessionID)
	return nil
}

// SubmitAnswer sends one recorded answer. A finished interview is ended automatically.
func (c *Controller) SubmitAnswer(ctx context.Context, audio remote.File) (AnswerResult, error) {
	c.mu.Lock()
	if op := c.inflight; op != opNone {
		c.mu.Unlock()
		return AnswerResult{}, c.reject("submit", fmt.Errorf("%w: %s in progress", ErrBusy, op))
	}
	if c.phase != fsm.PhaseActive {
		phase := c.phase
		c.mu.Unlock()
		return AnswerResult{}, c.reject("submit", fmt.Errorf("%w: cannot submit from phase %s", ErrValidation, phase))
	}
	if len(audio.Data) == 0 {
		c.mu.Unlock()
		return AnswerResult{}, c.reject("submit", fmt.Errorf("%w: empty audio payload", ErrValidation))
	}

	// A placeholder left by a failed submit is reused for the retry.
	if _, pending := c.transcript.Pending(); !pending {
		placeholder := transcript.Turn{Role: transcript.RoleUser, Content: PlaceholderText, Pending: true}
		if err := c.transcript.AppendTurn(placeholder); err != nil {
			c.mu.Unlock()
			return AnswerResult{}, c.violation("submit", err)
		}
	}
	c.acquire(opSubmit)
	sessionID := c.sessionID
	c.mu.Unlock()
	defer c.release()

	opCtx, cancel := withTimeout(ctx, c.opts.Timeouts.Answer)
	defer cancel()

	resp, err := c.service.SubmitAnswer(opCtx, sessionID, audio)
	if err != nil {
		return AnswerResult{}, c.remoteFailure("submit", opCtx, err)
	}

	c.mu.Lock()
	if err := c.transcript.MutateLastPendingUser(resp.UserTranscription); err != nil {
		c.mu.Unlock()
		return AnswerResult{}, c.violation("submit", err)
	}
	result := AnswerResult{
		Transcription: transcript.Normalize(resp.UserTranscription),
		Finished:      resp.IsFinished,
	}
	if !resp.IsFinished && resp.AIResponse != "" {
		if err := c.transcript.AppendTurn(transcript.Turn{Role: transcript.RoleAI, Content: resp.AIResponse}); err != nil {
			c.mu.Unlock()
			return result, c.violation("submit", err)
		}
		result.FollowUp = resp.AIResponse
	}
	if resp.IsFinished {
		// Hand the busy slot to the end operation so a manual End joins it.
		c.inflight = opEnd
	}
	c.mu.Unlock()

	c.logger.Info("answer submitted",
		"session_id", sessionID,
		"transcription_length", len(result.Transcription),
		"follow_up", result.FollowUp != "",
		"finished", result.Finished,
	)

	if !resp.IsFinished {
		return result, nil
	}

	report, err := c.end(ctx, sessionID)
	if err != nil {
		return result, err
	}
	result.Report = &report
	return result, nil
}

// End closes the session and stores its report. It is a no-op once the session has ended.
func (c *Controller) End(ctx context.Context) (remote.Report, error) {
	c.mu.Lock()
	switch {
	case c.phase == fsm.PhaseEnded && c.report != nil:
		report := *c.report
		sessionID := c.sessionID
		c.mu.Unlock()
		c.logger.Debug("end ignored; session already ended", "session_id", sessionID)
		return report, nil
	case c.phase != fsm.PhaseActive:
		phase := c.phase
		c.mu.Unlock()
		return remote.Report{}, c.reject("end", fmt.Errorf("%w: cannot end from phase %s", ErrValidation, phase))
	case c.inflight == opEnd:
		// Join the end already in flight and hold the slot until this call returns.
		c.holders++
	case c.inflight != opNone:
		op := c.inflight
		c.mu.Unlock()
		return remote.Report{}, c.reject("end", fmt.Errorf("%w: %s in progress", ErrBusy, op))
	default:
		c.acquire(opEnd)
	}
	sessionID := c.sessionID
	c.mu.Unlock()
	defer c.release()

	return c.end(ctx, sessionID)
}

// end performs at most one concurrent remote end per session.
func (c *Controller) end(ctx context.Context, sessionID string) (remote.Report, error) {
	v, err, shared := c.ends.Do(sessionID, func() (any, error) {
		c.mu.Lock()
		if c.phase == fsm.PhaseEnded && c.report != nil {
			report := *c.report
			c.mu.Unlock()
			return report, nil
		}
		c.mu.Unlock()

		opCtx, cancel := withTimeout(ctx, c.opts.Timeouts.End)
		defer cancel()

		report, err := c.service.EndInterview(opCtx, sessionID)
		if err != nil {
			return nil, c.remoteFailure("end", opCtx, err)
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		next, err := fsm.Transition(c.phase, fsm.EventEnded)
		if err != nil {
			return nil, c.violation("end", err)
		}
		c.phase = next
		c.report = &report

		c.logger.Info("interview ended",
			"session_id", sessionID,
			"score", report.Score,
			"verdict", report.Verdict,
		)
		return report, nil
	})
	if shared {
		c.logger.Debug("end joined in-flight request", "session_id", sessionID)
	}
	if err != nil {
		return remote.Report{}, err
	}
	return v.(remote.Report), nil
}

// Reset discards all state and returns the controller to NotStarted.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight != opNone {
		return c.reject("reset", fmt.Errorf("%w: %s in progress", ErrBusy, c.inflight))
	}

	next, err := fsm.Transition(c.phase, fsm.EventReset)
	if err != nil {
		return c.violation("reset", err)
	}
	c.phase = next
	c.sessionID = ""
	c.transcript = transcript.New()
	c.report = nil
	c.logger.Info("session reset")
	return nil
}

// acquire takes the busy slot. Callers hold c.mu.
func (c *Controller) acquire(op operation) {
	c.inflight = op
	c.holders = 1
}

// release drops one hold and clears the busy flag once nobody holds it.
func (c *Controller) release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.holders > 0 {
		c.holders--
	}
	if c.holders == 0 {
		c.inflight = opNone
	}
}

// remoteFailure classifies a failed remote call as a timeout or a remote error.
func (c *Controller) remoteFailure(op string, opCtx context.Context, err error) error {
	var wrapped error
	if errors.Is(opCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		wrapped = fmt.Errorf("%w: %s: %w", ErrTimeout, op, err)
	} else {
		wrapped = fmt.Errorf("%w: %s: %w", ErrRemote, op, err)
	}
	c.logger.Error("remote operation failed", "op", op, "error", err.Error())
	return wrapped
}

func (c *Controller) reject(op string, err error) error {
	c.logger.Warn("operation rejected", "op", op, "error", err.Error())
	return err
}

// violation fails loudly in strict mode and otherwise reports without mutating state.
func (c *Controller) violation(op string, err error) error {
	wrapped := fmt.Errorf("%w: %s: %w", ErrContractViolation, op, err)
	if c.opts.StrictContracts {
		panic(wrapped)
	}
	c.logger.Error("contract violation", "op", op, "error", err.Error())
	return wrapped
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
