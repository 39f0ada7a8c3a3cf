// Package handoff moves finalized recordings from the recorder into answer submissions.
package handoff

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rbright/rehearse/internal/audio"
	"github.com/rbright/rehearse/internal/remote"
	"github.com/rbright/rehearse/internal/session"
)

const (
	// AnswerFilename is the multipart filename for submitted answers.
	AnswerFilename = "answer.wav"
	// AnswerContentType is the media type for submitted answers.
	AnswerContentType = "audio/wav"
)

// Submitter delivers one answer payload.
type Submitter interface {
	SubmitAnswer(context.Context, remote.File) (session.AnswerResult, error)
}

// SubmitFunc adapts a function to Submitter.
type SubmitFunc func(context.Context, remote.File) (session.AnswerResult, error)

// SubmitAnswer calls f(ctx, audio).
func (f SubmitFunc) SubmitAnswer(ctx context.Context, audio remote.File) (session.AnswerResult, error) {
	return f(ctx, audio)
}

// ResultFunc observes the outcome of each handled emission.
type ResultFunc func(session.AnswerResult, error)

// Manager owns each blob from emission until release.
type Manager struct {
	submitter Submitter
	onResult  ResultFunc
	logger    *slog.Logger
}

// NewManager constructs a handoff manager. onResult may be nil.
func NewManager(submitter Submitter, onResult ResultFunc, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{submitter: submitter, onResult: onResult, logger: logger}
}

// Handle is an audio.EmitFunc. Capture failures are reported without a submission.
func (m *Manager) Handle(ctx context.Context, emission audio.Emission) {
	var (
		result session.AnswerResult
		err    error
	)
	switch {
	case emission.Err != nil:
		err = fmt.Errorf("capture answer: %w", emission.Err)
	case emission.Blob == nil:
		err = fmt.Errorf("capture answer: %w", audio.ErrNoAudio)
	default:
		result, err = m.Deliver(ctx, emission.Blob)
	}

	if m.onResult != nil {
		m.onResult(result, err)
	}
}

// Deliver submits blob synchronously and releases it on every path.
func (m *Manager) Deliver(ctx context.Context, blob *audio.Blob) (session.AnswerResult, error) {
	if blob == nil {
		return session.AnswerResult{}, audio.ErrNoAudio
	}
	defer blob.Release()

	data, err := blob.Take()
	if err != nil {
		return session.AnswerResult{}, err
	}

	m.logger.Debug("submitting answer", "bytes", len(data))
	// A partial result survives an error when the answer landed but the automatic end failed.
	return m.submitter.SubmitAnswer(ctx, remote.File{
		Name:        AnswerFilename,
		ContentType: AnswerContentType,
		Data:        data,
	})
}
