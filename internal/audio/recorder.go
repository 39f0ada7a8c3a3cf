package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var (
	// ErrSubmissionPending rejects a new recording while an answer is still being submitted.
	ErrSubmissionPending = errors.New("previous answer is still being submitted")
	// ErrNoAudio reports a recording that produced no usable audio.
	ErrNoAudio = errors.New("no audio captured")
)

// Status is the recorder's externally visible state.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRecording Status = "recording"
	StatusCaptured  Status = "captured"
)

// Gate reports whether a downstream submission is outstanding.
type Gate interface {
	Busy() bool
}

// Emission is delivered exactly once per stopped recording.
// Blob is nil when Err is set.
type Emission struct {
	Blob *Blob
	Err  error
}

// EmitFunc receives finalized recordings. It owns the blob and must release it.
type EmitFunc func(context.Context, Emission)

// RecorderOptions tunes optional recorder behavior.
type RecorderOptions struct {
	Gate    Gate
	Logger  *slog.Logger
	DumpDir string
}

// Recorder drives one capture device through idle -> recording -> captured -> idle.
type Recorder struct {
	source  Source
	emit    EmitFunc
	gate    Gate
	logger  *slog.Logger
	dumpDir string
	now     func() time.Time

	mu     sync.Mutex
	status Status
	stream Stream
	ctx    context.Context
	// stopCapture ends the context handed to the open stream.
	stopCapture context.CancelFunc

	finalizers sync.WaitGroup
}

// NewRecorder constructs an idle recorder.
func NewRecorder(source Source, emit EmitFunc, opts RecorderOptions) *Recorder {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Recorder{
		source:  source,
		emit:    emit,
		gate:    opts.Gate,
		logger:  logger,
		dumpDir: opts.DumpDir,
		now:     time.Now,
		status:  StatusIdle,
	}
}

// Status returns the current recorder state.
func (r *Recorder) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Start begins recording. It is a no-op unless the recorder is idle.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusIdle {
		return nil
	}
	if r.gate != nil && r.gate.Busy() {
		return ErrSubmissionPending
	}

	captureCtx, stopCapture := context.WithCancel(ctx)
	stream, err := r.source.Open(captureCtx)
	if err != nil {
		stopCapture()
		return fmt.Errorf("open capture device: %w", err)
	}

	r.stream = stream
	r.ctx = ctx
	r.stopCapture = stopCapture
	r.status = StatusRecording
	r.logger.Debug("recording started")
	return nil
}

// Stop ends the recording. The blob is finalized asynchronously and emitted once.
// It is a no-op unless the recorder is recording.
func (r *Recorder) Stop() {
	r.mu.Lock()
	if r.status != StatusRecording {
		r.mu.Unlock()
		return
	}
	stream, ctx, stopCapture := r.stream, r.ctx, r.stopCapture
	r.stream = nil
	r.ctx = nil
	r.stopCapture = nil
	r.status = StatusCaptured
	r.finalizers.Add(1)
	r.mu.Unlock()

	go r.finalize(ctx, stream, stopCapture)
}

// Cancel discards an active recording without emitting anything.
func (r *Recorder) Cancel() error {
	r.mu.Lock()
	if r.status != StatusRecording {
		r.mu.Unlock()
		return nil
	}
	stream, stopCapture := r.stream, r.stopCapture
	r.stream = nil
	r.ctx = nil
	r.stopCapture = nil
	r.status = StatusIdle
	r.mu.Unlock()

	r.logger.Debug("recording cancelled")
	err := stream.Stop()
	stopCapture()
	if err != nil {
		return fmt.Errorf("stop capture device: %w", err)
	}
	return nil
}

// Wait blocks until every pending finalize has emitted.
func (r *Recorder) Wait() {
	r.finalizers.Wait()
}

func (r *Recorder) finalize(ctx context.Context, stream Stream, stopCapture context.CancelFunc) {
	defer r.finalizers.Done()

	var emission Emission
	if err := stream.Stop(); err != nil {
		emission.Err = fmt.Errorf("stop capture device: %w", err)
	} else if pcm := stream.RawPCM(); len(pcm) == 0 {
		emission.Err = ErrNoAudio
	} else {
		wav := EncodeWAV(pcm, SampleRate, Channels)
		r.dump(wav)
		emission.Blob = NewBlob(wav, r.returnToIdle)
	}
	stopCapture()

	if emission.Err != nil {
		r.logger.Error("recording failed", "error", emission.Err.Error())
		r.returnToIdle()
		r.emit(ctx, emission)
		return
	}

	r.logger.Debug("recording finalized", "bytes", emission.Blob.Len())
	r.emit(ctx, emission)
	// The receiver owns the blob; this only guards against a receiver that forgot.
	emission.Blob.Release()
}

func (r *Recorder) returnToIdle() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status == StatusCaptured {
		r.status = StatusIdle
	}
}

func (r *Recorder) dump(wav []byte) {
	if r.dumpDir == "" {
		return
	}
	path, err := writeDebugWAV(r.dumpDir, wav, r.now())
	if err != nil {
		r.logger.Warn("debug audio dump failed", "error", err.Error())
		return
	}
	r.logger.Debug("debug audio written", "path", path)
}
