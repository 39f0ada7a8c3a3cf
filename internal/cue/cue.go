// Package cue plays short audible tones for recording and report events.
package cue

import (
	"context"
	"log/slog"
	"sync"

	"github.com/rbright/rehearse/internal/config"
)

// Kind identifies one cue tone.
type Kind int

const (
	Start Kind = iota + 1
	Stop
	Cancel
	Complete
)

type playFunc func(context.Context, []int16) error

// Player emits cues asynchronously, one at a time. A nil or disabled Player is silent.
type Player struct {
	enabled bool
	logger  *slog.Logger
	play    playFunc

	mu sync.Mutex
	wg sync.WaitGroup
}

// NewPlayer builds a cue player from config.
func NewPlayer(cfg config.CueConfig, logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Player{
		enabled: cfg.Enable,
		logger:  logger,
		play:    playPulse,
	}
}

// Play queues kind for playback and returns immediately.
func (p *Player) Play(kind Kind) {
	if p == nil || !p.enabled {
		return
	}
	samples := samplesFor(kind)
	if len(samples) == 0 {
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.mu.Lock()
		defer p.mu.Unlock()

		if err := p.play(context.Background(), samples); err != nil {
			p.logger.Debug("audio cue failed", "cue", int(kind), "error", err.Error())
		}
	}()
}

// Wait blocks until queued cues finish.
func (p *Player) Wait() {
	if p == nil {
		return
	}
	p.wg.Wait()
}
