package cue

import (
	"context"
	"fmt"

	"github.com/jfreymuth/pulse"
)

// sampleFeed hands a fixed cue to Pulse in whatever chunk sizes it asks for.
type sampleFeed struct {
	samples []int16
}

func (f *sampleFeed) read(buf []int16) (int, error) {
	n := copy(buf, f.samples)
	f.samples = f.samples[n:]
	if len(f.samples) == 0 {
		return n, pulse.EndOfData
	}
	return n, nil
}

// playPulse plays one cue on the default sink and returns after it drains.
// ctx is only consulted before connecting; a cue lasts well under a second.
func playPulse(ctx context.Context, samples []int16) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	client, err := pulse.NewClient(pulse.ClientApplicationName("rehearse"))
	if err != nil {
		return fmt.Errorf("connect pulse server: %w", err)
	}
	defer client.Close()

	feed := &sampleFeed{samples: samples}
	stream, err := client.NewPlayback(
		pulse.Int16Reader(feed.read),
		pulse.PlaybackMono,
		pulse.PlaybackSampleRate(sampleRate),
		pulse.PlaybackLatency(0.05),
		pulse.PlaybackMediaName("rehearse cue"),
	)
	if err != nil {
		return fmt.Errorf("open cue playback: %w", err)
	}
	defer stream.Close()

	stream.Start()
	stream.Drain()
	if err := stream.Error(); err != nil {
		return fmt.Errorf("play cue: %w", err)
	}
	return nil
}
