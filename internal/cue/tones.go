package cue

import (
	"math"
	"time"
)

const sampleRate = 16000

const (
	cueVolume = 0.15 // below speech on a shared sink
	noteGap   = 30 * time.Millisecond
	fade      = 8 * time.Millisecond
)

// note is one pitch held for a duration. A zero pitch is a rest.
type note struct {
	hz  float64
	dur time.Duration
}

// Start rises E5-B5 and stop falls G5-C5. Cancel is a double G4 knock.
// The report cue is a C major arpeggio ending on C6.
var (
	startPCM = render(
		note{hz: 659.25, dur: 60 * time.Millisecond},
		note{hz: 987.77, dur: 80 * time.Millisecond},
	)
	stopPCM = render(
		note{hz: 783.99, dur: 60 * time.Millisecond},
		note{hz: 523.25, dur: 90 * time.Millisecond},
	)
	cancelPCM = render(
		note{hz: 392.00, dur: 50 * time.Millisecond},
		note{dur: 40 * time.Millisecond},
		note{hz: 392.00, dur: 50 * time.Millisecond},
	)
	completePCM = render(
		note{hz: 523.25, dur: 80 * time.Millisecond},
		note{hz: 659.25, dur: 80 * time.Millisecond},
		note{hz: 783.99, dur: 80 * time.Millisecond},
		note{hz: 1046.50, dur: 180 * time.Millisecond},
	)
)

func samplesFor(kind Kind) []int16 {
	switch kind {
	case Start:
		return startPCM
	case Stop:
		return stopPCM
	case Cancel:
		return cancelPCM
	case Complete:
		return completePCM
	default:
		return nil
	}
}

// render plays notes back to back with noteGap of silence between them.
func render(notes ...note) []int16 {
	var pcm []int16
	gap := make([]int16, sampleCount(noteGap))
	for i, n := range notes {
		if i > 0 {
			pcm = append(pcm, gap...)
		}
		pcm = append(pcm, renderNote(n)...)
	}
	return pcm
}

// renderNote synthesizes a sine with raised-cosine fades at both ends.
// A rest renders as silence of the same length.
func renderNote(n note) []int16 {
	count := sampleCount(n.dur)
	if count == 0 {
		return nil
	}
	pcm := make([]int16, count)
	if n.hz <= 0 {
		return pcm
	}

	fadeCount := min(sampleCount(fade), count/2)
	for i := range pcm {
		gain := 1.0
		if edge := min(i, count-1-i); edge < fadeCount {
			gain = 0.5 - 0.5*math.Cos(math.Pi*float64(edge)/float64(fadeCount))
		}
		phase := 2 * math.Pi * n.hz * float64(i) / sampleRate
		pcm[i] = int16(math.Round(math.Sin(phase) * cueVolume * gain * math.MaxInt16))
	}
	return pcm
}

func sampleCount(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d * sampleRate / time.Second)
}
