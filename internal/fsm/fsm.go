// Package fsm defines the interview session phase table.
package fsm

import "fmt"

type Phase string

type Event string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseActive     Phase = "active"
	PhaseEnded      Phase = "ended"
)

const (
	EventStarted Event = "started"
	EventEnded   Event = "ended"
	EventReset   Event = "reset"
)

// Transition returns the phase reached by applying event to current.
func Transition(current Phase, event Event) (Phase, error) {
	if event == EventReset {
		return PhaseNotStarted, nil
	}

	switch current {
	case PhaseNotStarted:
		switch event {
		case EventStarted:
			return PhaseActive, nil
		default:
			return current, invalidTransition(current, event)
		}
	case PhaseActive:
		switch event {
		case EventEnded:
			return PhaseEnded, nil
		default:
			return current, invalidTransition(current, event)
		}
	case PhaseEnded:
		return current, invalidTransition(current, event)
	default:
		return current, fmt.Errorf("unknown phase %q", current)
	}
}

func invalidTransition(phase Phase, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", phase, event)
}
