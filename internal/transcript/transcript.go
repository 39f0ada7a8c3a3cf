// Package transcript holds the ordered interview turn log and its single pending slot.
package transcript

import (
	"errors"
	"fmt"
	"strings"
)

// ErrContractViolation reports a broken transcript invariant. It indicates a sequencing bug.
var ErrContractViolation = errors.New("transcript contract violation")

// Role identifies the author of one turn.
type Role string

const (
	RoleUser Role = "user"
	RoleAI   Role = "ai"
)

// Turn is one exchange unit in the transcript.
type Turn struct {
	Role    Role
	Content string
	Pending bool
}

// slot is an optional index into turns.
type slot struct {
	index int
	ok    bool
}

// Transcript is an append-only turn log. At most one turn is pending, and it is
// always the last turn and always authored by the user.
type Transcript struct {
	turns   []Turn
	pending slot
}

// New returns an empty transcript.
func New() *Transcript {
	return &Transcript{}
}

// AppendTurn adds turn at the end of the log.
func (t *Transcript) AppendTurn(turn Turn) error {
	if t.pending.ok {
		return fmt.Errorf("%w: append %s turn while turn %d is pending", ErrContractViolation, turn.Role, t.pending.index)
	}
	if turn.Pending && turn.Role != RoleUser {
		return fmt.Errorf("%w: pending turn must be authored by %s, got %s", ErrContractViolation, RoleUser, turn.Role)
	}

	t.turns = append(t.turns, turn)
	if turn.Pending {
		t.pending = slot{index: len(t.turns) - 1, ok: true}
	}
	return nil
}

// MutateLastPendingUser replaces the pending user turn's content and clears its pending flag.
func (t *Transcript) MutateLastPendingUser(content string) error {
	if len(t.turns) == 0 {
		return fmt.Errorf("%w: no turns to resolve", ErrContractViolation)
	}
	if !t.pending.ok {
		return fmt.Errorf("%w: no pending turn to resolve", ErrContractViolation)
	}

	last := len(t.turns) - 1
	if t.pending.index != last {
		return fmt.Errorf("%w: pending turn %d is not last (%d)", ErrContractViolation, t.pending.index, last)
	}
	if t.turns[last].Role != RoleUser {
		return fmt.Errorf("%w: pending turn is authored by %s", ErrContractViolation, t.turns[last].Role)
	}

	t.turns[last].Content = Normalize(content)
	t.turns[last].Pending = false
	t.pending = slot{}
	return nil
}

// Pending returns the index of the pending turn, if any.
func (t *Transcript) Pending() (int, bool) {
	return t.pending.index, t.pending.ok
}

// Len returns the number of turns.
func (t *Transcript) Len() int {
	return len(t.turns)
}

// Turns returns a copy of the log.
func (t *Transcript) Turns() []Turn {
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Normalize collapses runs of whitespace in recognized text.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
