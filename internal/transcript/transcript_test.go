package transcript

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppendAndResolvePendingUserTurn(t *testing.T) {
	t.Parallel()

	tr := New()
	require.NoError(t, tr.AppendTurn(Turn{Role: RoleAI, Content: "Tell me about yourself"}))
	require.NoError(t, tr.AppendTurn(Turn{Role: RoleUser, Content: "…", Pending: true}))

	idx, ok := tr.Pending()
	require.True(t, ok)
	require.Equal(t, 1, idx)

	require.NoError(t, tr.MutateLastPendingUser("  I am a   backend engineer\n"))

	_, ok = tr.Pending()
	require.False(t, ok)
	require.Equal(t, []Turn{
		{Role: RoleAI, Content: "Tell me about yourself"},
		{Role: RoleUser, Content: "I am a backend engineer"},
	}, tr.Turns())
}

func TestMutateWithoutPendingIsContractViolation(t *testing.T) {
	t.Parallel()

	tr := New()
	err := tr.MutateLastPendingUser("hello")
	require.ErrorIs(t, err, ErrContractViolation)
	require.Contains(t, err.Error(), "no turns")

	require.NoError(t, tr.AppendTurn(Turn{Role: RoleAI, Content: "q1"}))
	err = tr.MutateLastPendingUser("hello")
	require.ErrorIs(t, err, ErrContractViolation)
	require.Equal(t, []Turn{{Role: RoleAI, Content: "q1"}}, tr.Turns())
}

func TestMutateTwiceFailsSecondTime(t *testing.T) {
	t.Parallel()

	tr := New()
	require.NoError(t, tr.AppendTurn(Turn{Role: RoleUser, Pending: true}))
	require.NoError(t, tr.MutateLastPendingUser("first"))

	err := tr.MutateLastPendingUser("second")
	require.ErrorIs(t, err, ErrContractViolation)
	require.Equal(t, "first", tr.Turns()[0].Content)
}

func TestAppendRejectsSecondPendingTurn(t *testing.T) {
	t.Parallel()

	tr := New()
	require.NoError(t, tr.AppendTurn(Turn{Role: RoleUser, Pending: true}))

	err := tr.AppendTurn(Turn{Role: RoleUser, Pending: true})
	require.ErrorIs(t, err, ErrContractViolation)
	require.Equal(t, 1, tr.Len())
}

func TestAppendRejectsTurnAfterPending(t *testing.T) {
	t.Parallel()

	tr := New()
	require.NoError(t, tr.AppendTurn(Turn{Role: RoleUser, Pending: true}))

	err := tr.AppendTurn(Turn{Role: RoleAI, Content: "follow-up"})
	require.ErrorIs(t, err, ErrContractViolation)
	require.Equal(t, 1, tr.Len())
}

func TestAppendRejectsPendingAITurn(t *testing.T) {
	t.Parallel()

	tr := New()
	err := tr.AppendTurn(Turn{Role: RoleAI, Content: "q", Pending: true})
	require.ErrorIs(t, err, ErrContractViolation)
	require.Zero(t, tr.Len())
}

func TestTurnsReturnsCopy(t *testing.T) {
	t.Parallel()

	tr := New()
	require.NoError(t, tr.AppendTurn(Turn{Role: RoleAI, Content: "q1"}))

	turns := tr.Turns()
	turns[0].Content = "mutated"
	require.Equal(t, "q1", tr.Turns()[0].Content)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	require.Equal(t, "hello world", Normalize(" hello\n\tworld  "))
	require.Empty(t, Normalize("   "))
}
