package job

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	j := New("operations/op-123")

	assert.Equal(t, "operations/op-123", j.OperationName)
	assert.Equal(t, StatusPending, j.GetStatus())
	assert.False(t, j.IsTerminal())
	assert.False(t, j.CreatedAt.IsZero())
	assert.True(t, j.CompletedAt.IsZero())
}

func TestJob_Complete(t *testing.T) {
	j := New("operations/op-123")
	payload := json.RawMessage(`{"videos": []}`)

	require.NoError(t, j.Complete(payload))

	assert.Equal(t, StatusDone, j.GetStatus())
	assert.Equal(t, payload, j.GetResponse())
	assert.True(t, j.IsTerminal())
	assert.False(t, j.CompletedAt.IsZero())
}

func TestJob_Fail(t *testing.T) {
	j := New("operations/op-123")

	require.NoError(t, j.Fail("quota exceeded"))

	assert.Equal(t, StatusFailed, j.GetStatus())
	assert.Equal(t, "quota exceeded", j.GetError())
	assert.True(t, j.IsTerminal())
}

func TestJob_TerminalStatesAreFinal(t *testing.T) {
	t.Run("done job cannot fail", func(t *testing.T) {
		j := New("op")
		require.NoError(t, j.Complete(nil))
		assert.ErrorIs(t, j.Fail("late error"), ErrInvalidTransition)
		assert.Equal(t, StatusDone, j.GetStatus())
	})

	t.Run("done job cannot complete twice", func(t *testing.T) {
		j := New("op")
		require.NoError(t, j.Complete(json.RawMessage(`{"a":1}`)))
		assert.ErrorIs(t, j.Complete(json.RawMessage(`{"b":2}`)), ErrInvalidTransition)
		assert.Equal(t, json.RawMessage(`{"a":1}`), j.GetResponse())
	})

	t.Run("failed job cannot complete", func(t *testing.T) {
		j := New("op")
		require.NoError(t, j.Fail("boom"))
		assert.ErrorIs(t, j.Complete(nil), ErrInvalidTransition)
		assert.Equal(t, StatusFailed, j.GetStatus())
	})
}
