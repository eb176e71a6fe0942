package helper

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBase = errors.New("connection refused")

func TestNewError(t *testing.T) {
	t.Run("Nil error stays nil", func(t *testing.T) {
		assert.NoError(t, NewError("select", nil), "Expected nil for nil input")
	})

	t.Run("Wrapped error keeps original", func(t *testing.T) {
		err := NewError("select chunks", errBase)

		require.Error(t, err)
		assert.ErrorIs(t, err, errBase, "Expected errors.Is to reach the original error")
		assert.Contains(t, err.Error(), "select chunks", "Expected operation in message")
		assert.Contains(t, err.Error(), "connection refused", "Expected original message")
	})

	t.Run("Wrapping twice extends the trace", func(t *testing.T) {
		err := NewError("outer", NewError("inner", errBase))

		var e *Error
		require.ErrorAs(t, err, &e)
		assert.Len(t, e.Trace, 2, "Expected two trace entries")
		assert.Contains(t, e.Trace[0], "outer", "Expected outer operation first")
		assert.Contains(t, e.Trace[1], "inner", "Expected inner operation second")
		assert.Equal(t, errBase, e.Original, "Expected original error to be preserved")
	})
}
