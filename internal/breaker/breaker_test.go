package breaker

import (
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_PassesResultThrough(t *testing.T) {
	cb := New("test", nil)

	got, err := Do(cb, func() (string, error) { return "hola", nil })
	require.NoError(t, err)
	assert.Equal(t, "hola", got)
}

func TestDo_OpensAfterConsecutiveFailures(t *testing.T) {
	cb := New("test", nil)
	boom := errors.New("service down")

	calls := 0
	fail := func() (int, error) {
		calls++
		return 0, boom
	}

	for i := 0; i < tripAfter; i++ {
		_, err := Do(cb, fail)
		require.ErrorIs(t, err, boom)
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	_, err := Do(cb, fail)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, tripAfter, calls, "open breaker must not call through")
}
