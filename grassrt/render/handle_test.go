package render

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleCachesFirstSuccess(t *testing.T) {
	calls := 0
	h := NewHandle(func() (int, error) {
		calls++
		return 7, nil
	})
	assert.False(t, h.IsResolved())

	for i := 0; i < 3; i++ {
		v, err := h.Get()
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	}
	assert.Equal(t, 1, calls)
	assert.True(t, h.IsResolved())
}

func TestHandleRetriesAfterFailure(t *testing.T) {
	fail := true
	h := NewHandle(func() (string, error) {
		if fail {
			return "", errors.New("missing")
		}
		return "mesh", nil
	})

	_, err := h.Get()
	assert.EqualError(t, err, "missing")
	assert.False(t, h.IsResolved())

	fail = false
	v, err := h.Get()
	require.NoError(t, err)
	assert.Equal(t, "mesh", v)
}

func TestHandleInvalidate(t *testing.T) {
	n := 0
	h := NewHandle(func() (int, error) {
		n++
		return n, nil
	})
	v, _ := h.Get()
	assert.Equal(t, 1, v)

	h.Invalidate()
	v, _ = h.Get()
	assert.Equal(t, 2, v)

	// Values without a resolver survive invalidation.
	r := Resolved("fixed")
	r.Invalidate()
	got, err := r.Get()
	require.NoError(t, err)
	assert.Equal(t, "fixed", got)

	var empty Handle[int]
	_, err = empty.Get()
	assert.ErrorIs(t, err, ErrUnresolved)
}
