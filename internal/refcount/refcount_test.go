package refcount

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpensOnceAndClosesOnLastRelease(t *testing.T) {
	opens, closes := 0, 0
	rc := New[string, int]()

	open := func() (int, error) { opens++; return 42, nil }
	closeFn := func(int) { closes++ }

	v1, err := rc.Acquire("k", open)
	require.NoError(t, err)
	require.Equal(t, 42, v1)
	v2, err := rc.Acquire("k", open)
	require.NoError(t, err)
	require.Equal(t, 42, v2)
	require.Equal(t, 1, opens)

	rc.Release("k", closeFn)
	require.Equal(t, 0, closes)
	rc.Release("k", closeFn)
	require.Equal(t, 1, closes)
	require.Equal(t, 0, rc.Len())
}

func TestDistinctKeysOpenIndependently(t *testing.T) {
	rc := New[string, int]()
	open := func(v int) func() (int, error) {
		return func() (int, error) { return v, nil }
	}

	a, err := rc.Acquire("a", open(1))
	require.NoError(t, err)
	b, err := rc.Acquire("b", open(2))
	require.NoError(t, err)
	require.Equal(t, 1, a)
	require.Equal(t, 2, b)
	require.Equal(t, 2, rc.Len())
}
