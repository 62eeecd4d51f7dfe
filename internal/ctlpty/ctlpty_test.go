package ctlpty

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistrySharesOneDeviceAcrossAcquires(t *testing.T) {
	name := filepath.Join(t.TempDir(), "cat0")
	r := NewRegistry()

	p1, err := r.Acquire(name)
	require.NoError(t, err)
	p2, err := r.Acquire(name)
	require.NoError(t, err)
	require.Same(t, p1, p2)

	r.Release(name)
	r.Release(name)
}

func TestControlPtyAcceptsWrites(t *testing.T) {
	name := filepath.Join(t.TempDir(), "cat1")
	r := NewRegistry()
	p, err := r.Acquire(name)
	require.NoError(t, err)
	defer r.Release(name)

	n, err := p.Write([]byte("PING\n"))
	require.NoError(t, err)
	require.Equal(t, 5, n)
}
