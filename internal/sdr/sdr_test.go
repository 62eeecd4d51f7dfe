package sdr

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	mu     sync.Mutex
	blocks int
}

func (f *fakeSink) Feed(samples []complex128) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blocks++
}

func (f *fakeSink) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.blocks
}

func TestTunerFansOutToRegisteredSinks(t *testing.T) {
	src := NewSimSource(48000)
	src.AddTone(1000, 1.0)
	tn := New(src, 48000, nil)

	a, b := &fakeSink{}, &fakeSink{}
	tn.Register(a)
	idB := tn.Register(b)

	ctx, cancel := context.WithCancel(context.Background())
	go tn.Run(ctx)

	require.Eventually(t, func() bool {
		return a.count() > 0 && b.count() > 0
	}, time.Second, 5*time.Millisecond)

	tn.Unregister(idB)
	cancel()
}

func TestSimSourceProducesRequestedTone(t *testing.T) {
	src := NewSimSource(8000)
	src.AddTone(1000, 1.0)
	block, err := src.Read()
	require.NoError(t, err)
	require.NotEmpty(t, block)
	require.InDelta(t, 1.0, real(block[0])*real(block[0])+imag(block[0])*imag(block[0]), 1e-9)
}
