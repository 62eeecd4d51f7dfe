// Package sdr implements the wideband IQ tuner driver (component I):
// a shared front-end that produces a fixed-rate complex sample stream
// from either a USB-attached receiver or a network (multicast RTP) IQ
// source, and fans it out to every registered DDR channelizer.
package sdr

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

// Source is one wideband IQ producer: a USB receiver or a network feed.
// Read blocks until a block of samples is available and returns it;
// implementations own their own internal buffering.
type Source interface {
	Read() ([]complex128, error)
	Close() error
}

// Sink receives fanned-out IQ blocks from a Tuner. internal/ddr's DDR
// type satisfies this via its Feed method.
type Sink interface {
	Feed(samples []complex128)
}

// Tuner owns one Source and fans its output out to every registered
// DDR. Several DDRs may register with one tuner (spec.md §3 "a tuner
// is shared"); the tuner itself is torn down by its owning Refcounted
// registry once the last DDR unregisters.
type Tuner struct {
	log *log.Logger

	sampleRateHz int
	source       Source

	mu     sync.Mutex
	sinks  map[int]Sink
	nextID int
}

// New builds a Tuner over source, which is assumed to produce samples
// at sampleRateHz.
func New(source Source, sampleRateHz int, logger *log.Logger) *Tuner {
	return &Tuner{
		log:          logger,
		sampleRateHz: sampleRateHz,
		source:       source,
		sinks:        make(map[int]Sink),
	}
}

func (t *Tuner) SampleRateHz() int { return t.sampleRateHz }

// Register adds a sink and returns a handle for Unregister.
func (t *Tuner) Register(s Sink) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	t.sinks[id] = s
	return id
}

// Unregister removes a sink previously added via Register. It does not
// tear down the tuner itself — that's the owning registry's job, keyed
// on the ref count reaching zero.
func (t *Tuner) Unregister(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sinks, id)
}

func (t *Tuner) snapshotSinks() []Sink {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Sink, 0, len(t.sinks))
	for _, s := range t.sinks {
		out = append(out, s)
	}
	return out
}

// Run is the tuner reader loop (spec.md §5 "the tuner reader runs in
// its own thread"): it blocks on Source.Read and fans each block out to
// every currently registered sink, until ctx is cancelled or the source
// errors out.
func (t *Tuner) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		block, err := t.source.Read()
		if err != nil {
			return fmt.Errorf("sdr: tuner read: %w", err)
		}
		for _, s := range t.snapshotSinks() {
			s.Feed(block)
		}
	}
}

// Close releases the underlying source.
func (t *Tuner) Close() error {
	return t.source.Close()
}
