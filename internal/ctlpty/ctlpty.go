// Package ctlpty implements a named, ref-counted control PTY: a
// CAT-style pass-through device that is not on the audio path but lets
// an external tool (a logic script, a legacy CAT client) read/write
// commands against a stable symlinked path regardless of how many
// internal consumers are attached to it, grounded directly on
// RefCountingPty.h's "construct on first use, destroy on last release"
// pattern (component-adjacent to I, per spec.md §5 "Shared resources").
package ctlpty

import (
	"fmt"
	"os"

	"github.com/creack/pty"

	"github.com/kb9vy/nettrxd/internal/refcount"
)

// ControlPty is one shared pseudo-terminal: a PTY master/slave pair with
// the slave symlinked to a stable, caller-chosen path.
type ControlPty struct {
	name   string
	master *os.File
	slave  *os.File
}

func open(name string) (*ControlPty, error) {
	master, slave, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("ctlpty: open %s: %w", name, err)
	}
	os.Remove(name)
	if err := os.Symlink(slave.Name(), name); err != nil {
		master.Close()
		slave.Close()
		return nil, fmt.Errorf("ctlpty: symlink %s -> %s: %w", name, slave.Name(), err)
	}
	return &ControlPty{name: name, master: master, slave: slave}, nil
}

func (p *ControlPty) close() {
	p.master.Close()
	p.slave.Close()
	os.Remove(p.name)
}

// Name returns the stable symlinked path external tools connect to.
func (p *ControlPty) Name() string { return p.name }

// Write sends a command line to whatever is attached to the PTY's slave
// side.
func (p *ControlPty) Write(b []byte) (int, error) { return p.master.Write(b) }

// Read blocks for the next bytes an attached tool writes back.
func (p *ControlPty) Read(b []byte) (int, error) { return p.master.Read(b) }

// Registry shares one ControlPty per distinct symlink path, matching
// RefCountingPty::instance/destroy: the first Acquire for a name creates
// it, later ones bump a refcount, and it's only torn down (and its
// symlink removed) once the last holder releases it.
type Registry struct {
	rc *refcount.Refcounted[string, *ControlPty]
}

// NewRegistry constructs an empty control-PTY registry.
func NewRegistry() *Registry {
	return &Registry{rc: refcount.New[string, *ControlPty]()}
}

// Acquire returns the shared ControlPty for name, creating it on first
// use.
func (r *Registry) Acquire(name string) (*ControlPty, error) {
	return r.rc.Acquire(name, func() (*ControlPty, error) { return open(name) })
}

// Release drops one reference to name's ControlPty, closing it and
// removing its symlink once the last holder has released it.
func (r *Registry) Release(name string) {
	r.rc.Release(name, func(p *ControlPty) { p.close() })
}
