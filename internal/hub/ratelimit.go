package hub

import (
	"net"
	"sync"

	"golang.org/x/time/rate"
)

// Admission is the hub's connection- and command-rate admission control,
// grounded on flowpbx's internal/pushgw/ratelimit.go per-key limiter map
// (here keyed by remote IP for new connections and by SessionKey for
// in-session commands, instead of by license key).
type Admission struct {
	mu       sync.Mutex
	connIP   map[string]*rate.Limiter
	connRate float64

	cmdMu      sync.Mutex
	cmdSession map[SessionKey]*rate.Limiter
	cmdRate    float64
}

// NewAdmission builds an Admission controller. A rate of 0 disables that
// limiter entirely (spec.md keeps both optional, matching the teacher's
// "0 = unlimited" convention elsewhere in its config).
func NewAdmission(connRate, cmdRate float64) *Admission {
	return &Admission{
		connIP:     make(map[string]*rate.Limiter),
		connRate:   connRate,
		cmdSession: make(map[SessionKey]*rate.Limiter),
		cmdRate:    cmdRate,
	}
}

// AllowConnection reports whether a new TCP connection from addr's host
// should be admitted.
func (a *Admission) AllowConnection(addr net.Addr) bool {
	if a.connRate <= 0 {
		return true
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		host = addr.String()
	}
	a.mu.Lock()
	lim, ok := a.connIP[host]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(a.connRate), int(a.connRate)+1)
		a.connIP[host] = lim
	}
	a.mu.Unlock()
	return lim.Allow()
}

// AllowCommand reports whether an application message from an already
// READY session should be processed, rather than silently dropped.
func (a *Admission) AllowCommand(key SessionKey) bool {
	if a.cmdRate <= 0 {
		return true
	}
	a.cmdMu.Lock()
	lim, ok := a.cmdSession[key]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(a.cmdRate), int(a.cmdRate)+1)
		a.cmdSession[key] = lim
	}
	a.cmdMu.Unlock()
	return lim.Allow()
}

// forgetSession drops the command limiter for a disconnected session so
// the map doesn't grow unboundedly across reconnects from ephemeral ports.
func (a *Admission) forgetSession(key SessionKey) {
	a.cmdMu.Lock()
	delete(a.cmdSession, key)
	a.cmdMu.Unlock()
}
