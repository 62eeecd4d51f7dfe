package hub

// PeerMap is the hub's session-key -> Session mapping (spec.md §3
// "PeerMap"). It is only ever touched from the Hub event loop, so it
// carries no locking of its own; callers that need a stable view while
// relaying (spec.md §4.3 "Broadcast discipline") should call Snapshot.
type PeerMap struct {
	sessions map[SessionKey]*Session
}

func newPeerMap() *PeerMap {
	return &PeerMap{sessions: make(map[SessionKey]*Session)}
}

func (p *PeerMap) put(s *Session) {
	p.sessions[s.Key] = s
}

func (p *PeerMap) get(key SessionKey) (*Session, bool) {
	s, ok := p.sessions[key]
	return s, ok
}

func (p *PeerMap) erase(key SessionKey) {
	delete(p.sessions, key)
}

func (p *PeerMap) len() int {
	return len(p.sessions)
}

// Snapshot returns a fresh slice of the current sessions. Relaying over a
// snapshot, rather than the live map, lets a write that triggers a
// disconnect (and therefore a map mutation) happen mid-broadcast without
// corrupting the iteration (spec.md §4.3, §5).
func (p *PeerMap) Snapshot() []*Session {
	out := make([]*Session, 0, len(p.sessions))
	for _, s := range p.sessions {
		out = append(out, s)
	}
	return out
}
