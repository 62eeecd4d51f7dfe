package hub

import "time"

// setMaster sets the floor holder to s iff no one currently holds it
// (spec.md §4.3). It starts the squelch-hold watchdog. Returns whether the
// assignment took effect.
func (h *Hub) setMaster(s *Session) bool {
	if h.master != nil {
		return false
	}
	h.master = s
	h.armSquelchWatchdog(s)
	h.telemetry.PublishFloor(s.Key.String(), true)
	return true
}

// resetMaster clears the floor holder iff it is currently s (spec.md
// §4.3). It stops the squelch-hold watchdog and the audio watchdog.
func (h *Hub) resetMaster(s *Session) bool {
	if h.master != s {
		return false
	}
	h.master = nil
	h.disarmSquelchWatchdog(s)
	h.disarmAudioWatchdog(s)
	h.telemetry.PublishFloor(s.Key.String(), false)
	return true
}

func (h *Hub) hasMaster() bool { return h.master != nil }

func (h *Hub) isMaster(s *Session) bool { return h.master == s }

// armAudioWatchdog (re)starts the 1s one-shot audio watchdog for s
// (spec.md §4.3 "Audio watchdog"). Each call invalidates any in-flight
// fire from a previous arming via the generation counter.
func (h *Hub) armAudioWatchdog(s *Session) {
	s.audioWatchdogGen++
	gen := s.audioWatchdogGen
	key := s.Key
	if s.audioWatchdogTimer != nil {
		s.audioWatchdogTimer.Stop()
	}
	s.audioWatchdogTimer = time.AfterFunc(audioWatchdogPeriod, func() {
		h.postEvent(event{kind: evAudioWatchdog, key: key, gen: gen})
	})
}

func (h *Hub) disarmAudioWatchdog(s *Session) {
	if s.audioWatchdogTimer != nil {
		s.audioWatchdogTimer.Stop()
	}
	s.audioWatchdogGen++ // invalidate any fire already in flight
}

func (h *Hub) armSquelchWatchdog(s *Session) {
	s.squelchWatchdogGen++
	gen := s.squelchWatchdogGen
	key := s.Key
	if s.squelchWatchdogTimer != nil {
		s.squelchWatchdogTimer.Stop()
	}
	s.squelchWatchdogTimer = time.AfterFunc(h.cfg.SquelchTimeout, func() {
		h.postEvent(event{kind: evSquelchWatchdog, key: key, gen: gen})
	})
}

func (h *Hub) disarmSquelchWatchdog(s *Session) {
	if s.squelchWatchdogTimer != nil {
		s.squelchWatchdogTimer.Stop()
	}
	s.squelchWatchdogGen++
}

// audioWatchdogPeriod is the fixed 1000ms one-shot timer from spec.md §4.3.
const audioWatchdogPeriod = 1 * time.Second
