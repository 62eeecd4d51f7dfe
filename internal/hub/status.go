package hub

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/kb9vy/nettrxd/internal/logging"
)

// upgrader mirrors the teacher's websocket.go: generous buffers, no
// built-in compression, origins left open for a same-host status page.
var statusUpgrader = websocket.Upgrader{
	ReadBufferSize:    4096,
	WriteBufferSize:   65536,
	EnableCompression: false,
	CheckOrigin:       func(r *http.Request) bool { return true },
}

type sessionView struct {
	ID         string `json:"id"`
	Key        string `json:"key"`
	State      string `json:"state"`
	IsMaster   bool   `json:"is_master"`
	Blocked    bool   `json:"blocked"`
	LastMsgAgo string `json:"last_msg_ago"`
}

// hostStatsView is the host resource snapshot the teacher's own
// instance_reporter.go surfaces alongside session state, so an operator
// watching the status endpoint can tell a stall apart from a loaded box.
type hostStatsView struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemUsedPct float64 `json:"mem_used_percent"`
}

func (s *StatusServer) handleHostStats(w http.ResponseWriter, r *http.Request) {
	view := hostStatsView{}
	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		view.CPUPercent = pct[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		view.MemUsedPct = vm.UsedPercent
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(view)
}

// StatusServer exposes a chi-routed JSON/HTTP surface over the hub's live
// state: a snapshot endpoint, a prometheus /metrics handler, and a
// gorilla/websocket feed of whatever is passed to broadcastEvent (the
// hub's floor transitions are not routed to it), grounded on the
// teacher's admin.go (chi routing) and websocket.go (upgrader, broadcast
// set) patterns.
type StatusServer struct {
	hub *Hub

	mu        sync.Mutex
	listeners map[*websocket.Conn]chan []byte
}

// NewStatusServer builds the router. Call ListenAndServe with cfg.StatusListen.
func NewStatusServer(h *Hub) *StatusServer {
	return &StatusServer{hub: h, listeners: make(map[*websocket.Conn]chan []byte)}
}

func (s *StatusServer) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/sessions", s.handleSessions)
	r.Get("/host", s.handleHostStats)
	r.Get("/metrics", promhttp.HandlerFor(s.hub.metrics.Registry, promhttp.HandlerOpts{}).ServeHTTP)
	r.Get("/ws", s.handleWS)
	return r
}

func (s *StatusServer) handleSessions(w http.ResponseWriter, r *http.Request) {
	out := make([]sessionView, 0)
	for _, sess := range s.hub.peers.Snapshot() {
		out = append(out, sessionView{
			ID:         sess.ID,
			Key:        sess.Key.String(),
			State:      sess.State.String(),
			IsMaster:   s.hub.isMaster(sess),
			Blocked:    sess.Blocked,
			LastMsgAgo: time.Since(sess.LastMsg).Round(time.Millisecond).String(),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (s *StatusServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := statusUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.For("hub-status").Warn("websocket upgrade failed", "err", err)
		return
	}
	ch := make(chan []byte, 16)
	s.mu.Lock()
	s.listeners[conn] = ch
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.listeners, conn)
		s.mu.Unlock()
		_ = conn.Close()
	}()

	for msg := range ch {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// broadcastEvent fans a JSON event out to every connected status websocket.
// It never blocks its caller since each listener has its own buffered
// channel and a slow reader is simply disconnected rather than
// backpressuring the publisher.
func (s *StatusServer) broadcastEvent(v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn, ch := range s.listeners {
		select {
		case ch <- payload:
		default:
			delete(s.listeners, conn)
			_ = conn.Close()
		}
	}
}
