package hub

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is the hub's prometheus surface, grounded on the teacher's
// prometheus.go: a promauto factory bound to a private registry, so each
// Hub (including one built per-test) gets its own metric families instead
// of colliding on the global default registry.
type Metrics struct {
	Registry *prometheus.Registry

	sessionsActive     prometheus.Gauge
	sessionsTotal      prometheus.Counter
	sessionsReadyTotal prometheus.Counter
	messagesDropped    prometheus.Counter
}

// NewMetrics builds a fresh registry and registers the hub's metric
// families against it. StatusServer.Router serves Registry at /metrics.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		sessionsActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "nettrxd",
			Subsystem: "hub",
			Name:      "sessions_active",
			Help:      "Currently connected NetTrx sessions.",
		}),
		sessionsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: "nettrxd",
			Subsystem: "hub",
			Name:      "sessions_total",
			Help:      "Total NetTrx connections accepted since startup.",
		}),
		sessionsReadyTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: "nettrxd",
			Subsystem: "hub",
			Name:      "sessions_ready_total",
			Help:      "Total sessions that completed version/auth handshake.",
		}),
		messagesDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: "nettrxd",
			Subsystem: "hub",
			Name:      "messages_dropped_total",
			Help:      "Messages dropped by the routing table (wrong state, unknown type, floor contention).",
		}),
	}
}

func (m *Metrics) SessionConnected() {
	m.sessionsActive.Inc()
	m.sessionsTotal.Inc()
}

func (m *Metrics) SessionDisconnected() {
	m.sessionsActive.Dec()
}

func (m *Metrics) SessionReady() {
	m.sessionsReadyTotal.Inc()
}

func (m *Metrics) MessageDropped() {
	m.messagesDropped.Inc()
}
