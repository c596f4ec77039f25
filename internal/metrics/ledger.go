package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics records transport and change-stream activity of the simulator.
// A nil *LedgerMetrics is valid and records nothing.
type LedgerMetrics struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	subscribers *prometheus.GaugeVec
	changes     prometheus.Counter
	relayed     *prometheus.CounterVec
}

// NewLedgerMetrics registers the ledger metrics on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cpay",
		Name:      "rpc_requests_total",
		Help:      "Ledger RPCs by method and status code.",
	}, []string{"method", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cpay",
		Name:      "rpc_duration_seconds",
		Help:      "Duration of ledger RPCs in seconds, simulated latency included.",
		Buckets:   []float64{.005, .05, .1, .25, .5, .75, 1, 2.5},
	}, []string{"method"})
	subscribers := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "cpay",
		Name:      "change_subscribers",
		Help:      "Active change-stream subscribers by transport.",
	}, []string{"transport"})
	changes := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cpay",
		Name:      "ledger_changes_total",
		Help:      "Successful ledger mutations.",
	})
	relayed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cpay",
		Name:      "feed_relayed_total",
		Help:      "Feed items handed to the event publisher by result.",
	}, []string{"result"})
	reg.MustRegister(requests, duration, subscribers, changes, relayed)
	return &LedgerMetrics{
		requests:    requests,
		duration:    duration,
		subscribers: subscribers,
		changes:     changes,
		relayed:     relayed,
	}
}

// ObserveRPC records one completed RPC.
func (m *LedgerMetrics) ObserveRPC(method, code string, elapsed time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	m.requests.WithLabelValues(normalizeLabel(method), normalizeLabel(code)).Inc()
	m.duration.WithLabelValues(normalizeLabel(method)).Observe(elapsed.Seconds())
}

// SubscriberAdded increments the subscriber gauge of a transport.
func (m *LedgerMetrics) SubscriberAdded(transport string) {
	if m == nil || m.subscribers == nil {
		return
	}
	m.subscribers.WithLabelValues(normalizeLabel(transport)).Inc()
}

// SubscriberRemoved decrements the subscriber gauge of a transport.
func (m *LedgerMetrics) SubscriberRemoved(transport string) {
	if m == nil || m.subscribers == nil {
		return
	}
	m.subscribers.WithLabelValues(normalizeLabel(transport)).Dec()
}

// LedgerChanged counts one change notification.
func (m *LedgerMetrics) LedgerChanged() {
	if m == nil || m.changes == nil {
		return
	}
	m.changes.Inc()
}

// FeedRelayed counts a relayed feed item; ok reports whether publishing succeeded.
func (m *LedgerMetrics) FeedRelayed(ok bool) {
	if m == nil || m.relayed == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	m.relayed.WithLabelValues(result).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
