package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics records outcomes of ledger mutations. The corruption counter
// fires only when a balance update is discovered to have diverged from the
// transaction log, which should stay at zero forever.
type LedgerMetrics struct {
	duration   *prometheus.HistogramVec
	mutations  *prometheus.CounterVec
	corruption prometheus.Counter
}

// NewLedgerMetrics registers the ledger metrics on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_mutation_duration_seconds",
		Help:    "Duration of ledger mutations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_mutations_total",
		Help: "Ledger mutations by operation and outcome.",
	}, []string{"op", "outcome"})
	corruption := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledger_corruption_detected_total",
		Help: "Balance updates found inconsistent with the transaction log.",
	})
	reg.MustRegister(duration, mutations, corruption)
	return &LedgerMetrics{
		duration:   duration,
		mutations:  mutations,
		corruption: corruption,
	}
}

// ObserveDuration records the duration for the named operation.
func (m *LedgerMetrics) ObserveDuration(op string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(op)).Observe(duration.Seconds())
}

// IncSuccess increments the success outcome for the named operation.
func (m *LedgerMetrics) IncSuccess(op string) {
	if m == nil || m.mutations == nil {
		return
	}
	m.mutations.WithLabelValues(normalizeLabel(op), "success").Inc()
}

// IncFailure increments the failure outcome for the named operation.
func (m *LedgerMetrics) IncFailure(op string) {
	if m == nil || m.mutations == nil {
		return
	}
	m.mutations.WithLabelValues(normalizeLabel(op), "failure").Inc()
}

// IncCorruptionDetected increments the alertable corruption counter.
func (m *LedgerMetrics) IncCorruptionDetected() {
	if m == nil || m.corruption == nil {
		return
	}
	m.corruption.Inc()
}

func normalizeLabel(op string) string {
	if op == "" {
		return "unknown"
	}
	return op
}
