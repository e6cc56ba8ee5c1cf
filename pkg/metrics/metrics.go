// Package metrics exposes Prometheus instrumentation for the synthesis
// engine and signal gatherer.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every collector the engine reports into. It satisfies
// synthesis.EngineMetrics and signal.FailureRecorder.
type Metrics struct {
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	coalescedWaits  prometheus.Counter
	refreshDuration prometheus.Histogram
	refreshFailures prometheus.Counter
	sourceFailures  *prometheus.CounterVec
}

// New creates the collectors and registers them with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ember",
			Subsystem: "context_cache",
			Name:      "hits_total",
			Help:      "Requests served from the cached context.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ember",
			Subsystem: "context_cache",
			Name:      "misses_total",
			Help:      "Requests that found the cached context stale or absent.",
		}),
		coalescedWaits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ember",
			Subsystem: "context_cache",
			Name:      "coalesced_waits_total",
			Help:      "Requests that joined an in-flight refresh instead of starting one.",
		}),
		refreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ember",
			Subsystem: "synthesis",
			Name:      "refresh_duration_seconds",
			Help:      "Wall time of one full synthesis cycle.",
			Buckets:   prometheus.DefBuckets,
		}),
		refreshFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ember",
			Subsystem: "synthesis",
			Name:      "refresh_failures_total",
			Help:      "Synthesis cycles that failed to publish.",
		}),
		sourceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ember",
			Subsystem: "signals",
			Name:      "source_failures_total",
			Help:      "Adapter reads that degraded to an empty signal.",
		}, []string{"source"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.cacheHits,
			m.cacheMisses,
			m.coalescedWaits,
			m.refreshDuration,
			m.refreshFailures,
			m.sourceFailures,
		)
	}
	return m
}

// CacheHit records a request served from cache.
func (m *Metrics) CacheHit() { m.cacheHits.Inc() }

// CacheMiss records a stale or absent cached context.
func (m *Metrics) CacheMiss() { m.cacheMisses.Inc() }

// WaiterCoalesced records a request that shared an in-flight refresh.
func (m *Metrics) WaiterCoalesced() { m.coalescedWaits.Inc() }

// RefreshDone records the outcome of one synthesis cycle.
func (m *Metrics) RefreshDone(d time.Duration, ok bool) {
	m.refreshDuration.Observe(d.Seconds())
	if !ok {
		m.refreshFailures.Inc()
	}
}

// SourceFailure records one degraded adapter read.
func (m *Metrics) SourceFailure(source string) {
	m.sourceFailures.WithLabelValues(source).Inc()
}
