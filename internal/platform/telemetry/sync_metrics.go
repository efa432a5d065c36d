package telemetry

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Sync cycle results used as the "result" label.
const (
	SyncResultSuccess     = "success"
	SyncResultFetchFailed = "fetch_failed"
	SyncResultEmpty       = "empty"
	SyncResultPushFailed  = "push_failed"
)

// SyncMetrics holds the reconciler's Prometheus collectors.
// They are scraped from /-/metrics alongside the Go runtime collectors.
type SyncMetrics struct {
	cycles    *prometheus.CounterVec
	dropped   prometheus.Counter
	storeSize prometheus.Gauge
	duration  prometheus.Histogram
	circuit   prometheus.Gauge
}

// NewSyncMetrics creates the reconciler collectors and registers them with reg.
// Collectors already registered by an earlier call are reused.
func NewSyncMetrics(reg prometheus.Registerer) (*SyncMetrics, error) {
	m := &SyncMetrics{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quote_sync_cycles_total",
			Help: "Completed sync cycles by result.",
		}, []string{"result"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quote_sync_dropped_triggers_total",
			Help: "Sync triggers dropped because a cycle was already pending.",
		}),
		storeSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quote_store_size",
			Help: "Number of quotes currently held in the store.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "quote_sync_cycle_duration_seconds",
			Help:    "Wall-clock duration of sync cycles.",
			Buckets: prometheus.DefBuckets,
		}),
		circuit: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quote_remote_circuit_open",
			Help: "1 while the remote quote server's circuit breaker is open.",
		}),
	}

	var err error
	if m.cycles, err = register(reg, m.cycles); err != nil {
		return nil, err
	}
	if m.dropped, err = register(reg, m.dropped); err != nil {
		return nil, err
	}
	if m.storeSize, err = register(reg, m.storeSize); err != nil {
		return nil, err
	}
	if m.duration, err = register(reg, m.duration); err != nil {
		return nil, err
	}
	if m.circuit, err = register(reg, m.circuit); err != nil {
		return nil, err
	}

	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("registering sync metric: %w", err)
	}
	return c, nil
}

// CycleCompleted records one finished cycle.
func (m *SyncMetrics) CycleCompleted(result string, seconds float64) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues(result).Inc()
	m.duration.Observe(seconds)
}

// TriggerDropped records a coalesced trigger.
func (m *SyncMetrics) TriggerDropped() {
	if m == nil {
		return
	}
	m.dropped.Inc()
}

// StoreSize records the current store length.
func (m *SyncMetrics) StoreSize(n int) {
	if m == nil {
		return
	}
	m.storeSize.Set(float64(n))
}

// RemoteCircuit records whether the remote's breaker is open.
func (m *SyncMetrics) RemoteCircuit(open bool) {
	if m == nil {
		return
	}
	if open {
		m.circuit.Set(1)
		return
	}
	m.circuit.Set(0)
}
