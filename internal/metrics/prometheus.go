package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus implements Recorder backed by Prometheus collectors.
type Prometheus struct {
	// operations counts collection operations by kind.
	operations *prometheus.CounterVec
	// persists counts snapshot writes by kind and result.
	persists *prometheus.CounterVec
	// persistLatency observes snapshot write durations.
	persistLatency prometheus.Histogram
	// live is the number of stopwatches in the collection.
	live prometheus.Gauge
	// running is the number of counting stopwatches.
	running prometheus.Gauge
}

// Compile-time assertion that Prometheus implements Recorder.
var _ Recorder = (*Prometheus)(nil)

// NewPrometheus creates the collectors and registers them with reg
// (prometheus.DefaultRegisterer if nil). Namespace defaults to "stopwatch".
func NewPrometheus(reg prometheus.Registerer, namespace string) (*Prometheus, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	if namespace == "" {
		namespace = "stopwatch"
	}

	p := &Prometheus{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Total stopwatch operations by kind.",
		}, []string{"op"}),
		persists: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "writes_total",
			Help:      "Total snapshot writes by kind and result.",
		}, []string{"op", "result"}),
		persistLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "write_duration_seconds",
			Help:      "Snapshot write latency in seconds.",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
		live: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live",
			Help:      "Current number of stopwatches in the collection.",
		}),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "running",
			Help:      "Current number of running stopwatches.",
		}),
	}

	for _, c := range []prometheus.Collector{p.operations, p.persists, p.persistLatency, p.live, p.running} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// RecordOperation counts a user-triggered operation.
func (p *Prometheus) RecordOperation(op string) {
	p.operations.WithLabelValues(op).Inc()
}

// RecordPersist counts a snapshot write and observes its latency.
func (p *Prometheus) RecordPersist(op string, err error, took time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}

	p.persists.WithLabelValues(op, result).Inc()
	p.persistLatency.Observe(took.Seconds())
}

// SetStopwatches reports the live and running stopwatch counts.
func (p *Prometheus) SetStopwatches(live, running int) {
	p.live.Set(float64(live))
	p.running.Set(float64(running))
}
