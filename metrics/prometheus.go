package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus is a Collector backed by Prometheus metrics.  Metrics are
// registered lazily on first use.
type Prometheus struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	iterations   prometheus.Counter
	evaluations  prometheus.Counter
	rejected     prometheus.Counter
	cacheLookups *prometheus.CounterVec
	best         prometheus.Gauge
	iterSeconds  prometheus.Histogram
}

var _ Collector = (*Prometheus)(nil)

// NewPrometheus returns a collector registering with reg (the default
// registerer if nil) under namespace ("rfid" if empty).
func NewPrometheus(reg prometheus.Registerer, namespace string) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "rfid"
	}
	return &Prometheus{reg: reg, namespace: namespace}
}

func (p *Prometheus) ensureRegistered() {
	p.once.Do(func() {
		p.iterations = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "swarm",
			Name:      "iterations_total",
			Help:      "Total completed swarm iterations.",
		})
		p.evaluations = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "swarm",
			Name:      "evaluations_total",
			Help:      "Total objective function evaluations.",
		})
		p.rejected = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "swarm",
			Name:      "rejected_moves_total",
			Help:      "Antenna moves reverted because the target cell was not free.",
		})
		p.cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Placement cache lookups by result (hit, miss).",
		}, []string{"result"})
		p.best = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "swarm",
			Name:      "best_fitness",
			Help:      "Fitness of the incumbent global best placement.",
		})
		p.iterSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "swarm",
			Name:      "iteration_seconds",
			Help:      "Wall time per swarm iteration in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10), // 100us .. ~26s
		})

		p.reg.MustRegister(p.iterations)
		p.reg.MustRegister(p.evaluations)
		p.reg.MustRegister(p.rejected)
		p.reg.MustRegister(p.cacheLookups)
		p.reg.MustRegister(p.best)
		p.reg.MustRegister(p.iterSeconds)
	})
}

func (p *Prometheus) RecordIteration(best float64, evals int, d time.Duration) {
	p.ensureRegistered()
	p.iterations.Inc()
	p.evaluations.Add(float64(evals))
	p.best.Set(best)
	p.iterSeconds.Observe(d.Seconds())
}

func (p *Prometheus) RecordRejected(n int) {
	p.ensureRegistered()
	p.rejected.Add(float64(n))
}

func (p *Prometheus) RecordCacheLookup(hit bool) {
	p.ensureRegistered()
	result := "miss"
	if hit {
		result = "hit"
	}
	p.cacheLookups.WithLabelValues(result).Inc()
}

// WriteTextfile dumps everything g gathers to path in the text exposition
// format, for node_exporter's textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}
	return nil
}
