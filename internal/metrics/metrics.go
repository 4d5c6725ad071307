// Package metrics exposes the Prometheus counters and histogram the
// iteration controller updates: iterations run, crashes detected, retries,
// and per-iteration wall-clock duration. Updated only from C6, never from
// C5, so instrumentation never competes with the run engine's hot path for
// locks — the same separation the teacher keeps between query latency
// instrumentation and the querier's receive loop.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles every counter/histogram the iteration controller touches.
type Metrics struct {
	Iterations prometheus.Counter
	Crashes    prometheus.Counter
	Retries    prometheus.Counter
	Duration   prometheus.Histogram
}

// New constructs and registers a Metrics bundle against reg. Passing
// prometheus.NewRegistry() isolates tests from the global default registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beaconfuzz_iterations_total",
			Help: "Total number of fuzzing iterations run.",
		}),
		Crashes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beaconfuzz_crashes_total",
			Help: "Total number of crash detections, from callbacks or the monitor edge.",
		}),
		Retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beaconfuzz_retries_total",
			Help: "Total number of RetryCurrentRunException re-entries.",
		}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "beaconfuzz_iteration_duration_seconds",
			Help:    "Wall-clock duration of one run-engine iteration.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.Iterations, m.Crashes, m.Retries, m.Duration)
	return m
}
