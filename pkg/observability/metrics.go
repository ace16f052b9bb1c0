// Package observability exposes engine activity as Prometheus metrics:
// chain run and step counters, plus a collector over the registry usage
// counters.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/strandkit/strand/pkg/registry"
)

// Metrics tracks chain execution activity.
type Metrics struct {
	runsTotal   *prometheus.CounterVec
	stepsTotal  *prometheus.CounterVec
	runDuration prometheus.Histogram
}

// NewMetrics registers the execution metrics with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "strand",
			Name:      "runs_total",
			Help:      "Chain runs, by outcome.",
		}, []string{"status"}),
		stepsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "strand",
			Name:      "steps_total",
			Help:      "Node invocations across all chain runs, by outcome.",
		}, []string{"status"}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "strand",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of chain runs.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// ObserveRun records one finished chain run.
func (m *Metrics) ObserveRun(err error, elapsed time.Duration) {
	m.runsTotal.WithLabelValues(status(err)).Inc()
	m.runDuration.Observe(elapsed.Seconds())
}

// StepHook returns a driver hook recording every node invocation.
func (m *Metrics) StepHook() func(nodeID string, err error) {
	return func(_ string, err error) {
		m.stepsTotal.WithLabelValues(status(err)).Inc()
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RegistryCollector exports the registry usage counters. Registered
// entries represent compiled-in capabilities, so the label set is
// bounded by what the host registers.
type RegistryCollector struct {
	set *registry.Set

	entries *prometheus.Desc
	gets    *prometheus.Desc
}

// NewRegistryCollector creates a collector over the given registry set.
func NewRegistryCollector(set *registry.Set) *RegistryCollector {
	return &RegistryCollector{
		set: set,
		entries: prometheus.NewDesc(
			"strand_registry_entries",
			"Registered entities per registry.",
			[]string{"registry"}, nil,
		),
		gets: prometheus.NewDesc(
			"strand_registry_gets_total",
			"Retrievals per registered identifier.",
			[]string{"registry", "id"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *RegistryCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.entries
	ch <- c.gets
}

// Collect implements prometheus.Collector.
func (c *RegistryCollector) Collect(ch chan<- prometheus.Metric) {
	type view struct {
		name  string
		ids   []string
		count func(string) int
	}
	views := []view{
		{"models", c.set.Models.List(""), c.set.Models.CountFor},
		{"actions", c.set.Actions.List(""), c.set.Actions.CountFor},
		{"ai_actions", c.set.AI.List(""), c.set.AI.CountFor},
	}
	for _, v := range views {
		ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(len(v.ids)), v.name)
		for _, id := range v.ids {
			ch <- prometheus.MustNewConstMetric(c.gets, prometheus.CounterValue, float64(v.count(id)), v.name, id)
		}
	}
}
