package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds the Prometheus collectors for one run.
type Registry struct {
	AgentsInfected  prometheus.Gauge
	AgentsHealthy   prometheus.Gauge
	AgentsRecovered prometheus.Gauge
	AgentsOutside   prometheus.Gauge
	TicksTotal      prometheus.Counter
	StepDuration    prometheus.Histogram

	registry *prometheus.Registry
}

// NewRegistry creates a registry with all collectors registered.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	factory := promauto.With(r.registry)

	r.AgentsInfected = factory.NewGauge(prometheus.GaugeOpts{
		Name: "contagion_agents_infected",
		Help: "Agents currently infected",
	})
	r.AgentsHealthy = factory.NewGauge(prometheus.GaugeOpts{
		Name: "contagion_agents_healthy",
		Help: "Agents never infected so far",
	})
	r.AgentsRecovered = factory.NewGauge(prometheus.GaugeOpts{
		Name: "contagion_agents_recovered",
		Help: "Agents that have recovered",
	})
	r.AgentsOutside = factory.NewGauge(prometheus.GaugeOpts{
		Name: "contagion_agents_outside",
		Help: "Excursion gate slots currently held",
	})
	r.TicksTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "contagion_ticks_total",
		Help: "Simulation ticks completed",
	})
	r.StepDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "contagion_step_duration_seconds",
		Help:    "Wall time spent advancing one tick",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	})

	return r
}

// Observe mirrors a freshly recorded sample into the gauges.
func (r *Registry) Observe(s Sample, elapsed time.Duration) {
	r.AgentsInfected.Set(float64(s.Infected))
	r.AgentsHealthy.Set(float64(s.Healthy))
	r.AgentsRecovered.Set(float64(s.Recovered))
	r.AgentsOutside.Set(float64(s.Outside))
	r.TicksTotal.Inc()
	r.StepDuration.Observe(elapsed.Seconds())
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes the current values in the node-exporter textfile format.
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
