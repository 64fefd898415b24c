// Package metrics records the per-tick aggregate counts of a run and mirrors
// the latest values into Prometheus gauges.
package metrics

import "fmt"

// Sample is one row of the epidemic time series.
type Sample struct {
	Tick      uint64 `json:"tick" db:"tick"`
	Infected  int    `json:"infected" db:"infected"`
	Healthy   int    `json:"healthy" db:"healthy"`
	Recovered int    `json:"recovered" db:"recovered"`
	Outside   int    `json:"outside" db:"outside"`
}

// Total returns the population the sample covers.
func (s Sample) Total() int {
	return s.Infected + s.Healthy + s.Recovered
}

// Collector is an append-only, gap-free series of samples.
type Collector struct {
	samples []Sample
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Record appends s. After the first sample, ticks must increase by exactly one.
func (c *Collector) Record(s Sample) error {
	if n := len(c.samples); n > 0 {
		if want := c.samples[n-1].Tick + 1; s.Tick != want {
			return fmt.Errorf("record tick %d: expected tick %d", s.Tick, want)
		}
	}
	c.samples = append(c.samples, s)
	return nil
}

// Samples returns a copy of the recorded series.
func (c *Collector) Samples() []Sample {
	return append([]Sample(nil), c.samples...)
}

// Len returns the number of recorded samples.
func (c *Collector) Len() int {
	return len(c.samples)
}

// Last returns the most recent sample.
func (c *Collector) Last() (Sample, bool) {
	if len(c.samples) == 0 {
		return Sample{}, false
	}
	return c.samples[len(c.samples)-1], true
}

// Columns splits the series into parallel float slices for plotting.
func (c *Collector) Columns() (ticks, infected, healthy, recovered []float64) {
	return Columns(c.samples)
}

// Columns splits samples into parallel float slices for plotting.
func Columns(samples []Sample) (ticks, infected, healthy, recovered []float64) {
	ticks = make([]float64, len(samples))
	infected = make([]float64, len(samples))
	healthy = make([]float64, len(samples))
	recovered = make([]float64, len(samples))
	for i, s := range samples {
		ticks[i] = float64(s.Tick)
		infected[i] = float64(s.Infected)
		healthy[i] = float64(s.Healthy)
		recovered[i] = float64(s.Recovered)
	}
	return ticks, infected, healthy, recovered
}
