// Simulation ties the grid, the population and the shared resources together
// and advances them one tick at a time.
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/talgya/contagion/internal/agents"
	"github.com/talgya/contagion/internal/entropy"
	"github.com/talgya/contagion/internal/epidemic"
	"github.com/talgya/contagion/internal/metrics"
	"github.com/talgya/contagion/internal/world"
)

// Params are the run-wide settings the simulation owns.
type Params struct {
	Seed                   int64
	GateCapacity           int
	InfectionProbabilities []float64
}

// Simulation holds the complete run state.
type Simulation struct {
	Map        *world.Map
	Agents     []*agents.Agent // Creation order
	AgentIndex map[agents.AgentID]*agents.Agent
	Occupancy  *agents.Occupancy
	Gate       *agents.ExcursionGate
	Infection  *epidemic.Model
	Rand       *entropy.Source
	LastTick   uint64 // Most recent tick processed

	// Per-tick series, plus optional Prometheus mirror.
	Collector *metrics.Collector
	Metrics   *metrics.Registry

	// Statistics for the latest tick.
	Stats SimStats

	env *agents.Env
}

// SimStats tracks aggregate run statistics.
type SimStats struct {
	TotalPopulation int    `json:"total_population"`
	Infected        int    `json:"infected"`
	Healthy         int    `json:"healthy"`
	Recovered       int    `json:"recovered"`
	Outside         int    `json:"outside"`
	PeakInfected    int    `json:"peak_infected"`
	PeakTick        uint64 `json:"peak_tick"`
}

// NewSimulation indexes ag at their current positions and records tick 0.
// Agents already marked Outside take a gate slot each.
func NewSimulation(m *world.Map, ag []*agents.Agent, p Params) (*Simulation, error) {
	gate, err := agents.NewExcursionGate(p.GateCapacity)
	if err != nil {
		return nil, err
	}
	model, err := epidemic.NewModel(p.InfectionProbabilities)
	if err != nil {
		return nil, err
	}

	occ := agents.NewOccupancy(m)
	index := make(map[agents.AgentID]*agents.Agent, len(ag))
	for _, a := range ag {
		if _, dup := index[a.ID]; dup {
			return nil, world.Configf("agents", "duplicate agent id %d", a.ID)
		}
		if !m.Accessible(a.Position) {
			return nil, world.Configf("agents", "agent %d placed on inaccessible cell %s", a.ID, a.Position)
		}
		if err := occ.Place(a, a.Position); err != nil {
			return nil, fmt.Errorf("place agent %d: %w", a.ID, err)
		}
		if a.Outing == agents.Outside && !gate.Acquire() {
			return nil, world.Configf("agents", "more agents outside than the gate allows (%d)", gate.Capacity())
		}
		index[a.ID] = a
	}

	s := &Simulation{
		Map:        m,
		Agents:     ag,
		AgentIndex: index,
		Occupancy:  occ,
		Gate:       gate,
		Infection:  model,
		Rand:       entropy.New(p.Seed),
		Collector:  metrics.NewCollector(),
	}
	s.env = &agents.Env{
		Map:       m,
		Occupancy: occ,
		Gate:      gate,
		Infection: model,
		Rand:      s.Rand,
	}

	s.updateStats()
	if err := s.Collector.Record(s.sample()); err != nil {
		return nil, err
	}
	return s, nil
}

// CurrentTick returns the most recently processed tick number.
func (s *Simulation) CurrentTick() uint64 {
	return s.LastTick
}

// Step advances one tick: every agent acts once, in a fresh random order,
// then one sample is recorded.
func (s *Simulation) Step() {
	start := time.Now()
	s.LastTick++

	for _, i := range s.Rand.Perm(len(s.Agents)) {
		s.Agents[i].Step(s.env)
	}

	s.updateStats()
	sample := s.sample()
	if err := s.Collector.Record(sample); err != nil {
		// Ticks advance by exactly one per step; a gap means corrupted state.
		panic(err)
	}
	if s.Metrics != nil {
		s.Metrics.Observe(sample, time.Since(start))
	}
}

// Run advances n ticks synchronously.
func (s *Simulation) Run(n int) {
	for i := 0; i < n; i++ {
		s.Step()
	}
}

// Report logs the latest statistics.
func (s *Simulation) Report(tick uint64) {
	slog.Info("epidemic report",
		"tick", tick,
		"population", s.Stats.TotalPopulation,
		"infected", s.Stats.Infected,
		"healthy", s.Stats.Healthy,
		"recovered", s.Stats.Recovered,
		"outside", s.Stats.Outside,
		"peak_infected", s.Stats.PeakInfected,
		"peak_tick", s.Stats.PeakTick,
	)
}

func (s *Simulation) sample() metrics.Sample {
	return metrics.Sample{
		Tick:      s.LastTick,
		Infected:  s.Stats.Infected,
		Healthy:   s.Stats.Healthy,
		Recovered: s.Stats.Recovered,
		Outside:   s.Stats.Outside,
	}
}

func (s *Simulation) updateStats() {
	var infected, healthy, recovered int
	for _, a := range s.Agents {
		switch a.Disease {
		case agents.Infected:
			infected++
		case agents.Healthy:
			healthy++
		case agents.Recovered:
			recovered++
		}
	}

	s.Stats.TotalPopulation = len(s.Agents)
	s.Stats.Infected = infected
	s.Stats.Healthy = healthy
	s.Stats.Recovered = recovered
	s.Stats.Outside = s.Gate.Outside()
	if infected > s.Stats.PeakInfected {
		s.Stats.PeakInfected = infected
		s.Stats.PeakTick = s.LastTick
	}
}
