package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/contagion/internal/agents"
	"github.com/talgya/contagion/internal/world"
)

type scenario struct {
	seed       int64
	population int
	infected   float64
	capacity   int
	goingOut   float64
	probs      []float64
}

func defaultScenario(seed int64) scenario {
	return scenario{
		seed:       seed,
		population: 15,
		infected:   0.2,
		capacity:   3,
		goingOut:   0.3,
		probs:      []float64{0.3, 0.1},
	}
}

func newScenarioSim(t *testing.T, sc scenario) *Simulation {
	t.Helper()
	layout := world.Generate(world.SmallTestConfig())
	m, err := world.NewMap(layout, world.Options{TargetCount: 10, Seed: sc.seed})
	require.NoError(t, err)

	cfg := agents.DefaultSpawnConfig()
	cfg.MaxOutsideTicks = 4
	cfg.GoingOutMean = sc.goingOut
	pop, err := BuildPopulation(m, agents.NewSpawner(sc.seed, cfg), PopulationRequest{
		Size:              sc.population,
		InitiallyInfected: sc.infected,
	})
	require.NoError(t, err)

	sim, err := NewSimulation(m, pop, Params{
		Seed:                   sc.seed,
		GateCapacity:           sc.capacity,
		InfectionProbabilities: sc.probs,
	})
	require.NoError(t, err)
	return sim
}

func uniform(rows, cols, code int) [][]int {
	layout := make([][]int, rows)
	for r := range layout {
		layout[r] = make([]int, cols)
		for c := range layout[r] {
			layout[r][c] = code
		}
	}
	return layout
}
