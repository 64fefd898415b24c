// Population setup: a one-time phase before the first step.
package engine

import (
	"log/slog"
	"math"

	"github.com/talgya/contagion/internal/agents"
	"github.com/talgya/contagion/internal/world"
)

// PopulationRequest describes the initial population.
type PopulationRequest struct {
	Size               int
	InitiallyInfected  float64 // Fraction in [0, 1]
	InitiallyRecovered float64 // Fraction in [0, 1]
}

// BuildPopulation places one agent per distinct home cell. Requests larger
// than the number of home cells are capped, not rejected; the returned slice
// length is the placed population.
func BuildPopulation(m *world.Map, sp *agents.Spawner, req PopulationRequest) ([]*agents.Agent, error) {
	if req.Size <= 0 {
		return nil, world.Configf("population", "must be positive, got %d", req.Size)
	}
	if req.InitiallyInfected < 0 || req.InitiallyInfected > 1 {
		return nil, world.Configf("initially_infected_population", "%g is not a fraction", req.InitiallyInfected)
	}
	if req.InitiallyRecovered < 0 || req.InitiallyRecovered > 1 {
		return nil, world.Configf("initially_recovered_population", "%g is not a fraction", req.InitiallyRecovered)
	}
	if req.InitiallyInfected+req.InitiallyRecovered > 1 {
		return nil, world.Configf("initially_infected_population", "infected and recovered fractions exceed 1")
	}

	homes := m.HomeCells()
	if len(homes) == 0 {
		return nil, world.Configf("map", "no home cells to place agents in")
	}

	n := req.Size
	if n > len(homes) {
		slog.Warn("population capped to available home cells",
			"requested", req.Size,
			"placed", len(homes),
		)
		n = len(homes)
	}

	infected := int(math.Round(req.InitiallyInfected * float64(n)))
	recovered := int(math.Round(req.InitiallyRecovered * float64(n)))
	if infected+recovered > n {
		recovered = n - infected
	}

	picked := sp.PickHomes(homes, n)
	population := make([]*agents.Agent, 0, n)
	for i, home := range picked {
		state := agents.Healthy
		switch {
		case i < infected:
			state = agents.Infected
		case i < infected+recovered:
			state = agents.Recovered
		}
		population = append(population, sp.Spawn(home, m.MustCellAt(home).HomeID, state))
	}

	slog.Info("population placed",
		"agents", len(population),
		"infected", infected,
		"recovered", recovered,
		"home_cells", len(homes),
	)
	return population, nil
}
