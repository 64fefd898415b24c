// Agent spawning: assigns ids, households and per-agent parameters for the
// initial population.
package agents

import (
	"github.com/talgya/contagion/internal/entropy"
	"github.com/talgya/contagion/internal/world"
)

// SpawnConfig controls per-agent parameters drawn at creation.
type SpawnConfig struct {
	MaxInfectionTicks int
	MaxOutsideTicks   int
	GoingOutMean      float64 // Mean of the clipped-normal going-out probability
	GoingOutStdDev    float64
}

// DefaultSpawnConfig mirrors the built-in scenario.
func DefaultSpawnConfig() SpawnConfig {
	return SpawnConfig{
		MaxInfectionTicks: 14,
		MaxOutsideTicks:   20,
		GoingOutMean:      0.1,
		GoingOutStdDev:    0.05,
	}
}

// Spawner creates agents with monotonically increasing ids.
type Spawner struct {
	rng    *entropy.Source
	cfg    SpawnConfig
	nextID AgentID
}

// NewSpawner creates an agent spawner with the given seed.
func NewSpawner(seed int64, cfg SpawnConfig) *Spawner {
	return &Spawner{
		rng:    entropy.New(seed + 300),
		cfg:    cfg,
		nextID: 1,
	}
}

// SetNextID sets the next agent id to be issued.
func (s *Spawner) SetNextID(id AgentID) {
	s.nextID = id
}

// NextID returns the id the next spawned agent will get.
func (s *Spawner) NextID() AgentID {
	return s.nextID
}

// PickHomes draws n distinct cells from homes without replacement.
// n is capped at len(homes).
func (s *Spawner) PickHomes(homes []world.Coord, n int) []world.Coord {
	pool := append([]world.Coord(nil), homes...)
	s.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if n > len(pool) {
		n = len(pool)
	}
	return pool[:n]
}

// Spawn creates an agent living at home. The agent is not yet indexed;
// its Position is set to home for the caller to place.
func (s *Spawner) Spawn(home world.Coord, homeID world.HomeID, state DiseaseState) *Agent {
	id := s.nextID
	s.nextID++

	return &Agent{
		ID:                  id,
		Disease:             state,
		MaxInfectionTicks:   s.cfg.MaxInfectionTicks,
		Home:                home,
		HomeID:              homeID,
		Outing:              AtHome,
		MaxOutsideTicks:     s.cfg.MaxOutsideTicks,
		GoingOutProbability: s.rng.ClippedNormal(s.cfg.GoingOutMean, s.cfg.GoingOutStdDev, 0, 1),
		Position:            home,
	}
}
