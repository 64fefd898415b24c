// Package agents provides the person model: disease and outing state machines,
// movement, the occupancy index and the excursion gate.
package agents

import (
	"github.com/talgya/contagion/internal/world"
)

// AgentID is a unique identifier for an agent.
type AgentID uint64

// DiseaseState progresses one way: Healthy → Infected → Recovered.
type DiseaseState uint8

const (
	Healthy   DiseaseState = iota
	Infected
	Recovered // Terminal
)

func (d DiseaseState) String() string {
	switch d {
	case Healthy:
		return "healthy"
	case Infected:
		return "infected"
	case Recovered:
		return "recovered"
	default:
		return "unknown"
	}
}

// OutingState tracks whether an agent is in its household or out in common space.
type OutingState uint8

const (
	AtHome  OutingState = iota
	Outside             // Holding an excursion gate slot
)

func (o OutingState) String() string {
	if o == Outside {
		return "outside"
	}
	return "at_home"
}

// Agent is one person in the simulation.
type Agent struct {
	ID AgentID `json:"id"`

	// Disease
	Disease           DiseaseState `json:"disease"`
	InfectedTicks     int          `json:"infected_ticks"`
	MaxInfectionTicks int          `json:"max_infection_ticks"`

	// Household, fixed at placement.
	Home   world.Coord  `json:"home"`
	HomeID world.HomeID `json:"home_id"`

	// Excursions
	Outing              OutingState  `json:"outing"`
	OutsideTicks        int          `json:"outside_ticks"`
	MaxOutsideTicks     int          `json:"max_outside_ticks"`
	GoingOutProbability float64      `json:"going_out_probability"`
	Target              *world.Coord `json:"target,omitempty"` // Set while outside

	// Position is written only by Occupancy.
	Position world.Coord `json:"position"`
}
