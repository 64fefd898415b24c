package engine

import (
	"github.com/talgya/contagion/internal/agents"
	"github.com/talgya/contagion/internal/metrics"
	"github.com/talgya/contagion/internal/world"
)

// AgentView is the per-agent state exposed to rendering and reporting layers.
type AgentView struct {
	ID       agents.AgentID      `json:"id"`
	Position world.Coord         `json:"position"`
	Disease  agents.DiseaseState `json:"disease"`
	Outing   agents.OutingState  `json:"outing"`
}

// Snapshot is the observable state at the end of a tick.
type Snapshot struct {
	Tick   uint64         `json:"tick"`
	Agents []AgentView    `json:"agents"`
	Counts metrics.Sample `json:"counts"`
}

// Snapshot captures every agent in creation order plus the aggregate counts.
func (s *Simulation) Snapshot() Snapshot {
	views := make([]AgentView, len(s.Agents))
	for i, a := range s.Agents {
		views[i] = AgentView{
			ID:       a.ID,
			Position: a.Position,
			Disease:  a.Disease,
			Outing:   a.Outing,
		}
	}
	return Snapshot{
		Tick:   s.LastTick,
		Agents: views,
		Counts: s.sample(),
	}
}
