// Per-tick agent behavior: location decision, movement, disease progression.
// An agent finishes all three phases before the next agent acts.
package agents

import (
	"math"

	"github.com/talgya/contagion/internal/entropy"
	"github.com/talgya/contagion/internal/epidemic"
	"github.com/talgya/contagion/internal/world"
)

// Env bundles the shared collaborators an agent reads and writes during its step.
type Env struct {
	Map       *world.Map
	Occupancy *Occupancy
	Gate      *ExcursionGate
	Infection *epidemic.Model
	Rand      *entropy.Source
}

// Step advances the agent by one tick.
func (a *Agent) Step(env *Env) {
	a.decideLocation(env)
	a.progressDisease(env)
}

func (a *Agent) decideLocation(env *Env) {
	switch a.Outing {
	case AtHome:
		if env.Rand.Bernoulli(a.GoingOutProbability) && a.goOut(env) {
			return
		}
		a.move(env)
	case Outside:
		if a.OutsideTicks > a.MaxOutsideTicks {
			a.returnHome(env)
			return
		}
		a.move(env)
		a.OutsideTicks++
	}
}

// goOut tries to leave the household. It returns false without side effects
// on the gate when there is nowhere to go or no free slot.
func (a *Agent) goOut(env *Env) bool {
	targets := env.Map.TargetCells()
	entrances := env.Map.Entrances()
	if len(targets) == 0 || len(entrances) == 0 {
		return false
	}
	if !env.Gate.Acquire() {
		return false
	}

	target := targets[env.Rand.Intn(len(targets))]
	entrance := entrances[env.Rand.Intn(len(entrances))]
	area := env.Map.EntranceArea(entrance)

	// Prefer an empty spot next to the entrance; crowd in if there is none.
	var free []world.Coord
	for _, c := range area {
		if env.Occupancy.Count(c) == 0 {
			free = append(free, c)
		}
	}
	if len(free) > 0 {
		area = free
	}
	env.Occupancy.MustMove(a, area[env.Rand.Intn(len(area))])

	a.Target = &target
	a.Outing = Outside
	a.OutsideTicks = 0
	return true
}

func (a *Agent) returnHome(env *Env) {
	env.Occupancy.MustMove(a, a.Home)
	env.Gate.Release()
	a.OutsideTicks = 0
	a.Outing = AtHome
	a.Target = nil
}

// move takes one step to the best-scoring free Moore neighbor, or stays put.
// Indoors the agent is confined to its own household footprint; an agent
// without a household has no indoor moves.
func (a *Agent) move(env *Env) {
	var best []world.Coord
	bestScore := math.Inf(-1)

	for _, n := range a.Position.Neighbors() {
		if !env.Map.Accessible(n) {
			continue
		}
		if a.Outing == AtHome {
			if c := env.Map.MustCellAt(n); !c.IsHome() || c.HomeID != a.HomeID {
				continue
			}
		}
		if env.Occupancy.IsTaken(n, nil) {
			continue
		}

		s := a.score(env, n)
		switch {
		case s > bestScore:
			bestScore = s
			best = append(best[:0], n)
		case s == bestScore:
			best = append(best, n)
		}
	}

	switch len(best) {
	case 0:
		return
	case 1:
		env.Occupancy.MustMove(a, best[0])
	default:
		env.Occupancy.MustMove(a, best[env.Rand.Intn(len(best))])
	}
}

// score rewards getting closer to the target and avoiding crowded spots.
func (a *Agent) score(env *Env, c world.Coord) float64 {
	s := 0.0
	if a.Target != nil {
		if d := world.Euclidean(c, *a.Target); d > 0 {
			s += 1 / d
		}
	}
	crowd := env.Occupancy.CountNeighbors(c, 1, a)
	return s + 1 - float64(crowd)/8
}

func (a *Agent) progressDisease(env *Env) {
	if a.Disease != Infected {
		return
	}
	if a.InfectedTicks >= a.MaxInfectionTicks {
		a.Disease = Recovered
		return
	}
	a.InfectedTicks++
	a.infectNeighbors(env)
}

func (a *Agent) infectNeighbors(env *Env) {
	source := a.Presence(env.Map)
	for _, other := range env.Occupancy.NeighborsWithin(a.Position, env.Infection.Radius(), true) {
		if other == a || other.Disease != Healthy {
			continue
		}
		dist := world.FlooredEuclidean(a.Position, other.Position)
		if env.Infection.Attempt(dist, source, other.Presence(env.Map), env.Rand) {
			other.Disease = Infected
			other.InfectedTicks = 0
		}
	}
}

// AtOwnHome reports whether the agent stands on a cell of its own household.
func (a *Agent) AtOwnHome(m *world.Map) bool {
	c := m.MustCellAt(a.Position)
	return c.IsHome() && c.HomeID == a.HomeID
}

// Presence summarizes the agent for transmission eligibility.
func (a *Agent) Presence(m *world.Map) epidemic.Presence {
	return epidemic.Presence{HomeID: a.HomeID, AtHome: a.AtOwnHome(m)}
}
