package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/contagion/internal/world"
)

// Two households side by side inside a ring of common space.
var twoHomes = [][]int{
	{1, 1, 1, 1, 1, 1},
	{1, 2, 2, 3, 3, 1},
	{1, 2, 2, 3, 3, 1},
	{1, 1, 1, 1, 1, 1},
}

func TestIndoorMovementStaysInHousehold(t *testing.T) {
	env := newTestEnv(t, twoHomes, world.Options{TargetCount: 4}, 5, []float64{0.5})
	a := addAgent(t, env, world.Coord{Row: 1, Col: 1})

	for i := 0; i < 50; i++ {
		a.Step(env)
		cell := env.Map.MustCellAt(a.Position)
		require.Equal(t, world.HomeID(2), cell.HomeID, "step %d left the household", i)
		require.Equal(t, AtHome, a.Outing)
	}
}

func TestAgentWithoutHouseholdHasNoIndoorMoves(t *testing.T) {
	env := newTestEnv(t, uniform(4, 4, world.CodeCommon), world.Options{}, 0, []float64{0.5})
	start := world.Coord{Row: 1, Col: 1}
	a := addAgent(t, env, start)
	require.Equal(t, world.NoHome, a.HomeID)

	for i := 0; i < 20; i++ {
		a.Step(env)
		require.Equal(t, start, a.Position, "step %d", i)
		require.Equal(t, AtHome, a.Outing)
	}
}

func TestAgentStaysWhenBoxedIn(t *testing.T) {
	env := newTestEnv(t, uniform(3, 3, world.CodeCommon), world.Options{}, 0, []float64{0.5})
	center := world.Coord{Row: 1, Col: 1}
	a := addAgent(t, env, center)
	for _, n := range center.Neighbors() {
		addAgent(t, env, n)
	}

	a.Step(env)
	assert.Equal(t, center, a.Position)
}

func TestZeroCapacityGateKeepsEveryoneHome(t *testing.T) {
	env := newTestEnv(t, twoHomes, world.Options{TargetCount: 4}, 0, []float64{0.5})
	var population []*Agent
	for _, home := range []world.Coord{{Row: 1, Col: 1}, {Row: 2, Col: 2}, {Row: 1, Col: 3}} {
		a := addAgent(t, env, home)
		a.GoingOutProbability = 1
		population = append(population, a)
	}

	for tick := 0; tick < 30; tick++ {
		for _, a := range population {
			a.Step(env)
			require.Equal(t, AtHome, a.Outing)
		}
	}
	assert.Equal(t, 0, env.Gate.Outside())
}

func TestGoingOutTakesGateSlot(t *testing.T) {
	env := newTestEnv(t, twoHomes, world.Options{TargetCount: 4}, 1, []float64{0.5})
	first := addAgent(t, env, world.Coord{Row: 1, Col: 1})
	first.GoingOutProbability = 1
	second := addAgent(t, env, world.Coord{Row: 1, Col: 3})
	second.GoingOutProbability = 1

	first.Step(env)
	require.Equal(t, Outside, first.Outing)
	require.NotNil(t, first.Target)
	assert.Contains(t, env.Map.TargetCells(), *first.Target)
	assert.Equal(t, world.CellCommon, env.Map.MustCellAt(first.Position).Type)
	assert.Equal(t, 1, env.Gate.Outside())

	second.Step(env)
	assert.Equal(t, AtHome, second.Outing, "gate is full")
	assert.Equal(t, world.HomeID(3), env.Map.MustCellAt(second.Position).HomeID)
}

func TestExcursionEndsAfterMaxOutsideTicks(t *testing.T) {
	env := newTestEnv(t, twoHomes, world.Options{TargetCount: 4}, 1, []float64{0.5})
	a := addAgent(t, env, world.Coord{Row: 2, Col: 2})
	a.GoingOutProbability = 1
	a.MaxOutsideTicks = 2

	a.Step(env)
	require.Equal(t, Outside, a.Outing)

	steps := 1
	for a.Outing == Outside && steps < 20 {
		a.Step(env)
		steps++
	}

	// One step out, three steps roaming (ticks 0..2 are not > 2), one step back.
	assert.Equal(t, 5, steps)
	assert.Equal(t, AtHome, a.Outing)
	assert.Equal(t, a.Home, a.Position)
	assert.Nil(t, a.Target)
	assert.Equal(t, 0, a.OutsideTicks)
	assert.Equal(t, 0, env.Gate.Outside())
}

func TestSingleHomeCellWithoutCommonSpace(t *testing.T) {
	env := newTestEnv(t, [][]int{{2}}, world.Options{TargetCount: 10}, 5, []float64{0.5})
	require.Empty(t, env.Map.TargetCells())
	a := addAgent(t, env, world.Coord{Row: 0, Col: 0})
	a.GoingOutProbability = 1

	for i := 0; i < 20; i++ {
		a.Step(env)
		require.Equal(t, AtHome, a.Outing)
		require.Equal(t, world.Coord{Row: 0, Col: 0}, a.Position)
	}
	assert.Equal(t, 0, env.Gate.Outside())
}

func TestMovementSeeksTarget(t *testing.T) {
	env := newTestEnv(t, uniform(3, 10, world.CodeCommon), world.Options{}, 1, []float64{0.5})
	a := addAgent(t, env, world.Coord{Row: 1, Col: 1})
	a.Outing = Outside
	a.MaxOutsideTicks = 100
	target := world.Coord{Row: 1, Col: 9}
	a.Target = &target

	a.Step(env)
	assert.Equal(t, world.Coord{Row: 1, Col: 2}, a.Position)
	assert.Equal(t, 1, a.OutsideTicks)
}

func TestMovementAvoidsCrowds(t *testing.T) {
	env := newTestEnv(t, uniform(3, 5, world.CodeCommon), world.Options{}, 1, []float64{0.5})
	a := addAgent(t, env, world.Coord{Row: 1, Col: 1})
	a.Outing = Outside
	a.MaxOutsideTicks = 100
	for row := 0; row < 3; row++ {
		addAgent(t, env, world.Coord{Row: row, Col: 0})
	}

	a.Step(env)
	assert.Equal(t, 2, a.Position.Col, "moves away from the crowded column")
}

func TestDiseaseProgression(t *testing.T) {
	env := newTestEnv(t, [][]int{{2}}, world.Options{}, 0, []float64{1})
	a := addAgent(t, env, world.Coord{Row: 0, Col: 0})
	a.Disease = Infected
	a.MaxInfectionTicks = 2

	a.Step(env)
	assert.Equal(t, Infected, a.Disease)
	assert.Equal(t, 1, a.InfectedTicks)
	a.Step(env)
	assert.Equal(t, Infected, a.Disease)
	assert.Equal(t, 2, a.InfectedTicks)
	a.Step(env)
	assert.Equal(t, Recovered, a.Disease)
	a.Step(env)
	assert.Equal(t, Recovered, a.Disease, "recovered is terminal")
}

func TestHouseholdTransmission(t *testing.T) {
	env := newTestEnv(t, [][]int{{2, 2}}, world.Options{}, 0, []float64{1})
	sick := addAgent(t, env, world.Coord{Row: 0, Col: 0})
	sick.Disease = Infected
	mate := addAgent(t, env, world.Coord{Row: 0, Col: 1})

	sick.Step(env)
	assert.Equal(t, Infected, mate.Disease)
	assert.Equal(t, 0, mate.InfectedTicks)
}

func TestNoTransmissionThroughHomeWall(t *testing.T) {
	env := newTestEnv(t, [][]int{{2, 3}}, world.Options{}, 0, []float64{1})
	sick := addAgent(t, env, world.Coord{Row: 0, Col: 0})
	sick.Disease = Infected
	neighbor := addAgent(t, env, world.Coord{Row: 0, Col: 1})

	for i := 0; i < 10; i++ {
		sick.Step(env)
		neighbor.Step(env)
	}
	assert.Equal(t, Healthy, neighbor.Disease)
}
