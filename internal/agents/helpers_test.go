package agents

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/contagion/internal/entropy"
	"github.com/talgya/contagion/internal/epidemic"
	"github.com/talgya/contagion/internal/world"
)

func newTestEnv(t *testing.T, layout [][]int, opts world.Options, capacity int, table []float64) *Env {
	t.Helper()
	m, err := world.NewMap(layout, opts)
	require.NoError(t, err)
	gate, err := NewExcursionGate(capacity)
	require.NoError(t, err)
	model, err := epidemic.NewModel(table)
	require.NoError(t, err)
	return &Env{
		Map:       m,
		Occupancy: NewOccupancy(m),
		Gate:      gate,
		Infection: model,
		Rand:      entropy.New(1),
	}
}

var nextTestID AgentID

func addAgent(t *testing.T, env *Env, home world.Coord) *Agent {
	t.Helper()
	nextTestID++
	cell, err := env.Map.CellAt(home)
	require.NoError(t, err)
	a := &Agent{
		ID:                nextTestID,
		Home:              home,
		HomeID:            cell.HomeID,
		MaxInfectionTicks: 14,
		MaxOutsideTicks:   5,
	}
	require.NoError(t, env.Occupancy.Place(a, home))
	return a
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
