package persistence

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/contagion/internal/agents"
	"github.com/talgya/contagion/internal/engine"
	"github.com/talgya/contagion/internal/metrics"
	"github.com/talgya/contagion/internal/world"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunLifecycle(t *testing.T) {
	db := openTestDB(t)

	run, err := db.CreateRun(42, 100, "seed: 42\n")
	require.NoError(t, err)
	assert.Len(t, run.ID, 36)
	assert.EqualValues(t, Unfinished, run.FinishedTick)

	got, err := db.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, run, got)

	require.NoError(t, db.FinishRun(run.ID, 250))
	got, err = db.GetRun(run.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 250, got.FinishedTick)

	assert.Error(t, db.FinishRun("missing", 1))
}

func TestSamplesRoundTrip(t *testing.T) {
	db := openTestDB(t)
	run, err := db.CreateRun(1, 3, "")
	require.NoError(t, err)

	samples := []metrics.Sample{
		{Tick: 0, Infected: 1, Healthy: 2},
		{Tick: 1, Infected: 2, Healthy: 1, Outside: 1},
		{Tick: 2, Infected: 1, Healthy: 1, Recovered: 1},
	}
	require.NoError(t, db.SaveSamples(run.ID, samples))
	require.NoError(t, db.SaveSamples(run.ID, samples[2:]))

	loaded, err := db.LoadSamples(run.ID)
	require.NoError(t, err)
	assert.Equal(t, samples, loaded)

	other, err := db.LoadSamples("other")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestRecentRunsNewestFirst(t *testing.T) {
	db := openTestDB(t)
	var ids []string
	for i := 0; i < 3; i++ {
		run, err := db.CreateRun(int64(i), 10, "")
		require.NoError(t, err)
		ids = append(ids, run.ID)
	}

	runs, err := db.RecentRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[1], runs[1].ID)
}

func TestSaveRun(t *testing.T) {
	db := openTestDB(t)

	layout := world.Generate(world.SmallTestConfig())
	m, err := world.NewMap(layout, world.Options{TargetCount: 5, Seed: 3})
	require.NoError(t, err)
	pop, err := engine.BuildPopulation(m, agents.NewSpawner(3, agents.DefaultSpawnConfig()),
		engine.PopulationRequest{Size: 8, InitiallyInfected: 0.25})
	require.NoError(t, err)
	sim, err := engine.NewSimulation(m, pop, engine.Params{
		Seed:                   3,
		GateCapacity:           2,
		InfectionProbabilities: []float64{0.3, 0.1},
	})
	require.NoError(t, err)
	sim.Run(10)

	run, err := db.CreateRun(3, len(pop), "")
	require.NoError(t, err)
	require.NoError(t, db.SaveRun(run.ID, sim))

	samples, err := db.LoadSamples(run.ID)
	require.NoError(t, err)
	assert.Equal(t, sim.Collector.Samples(), samples)

	rows, err := db.LoadAgents(run.ID)
	require.NoError(t, err)
	require.Len(t, rows, len(pop))
	for i, row := range rows {
		a := sim.Agents[i]
		assert.Equal(t, uint64(a.ID), row.ID)
		assert.Equal(t, a.Position, world.Coord{Row: row.Row, Col: row.Col})
		assert.Equal(t, a.Disease.String(), row.Disease)
		assert.Equal(t, uint64(10), row.SnapshotTick)
	}

	raw, err := db.GetMeta(run.ID, "stats")
	require.NoError(t, err)
	var stats engine.SimStats
	require.NoError(t, json.Unmarshal([]byte(raw), &stats))
	assert.Equal(t, sim.Stats, stats)

	got, err := db.GetRun(run.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 10, got.FinishedTick)
}
