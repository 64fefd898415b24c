package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEngineRunsToMaxTicks(t *testing.T) {
	e := NewEngine()
	e.MaxTicks = 10
	e.ReportEvery = 3

	var ticks, reports []uint64
	e.OnTick = func(tick uint64) { ticks = append(ticks, tick) }
	e.OnReport = func(tick uint64) { reports = append(reports, tick) }
	e.Run()

	assert.Len(t, ticks, 10)
	assert.Equal(t, []uint64{3, 6, 9}, reports)
	assert.Equal(t, uint64(10), e.Tick)
	assert.False(t, e.Running())
}

func TestEngineStopsBetweenTicks(t *testing.T) {
	e := NewEngine()
	e.OnTick = func(tick uint64) {
		if tick == 4 {
			e.Stop()
		}
	}
	e.Run()
	assert.Equal(t, uint64(4), e.Tick)
}

func TestEnginePacesTicks(t *testing.T) {
	e := NewEngine()
	e.MaxTicks = 3
	e.Interval = 10 * time.Millisecond

	start := time.Now()
	e.Run()
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestEngineDrivesSimulation(t *testing.T) {
	sim := newScenarioSim(t, defaultScenario(2))
	e := NewEngine()
	e.MaxTicks = 12
	e.OnTick = func(uint64) { sim.Step() }
	e.Run()

	assert.Equal(t, e.Tick, sim.CurrentTick())
	assert.Equal(t, 13, sim.Collector.Len())
}
