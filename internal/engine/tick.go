// Package engine provides the simulation, its population setup and the
// tick-driving loop.
package engine

import (
	"log/slog"
	"sync/atomic"
	"time"
)

// DefaultReportEvery is how often the engine fires OnReport.
const DefaultReportEvery = 50

// Engine drives the simulation forward.
type Engine struct {
	Tick        uint64        // Current tick counter (monotonic)
	MaxTicks    uint64        // Stop after this tick; 0 = run until Stop
	Interval    time.Duration // Minimum wall time per tick; 0 = as fast as possible
	ReportEvery uint64        // OnReport cadence in ticks; 0 disables

	// Callbacks populated during setup.
	OnTick   func(tick uint64) // Every tick
	OnReport func(tick uint64) // Every ReportEvery ticks

	running atomic.Bool
	stopped atomic.Bool
}

// NewEngine creates an engine with default settings.
func NewEngine() *Engine {
	return &Engine{
		ReportEvery: DefaultReportEvery,
	}
}

// Run steps until MaxTicks is reached or Stop is called. Stop takes effect
// between ticks, never in the middle of one.
func (e *Engine) Run() {
	e.running.Store(true)
	defer e.running.Store(false)
	slog.Info("simulation engine started", "tick", e.Tick, "max_ticks", e.MaxTicks)

	for !e.stopped.Load() {
		if e.MaxTicks > 0 && e.Tick >= e.MaxTicks {
			break
		}

		start := time.Now()
		e.step()

		if e.Interval > 0 {
			if elapsed := time.Since(start); elapsed < e.Interval {
				time.Sleep(e.Interval - elapsed)
			}
		}
	}

	slog.Info("simulation engine stopped", "tick", e.Tick)
}

// Stop halts the loop after the current tick.
func (e *Engine) Stop() {
	e.stopped.Store(true)
}

// Running reports whether Run is in progress.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// step advances the engine by one tick.
func (e *Engine) step() {
	e.Tick++

	if e.OnTick != nil {
		e.OnTick(e.Tick)
	}

	if e.ReportEvery > 0 && e.Tick%e.ReportEvery == 0 && e.OnReport != nil {
		e.OnReport(e.Tick)
	}
}
