// Package engine drives the war simulation: a tick-based loop advancing every
// active war, siege, battle, army, and supply line once per tick.
package engine

import (
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"
)

// One tick is one campaign day. Weekly and seasonal layers run on top.
const (
	TicksPerWeek   = 7
	TicksPerSeason = 90
	SeasonsPerYear = 4
)

// Engine drives the simulation forward. Speed and the running flag are
// written by the admin API while the loop goroutine reads them, so both
// live behind atomics.
type Engine struct {
	Tick     uint64        // Current tick counter (monotonic, never resets)
	Interval time.Duration // Base tick interval (default 1 second)

	speed   atomic.Uint64 // Float64 bits; 1.0 = real-time, 0 = paused
	running atomic.Bool

	// Callbacks for each tick layer — populated during setup.
	OnTick   func(tick uint64) // Every tick (campaign day)
	OnWeek   func(tick uint64) // Every 7 ticks
	OnSeason func(tick uint64) // Every 90 ticks
}

// NewEngine creates a simulation engine with default settings.
func NewEngine() *Engine {
	e := &Engine{Interval: time.Second}
	e.SetSpeed(1.0)
	return e
}

// Speed returns the current tick-rate multiplier.
func (e *Engine) Speed() float64 {
	return math.Float64frombits(e.speed.Load())
}

// SetSpeed changes the tick-rate multiplier. Zero pauses the loop.
func (e *Engine) SetSpeed(s float64) {
	e.speed.Store(math.Float64bits(s))
}

// IsRunning reports whether the loop is live.
func (e *Engine) IsRunning() bool {
	return e.running.Load()
}

// Run starts the simulation loop. Blocks until Stop() is called.
func (e *Engine) Run() {
	e.running.Store(true)
	slog.Info("war engine started", "tick", e.Tick, "speed", e.Speed())

	for e.running.Load() {
		speed := e.Speed()
		if speed <= 0 {
			// Paused — sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		e.step()

		// Sleep for the remainder of the tick interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("war engine stopped", "tick", e.Tick)
}

// Stop halts the simulation loop.
func (e *Engine) Stop() {
	e.running.Store(false)
}

// step advances the simulation by one tick.
func (e *Engine) step() {
	e.Tick++

	// Every tick: conflict advancement — supplies, upkeep, sieges, battles.
	if e.OnTick != nil {
		e.OnTick(e.Tick)
	}

	// Every week: summaries, event trimming.
	if e.Tick%TicksPerWeek == 0 && e.OnWeek != nil {
		e.OnWeek(e.Tick)
	}

	// Every season: seasonal shift.
	if e.Tick%TicksPerSeason == 0 && e.OnSeason != nil {
		e.OnSeason(e.Tick)
	}
}

// SimTime returns a human-readable campaign date from a tick number.
func SimTime(tick uint64) string {
	days := tick%TicksPerSeason + 1
	seasons := tick / TicksPerSeason
	season := seasons % SeasonsPerYear
	years := seasons/SeasonsPerYear + 1

	return fmt.Sprintf("%s Day %d, Year %d", SeasonName(uint8(season)), days, years)
}

// SeasonName returns the name of a season index.
func SeasonName(season uint8) string {
	seasonNames := [4]string{"Spring", "Summer", "Autumn", "Winter"}
	return seasonNames[season%4]
}
