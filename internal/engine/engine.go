// Package engine provides the wall-clock loop that advances a live run.
// The core recurrence itself lives in dynamics; the engine only decides
// when the next step happens and at what speed.
package engine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/talgya/power-sandbox/internal/dynamics"
)

// StepsPerReport controls how often the running engine logs progress.
const StepsPerReport = 60

// Engine drives a live Stepper forward in wall-clock time.
type Engine struct {
	Interval time.Duration // Base step interval (default 1 second).

	// OnStep, when non-nil, is called with the state after every step.
	OnStep func(snap dynamics.Snapshot)

	mu      sync.Mutex
	stepper *dynamics.Stepper
	speed   float64 // Multiplier: 1.0 = one step per interval, 0 = paused.
	running bool
}

// New creates an engine around an existing stepper with default settings.
func New(st *dynamics.Stepper) *Engine {
	return &Engine{
		Interval: time.Second,
		stepper:  st,
		speed:    1.0,
	}
}

// Run starts the step loop. Blocks until Stop is called.
func (e *Engine) Run() {
	e.mu.Lock()
	e.running = true
	e.mu.Unlock()
	slog.Info("live engine started", "tick", e.Snapshot().Timestep, "speed", e.Speed())

	for e.Running() {
		if e.Speed() <= 0 {
			// Paused. Sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()
		e.step()

		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / e.Speed())
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("live engine stopped", "tick", e.Snapshot().Timestep)
}

// Stop halts the step loop.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
}

// Running reports whether the loop is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Speed returns the current speed multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// SetSpeed changes the speed multiplier. 0 pauses the loop.
func (e *Engine) SetSpeed(speed float64) {
	e.mu.Lock()
	e.speed = speed
	e.mu.Unlock()
	slog.Info("speed changed", "speed", speed)
}

// Snapshot returns the live run's current state.
func (e *Engine) Snapshot() dynamics.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stepper.Snapshot()
}

// Reset replaces the live run with a fresh one seeded from p.
func (e *Engine) Reset(p dynamics.Params) error {
	st, err := dynamics.NewStepper(p)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.stepper = st
	e.mu.Unlock()
	slog.Info("live run reset",
		"timesteps", p.Timesteps,
		"step_size", p.StepSize,
		"regulation", p.RegulationStrength,
		"security", p.SecurityPressure,
		"innovation", p.InnovationDividend,
		"pet_efficiency", p.PetEfficiency,
	)
	return nil
}

// step advances the live run by one timestep.
func (e *Engine) step() {
	e.mu.Lock()
	e.stepper.Step()
	snap := e.stepper.Snapshot()
	e.mu.Unlock()

	if e.OnStep != nil {
		e.OnStep(snap)
	}

	if snap.Timestep%StepsPerReport == 0 {
		slog.Info("live run progress",
			"tick", snap.Timestep,
			"individual", snap.Individual,
			"corporate", snap.Corporate,
			"state", snap.State,
			"pet", snap.Pet,
		)
	}
}
