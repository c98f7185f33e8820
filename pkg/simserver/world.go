package simserver

import (
	"context"
	"math"
	"sync"
	"time"
)

// WorldConfig holds the kinematic model of the bench track.
type WorldConfig struct {
	Model string // Name of the single tracked model

	StartX, StartY float64 // Spawn pose (meters)
	StopX          float64 // Where the robot comes to rest along x

	CruiseSpeed float64 // Forward speed before braking (m/s)
	Decel       float64 // Braking deceleration (m/s²)

	Step time.Duration // Physics step

	Params map[string]float64 // Parameter server contents
}

// DefaultWorldConfig returns a track where the robot drives along y=1.075
// and parks with its front edge on the target line.
func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		Model:       "meu_primeiro_robo",
		StartX:      -0.5,
		StartY:      1.075,
		StopX:       0.85,
		CruiseSpeed: 0.3,
		Decel:       0.5,
		Step:        10 * time.Millisecond,
		Params: map[string]float64{
			"/meia_largura": 0.05,
		},
	}
}

// World is a point robot driving along x. Physics only advances while
// unpaused; the simulated clock advances with it.
type World struct {
	cfg WorldConfig

	mu      sync.RWMutex
	x, y    float64
	vx      float64
	paused  bool
	simTime time.Duration
	params  map[string]float64
}

// NewWorld creates a paused world at the spawn pose.
func NewWorld(cfg WorldConfig) *World {
	params := make(map[string]float64, len(cfg.Params))
	for k, v := range cfg.Params {
		params[k] = v
	}

	return &World{
		cfg:    cfg,
		x:      cfg.StartX,
		y:      cfg.StartY,
		paused: true,
		params: params,
	}
}

// Snapshot is a copy of the world state.
type Snapshot struct {
	Model   string        `json:"model"`
	X       float64       `json:"x"`
	Y       float64       `json:"y"`
	VX      float64       `json:"vx"`
	VY      float64       `json:"vy"`
	Paused  bool          `json:"paused"`
	SimTime time.Duration `json:"sim_time_ns"`
}

// Snapshot returns the current state.
func (w *World) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return Snapshot{
		Model:   w.cfg.Model,
		X:       w.x,
		Y:       w.y,
		VX:      w.vx,
		Paused:  w.paused,
		SimTime: w.simTime,
	}
}

// Model returns the tracked model's name.
func (w *World) Model() string {
	return w.cfg.Model
}

// SimTime returns the simulated clock.
func (w *World) SimTime() time.Duration {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.simTime
}

// Pause stops physics.
func (w *World) Pause() {
	w.mu.Lock()
	w.paused = true
	w.mu.Unlock()
}

// Unpause resumes physics.
func (w *World) Unpause() {
	w.mu.Lock()
	w.paused = false
	w.mu.Unlock()
}

// Reset puts the robot back at the spawn pose, at rest.
// Like gazebo/reset_world it leaves the clock and pause state alone.
func (w *World) Reset() {
	w.mu.Lock()
	w.x, w.y, w.vx = w.cfg.StartX, w.cfg.StartY, 0
	w.mu.Unlock()
}

// Param returns a parameter value.
func (w *World) Param(name string) (float64, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	v, ok := w.params[name]
	return v, ok
}

// SetParam sets a parameter value.
func (w *World) SetParam(name string, v float64) {
	w.mu.Lock()
	w.params[name] = v
	w.mu.Unlock()
}

// Advance runs one physics step of dt. It is a no-op while paused.
func (w *World) Advance(dt time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.paused {
		return
	}
	w.simTime += dt

	remaining := w.cfg.StopX - w.x
	if remaining <= 0 {
		w.vx = 0
		return
	}

	// Cruise until the braking envelope caps the speed.
	v := math.Min(w.cfg.CruiseSpeed, math.Sqrt(2*w.cfg.Decel*remaining))
	step := v * dt.Seconds()
	if step >= remaining {
		w.x = w.cfg.StopX
		w.vx = 0
		return
	}
	w.x += step
	w.vx = v
}

// Run steps physics in real time until ctx ends.
func (w *World) Run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.Step)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Advance(w.cfg.Step)
		}
	}
}
