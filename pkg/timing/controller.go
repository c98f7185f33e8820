// Package timing runs the line-follower stopwatch: reset the simulation,
// start it, poll the robot at a fixed rate and stop the clock once it rests
// on the target line.
package timing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/teslashibe/go-linetimer/internal/log"
	"github.com/teslashibe/go-linetimer/pkg/protocol"
	"github.com/teslashibe/go-linetimer/pkg/sim"
)

// Simulator is what the controller needs from the simulation service.
type Simulator interface {
	sim.StateQuerier
	sim.WorldController
	sim.ParamReader
	sim.ServiceWaiter
	sim.TimeSource
}

// RequiredServices must be advertised before a run can start.
var RequiredServices = []string{
	protocol.ServiceGetModelState,
	protocol.ServiceUnpausePhysics,
	protocol.ServiceResetWorld,
}

// Reading is one poll of the tracked robot.
type Reading struct {
	Time      time.Time
	Elapsed   time.Duration // Since the run started
	Position  sim.Vector2
	Linear    sim.Vector2
	HalfWidth float64
	Distance  float64 // To the target line, corrected by half width
	Speed     float64 // Planar linear speed
}

// Result is a finished run.
type Result struct {
	Start    time.Time
	End      time.Time
	Elapsed  time.Duration
	Distance float64
	Speed    float64
	Ticks    int // Polls attempted
	Skipped  int // Polls dropped under SkipTick
}

// Controller owns one timed run. It is not safe for concurrent use.
type Controller struct {
	cfg      Config
	sim      Simulator
	clock    Clock
	logger   *slog.Logger
	throttle *log.Throttle

	start   time.Time
	started bool
}

// Option customizes a Controller.
type Option func(*Controller)

// WithClock sets the time base. The default is the simulator clock, so a
// paused or slowed simulation does not inflate the run time.
func WithClock(c Clock) Option {
	return func(ctrl *Controller) {
		ctrl.clock = c
	}
}

// WithLogger sets the logger. The default is the global logger.
func WithLogger(l *slog.Logger) Option {
	return func(ctrl *Controller) {
		ctrl.logger = l
	}
}

// New creates a controller for one run against s.
func New(s Simulator, cfg Config, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("timing: invalid config: %w", err)
	}

	c := &Controller{
		cfg:      cfg,
		sim:      s,
		clock:    SimClock{Source: s},
		logger:   log.L(),
		throttle: log.NewThrottle(cfg.LogEvery),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Initialize blocks until every required service is advertised.
// It has no timeout of its own; bound it with ctx.
func (c *Controller) Initialize(ctx context.Context) error {
	for _, name := range RequiredServices {
		c.logger.Debug("waiting for service", "service", name)
		if err := c.sim.WaitForService(ctx, name); err != nil {
			return fmt.Errorf("timing: %w", err)
		}
	}
	return nil
}

// ResetAndStart pauses physics, resets the world, resumes physics, waits
// SettleDelay and then starts the clock. Pausing first keeps the reset
// transient out of the measurement.
func (c *Controller) ResetAndStart(ctx context.Context) error {
	c.started = false

	if err := c.sim.WaitForService(ctx, protocol.ServicePausePhysics); err != nil {
		return fmt.Errorf("timing: %w", err)
	}

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"pause physics", c.sim.PausePhysics},
		{"reset world", c.sim.ResetWorld},
		{"unpause physics", c.sim.UnpausePhysics},
	}
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			return fmt.Errorf("timing: %s: %w", step.name, err)
		}
	}

	if err := sleep(ctx, c.cfg.SettleDelay); err != nil {
		return ErrInterrupted
	}

	start, err := c.clock.Now(ctx)
	if err != nil {
		return fmt.Errorf("timing: read start time: %w", err)
	}

	c.start = start
	c.started = true
	c.throttle.Reset()
	c.logger.Info("timing started", "model", c.cfg.Model)
	return nil
}

// PollOnce reads the robot state and the half width, and computes the
// distance to the target and the speed. The half width is read on every
// poll so it can be tuned while a run is in progress.
func (c *Controller) PollOnce(ctx context.Context) (Reading, error) {
	state, err := c.sim.ModelState(ctx, c.cfg.Model)
	if err != nil {
		return Reading{}, err
	}

	halfWidth, err := c.sim.Param(ctx, c.cfg.HalfWidthParam)
	if err != nil {
		return Reading{}, err
	}

	now, err := c.clock.Now(ctx)
	if err != nil {
		return Reading{}, fmt.Errorf("timing: read clock: %w", err)
	}

	r := Reading{
		Time:      now,
		Elapsed:   now.Sub(c.start),
		Position:  state.Position,
		Linear:    state.Linear,
		HalfWidth: halfWidth,
		Distance:  Distance(c.cfg.Target, state.Position, halfWidth),
		Speed:     Speed(state.Linear),
	}

	if c.throttle.Allow(now) {
		c.logger.Info("run in progress",
			"elapsed", seconds(r.Elapsed),
			"distance", fmt.Sprintf("%.3f", r.Distance),
			"speed", fmt.Sprintf("%.3f", r.Speed))
	}

	return r, nil
}

// CheckStop reports whether the robot is at rest near the target.
// Both comparisons are strict and there is no debounce: one qualifying
// sample ends the run.
func (c *Controller) CheckStop(distance, speed float64) bool {
	return distance < c.cfg.DistThreshold && speed < c.cfg.VelThreshold
}

// Run polls at the configured rate until the stop condition holds, a poll
// failure ends the run under the failure policy, or ctx ends.
func (c *Controller) Run(ctx context.Context) (*Result, error) {
	if !c.started {
		return nil, ErrNotStarted
	}

	ticker := time.NewTicker(c.cfg.Rate)
	defer ticker.Stop()

	var ticks, skipped, consecutive int
	for {
		if ctx.Err() != nil {
			return nil, ErrInterrupted
		}

		ticks++
		reading, err := c.PollOnce(ctx)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, ErrInterrupted

		case err != nil:
			// The caller logs errors that end the run.
			if c.cfg.Policy == FailFast {
				return nil, fmt.Errorf("timing: poll failed: %w", err)
			}
			skipped++
			consecutive++
			if c.cfg.MaxConsecutiveFailures > 0 && consecutive >= c.cfg.MaxConsecutiveFailures {
				return nil, fmt.Errorf("%w (%d): %w", ErrTooManyFailures, consecutive, err)
			}
			c.logger.Error("poll failed, skipping tick", "tick", ticks, "error", err)

		case c.CheckStop(reading.Distance, reading.Speed):
			res := &Result{
				Start:    c.start,
				End:      reading.Time,
				Elapsed:  reading.Time.Sub(c.start),
				Distance: reading.Distance,
				Speed:    reading.Speed,
				Ticks:    ticks,
				Skipped:  skipped,
			}
			c.started = false
			c.logger.Info("timing finished")
			c.logger.Info("final distance", "distance", fmt.Sprintf("%.3f", res.Distance))
			c.logger.Info("elapsed time", "elapsed", seconds(res.Elapsed))
			return res, nil

		default:
			consecutive = 0
		}

		select {
		case <-ctx.Done():
			return nil, ErrInterrupted
		case <-ticker.C:
		}
	}
}

// Distance is the gap between the robot's front edge and the target line.
// The half width is subtracted along x only.
func Distance(target, pos sim.Vector2, halfWidth float64) float64 {
	return math.Hypot(target.X-pos.X-halfWidth, target.Y-pos.Y)
}

// Speed is the planar magnitude of v.
func Speed(v sim.Vector2) float64 {
	return math.Hypot(v.X, v.Y)
}

// sleep waits d or until ctx ends.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}

// IsInterrupted reports whether err means the run was cancelled.
func IsInterrupted(err error) bool {
	return errors.Is(err, ErrInterrupted) || errors.Is(err, context.Canceled)
}
