package timing

import (
	"fmt"
	"time"

	"github.com/teslashibe/go-linetimer/pkg/sim"
)

// FailurePolicy decides what Run does when a poll fails.
type FailurePolicy int

const (
	// FailFast stops the run on the first failed poll.
	FailFast FailurePolicy = iota

	// SkipTick logs the failure, drops the tick and keeps polling.
	SkipTick
)

// String returns the policy name.
func (p FailurePolicy) String() string {
	switch p {
	case FailFast:
		return "fail-fast"
	case SkipTick:
		return "skip-tick"
	default:
		return fmt.Sprintf("FailurePolicy(%d)", int(p))
	}
}

// Config holds the competition rules and loop timing.
type Config struct {
	// Track
	Model          string      // Tracked model name
	Target         sim.Vector2 // Target line position (meters)
	HalfWidthParam string      // Parameter holding the robot's half width

	// Stop condition (strict less-than on both)
	DistThreshold float64 // Meters
	VelThreshold  float64 // Meters per second

	// Timing
	Rate        time.Duration // Poll period
	SettleDelay time.Duration // Pause after unpausing, before the clock starts
	LogEvery    time.Duration // Progress log throttle

	// Failures
	Policy                 FailurePolicy
	MaxConsecutiveFailures int // SkipTick only; 0 means unlimited
}

// DefaultConfig returns the competition settings.
func DefaultConfig() Config {
	return Config{
		Model:          "meu_primeiro_robo",
		Target:         sim.Vector2{X: 0.90, Y: 1.075},
		HalfWidthParam: "/meia_largura",

		DistThreshold: 0.5,
		VelThreshold:  5e-3,

		Rate:        10 * time.Millisecond, // 100Hz
		SettleDelay: 100 * time.Millisecond,
		LogEvery:    5 * time.Second,

		Policy: FailFast,
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.HalfWidthParam == "" {
		return fmt.Errorf("half width parameter is required")
	}
	if c.DistThreshold <= 0 {
		return fmt.Errorf("distance threshold must be positive, got %v", c.DistThreshold)
	}
	if c.VelThreshold <= 0 {
		return fmt.Errorf("velocity threshold must be positive, got %v", c.VelThreshold)
	}
	if c.Rate <= 0 {
		return fmt.Errorf("rate must be positive, got %v", c.Rate)
	}
	if c.SettleDelay < 0 {
		return fmt.Errorf("settle delay must not be negative, got %v", c.SettleDelay)
	}
	if c.LogEvery < 0 {
		return fmt.Errorf("log interval must not be negative, got %v", c.LogEvery)
	}
	if c.Policy != FailFast && c.Policy != SkipTick {
		return fmt.Errorf("unknown failure policy %v", c.Policy)
	}
	if c.MaxConsecutiveFailures < 0 {
		return fmt.Errorf("max consecutive failures must not be negative, got %d", c.MaxConsecutiveFailures)
	}
	return nil
}
