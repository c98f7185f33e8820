// Package sim provides clients for the physics simulator that hosts the
// line-follower track.
//
// Consumers should depend only on the small interfaces they actually use.
// Service composes them.
package sim

import (
	"context"
	"io"
	"time"
)

// Vector2 is a planar vector in meters or meters per second.
type Vector2 struct {
	X, Y float64
}

// ModelState is a pose and velocity snapshot of one simulated model.
type ModelState struct {
	Model    string
	Position Vector2
	Linear   Vector2
}

// StateQuerier reads model state. Maps to gazebo/get_model_state.
type StateQuerier interface {
	ModelState(ctx context.Context, model string) (*ModelState, error)
}

// WorldController controls simulated time.
type WorldController interface {
	ResetWorld(ctx context.Context) error
	PausePhysics(ctx context.Context) error
	UnpausePhysics(ctx context.Context) error
}

// ParamReader reads numeric values from the parameter server.
type ParamReader interface {
	Param(ctx context.Context, name string) (float64, error)
}

// ServiceWaiter blocks until a named service is advertised.
type ServiceWaiter interface {
	WaitForService(ctx context.Context, name string) error
}

// TimeSource reports the simulator clock.
type TimeSource interface {
	SimTime(ctx context.Context) (time.Duration, error)
}

// Service is the composite interface for a simulator connection.
type Service interface {
	StateQuerier
	WorldController
	ParamReader
	ServiceWaiter
	TimeSource
	io.Closer
}

var (
	_ Service = (*RosbridgeClient)(nil)
	_ Service = (*HTTPClient)(nil)
	_ Service = (*Mock)(nil)
)
