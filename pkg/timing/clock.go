package timing

import (
	"context"
	"time"

	"github.com/teslashibe/go-linetimer/pkg/sim"
)

// Clock is the time base a run is measured on.
type Clock interface {
	Now(ctx context.Context) (time.Time, error)
}

// WallClock reads the local monotonic clock.
type WallClock struct{}

// Now returns time.Now.
func (WallClock) Now(ctx context.Context) (time.Time, error) {
	return time.Now(), nil
}

// SimClock reads the simulator clock, so paused physics does not count.
type SimClock struct {
	Source sim.TimeSource
}

// simEpoch anchors simulator durations so they can be used as time.Time.
var simEpoch = time.Unix(0, 0).UTC()

// Now returns the simulator time as an offset from the Unix epoch.
func (c SimClock) Now(ctx context.Context) (time.Time, error) {
	d, err := c.Source.SimTime(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return simEpoch.Add(d), nil
}
