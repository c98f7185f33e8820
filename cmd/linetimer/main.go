// Linetimer - stopwatch for the line follower competition
//
// Resets the simulated track, starts physics and times the robot until it
// rests on the target line. Configured through the environment:
//
//	SIM_URL            simulator endpoint (ws:// rosbridge or http:// gateway)
//	LOG_LEVEL          debug, info, warn, error
//	SKIP_FAILED_POLLS  keep timing through failed polls instead of stopping
//	WALL_CLOCK         measure on wall time instead of the simulator clock
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/teslashibe/go-linetimer/internal/config"
	"github.com/teslashibe/go-linetimer/internal/log"
	"github.com/teslashibe/go-linetimer/pkg/sim"
	"github.com/teslashibe/go-linetimer/pkg/timing"
)

func main() {
	os.Exit(run())
}

func run() int {
	envErr := config.LoadDotEnv()
	log.Init(config.LogLevel())
	if envErr != nil {
		log.Warn("failed to load .env", "error", envErr)
	}

	// Ctrl+C ends the run silently
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	url := config.SimURL()
	svc, err := sim.Dial(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return 0
		}
		log.Error("failed to connect to simulator", "url", url, "error", err)
		return 1
	}
	defer svc.Close()
	log.Debug("connected to simulator", "url", url)

	cfg := timing.DefaultConfig()
	if config.SkipFailedPolls() {
		cfg.Policy = timing.SkipTick
	}

	ctrl, err := timing.New(svc, cfg, controllerOptions()...)
	if err != nil {
		log.Error("invalid configuration", "error", err)
		return 1
	}

	if err := ctrl.Initialize(ctx); err != nil {
		return exitCode(ctx, err)
	}
	if err := ctrl.ResetAndStart(ctx); err != nil {
		return exitCode(ctx, err)
	}
	if _, err := ctrl.Run(ctx); err != nil {
		return exitCode(ctx, err)
	}
	return 0
}

// controllerOptions picks the time base. Runs are timed on the simulator
// clock unless WALL_CLOCK is set.
func controllerOptions() []timing.Option {
	if config.Bool("WALL_CLOCK", false) {
		return []timing.Option{timing.WithClock(timing.WallClock{})}
	}
	return nil
}

// exitCode maps a run error to the process exit status. Interrupts are
// silent and exit 0.
func exitCode(ctx context.Context, err error) int {
	if ctx.Err() != nil || errors.Is(err, timing.ErrInterrupted) {
		return 0
	}
	log.Error("timing aborted", "error", err)
	return 1
}
