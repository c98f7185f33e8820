// Fakesim - stand-in track simulator for rehearsing the line timer
//
// Serves rosbridge on ws://localhost:$SIM_PORT/ws and the JSON gateway on
// http://localhost:$SIM_PORT/api. The robot drives along the track whenever
// physics is unpaused.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teslashibe/go-linetimer/internal/config"
	"github.com/teslashibe/go-linetimer/internal/log"
	"github.com/teslashibe/go-linetimer/pkg/simserver"
)

func main() {
	envErr := config.LoadDotEnv()
	log.Init(config.LogLevel())
	if envErr != nil {
		log.Warn("failed to load .env", "error", envErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := simserver.DefaultWorldConfig()
	cfg.Params["/meia_largura"] = config.Float("HALF_WIDTH", cfg.Params["/meia_largura"])

	world := simserver.NewWorld(cfg)
	srv := simserver.New(world, log.L())

	go world.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(":" + config.SimPort())
	}()

	select {
	case err := <-errCh:
		log.Error("fake simulator stopped", "error", err)
		os.Exit(1)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown error", "error", err)
	}
}
