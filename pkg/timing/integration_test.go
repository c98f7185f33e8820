package timing

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-linetimer/internal/log"
	"github.com/teslashibe/go-linetimer/pkg/protocol"
	"github.com/teslashibe/go-linetimer/pkg/sim"
	"github.com/teslashibe/go-linetimer/pkg/simserver"
)

// fastWorld is a short track so a full run finishes in well under a second.
func fastWorld() simserver.WorldConfig {
	cfg := simserver.DefaultWorldConfig()
	cfg.StartX = 0.2
	cfg.CruiseSpeed = 2.0
	cfg.Decel = 8.0
	cfg.Step = time.Millisecond
	return cfg
}

func startSim(t *testing.T) (*simserver.Server, string) {
	t.Helper()

	world := simserver.NewWorld(fastWorld())
	srv := simserver.New(world, log.Discard())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go world.Run(ctx)
	go srv.Serve(ln)

	t.Cleanup(func() {
		cancel()
		sctx, scancel := context.WithTimeout(context.Background(), time.Second)
		defer scancel()
		srv.Shutdown(sctx)
	})

	return srv, ln.Addr().String()
}

func TestIntegration_FullRun(t *testing.T) {
	for _, scheme := range []string{"ws", "http"} {
		t.Run(scheme, func(t *testing.T) {
			srv, addr := startSim(t)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			url := scheme + "://" + addr
			if scheme == "ws" {
				url += "/ws"
			}
			svc, err := sim.Dial(ctx, url)
			require.NoError(t, err)
			defer svc.Close()

			cfg := DefaultConfig()
			cfg.SettleDelay = 10 * time.Millisecond
			ctrl, err := New(svc, cfg, WithLogger(log.Discard()), WithClock(SimClock{Source: svc}))
			require.NoError(t, err)

			require.NoError(t, ctrl.Initialize(ctx))
			require.NoError(t, ctrl.ResetAndStart(ctx))

			res, err := ctrl.Run(ctx)
			require.NoError(t, err)

			assert.Less(t, res.Distance, cfg.DistThreshold)
			assert.Less(t, res.Speed, cfg.VelThreshold)
			assert.Greater(t, res.Elapsed, time.Duration(0))
			assert.Equal(t, res.End.Sub(res.Start), res.Elapsed)

			snap := srv.World().Snapshot()
			assert.InDelta(t, 0.85, snap.X, 1e-9)
			assert.False(t, snap.Paused)
		})
	}
}

func TestIntegration_DisconnectFailsFast(t *testing.T) {
	srv, addr := startSim(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	svc, err := sim.Dial(ctx, "ws://"+addr+"/ws")
	require.NoError(t, err)
	defer svc.Close()

	ctrl, err := New(svc, DefaultConfig(), WithLogger(log.Discard()))
	require.NoError(t, err)
	require.NoError(t, ctrl.ResetAndStart(ctx))

	srv.FailNext(protocol.ServiceGetModelState, 1)

	res, err := ctrl.Run(ctx)
	assert.Nil(t, res)

	var ce *sim.CallError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, protocol.ServiceGetModelState, ce.Service)
}

func TestIntegration_InitializeWaitsForWorld(t *testing.T) {
	srv, addr := startSim(t)
	srv.Withhold(protocol.ServiceResetWorld)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	svc, err := sim.Dial(ctx, "http://"+addr)
	require.NoError(t, err)
	svc.(*sim.HTTPClient).PollInterval = 5 * time.Millisecond

	ctrl, err := New(svc, DefaultConfig(), WithLogger(log.Discard()))
	require.NoError(t, err)

	go func() {
		time.Sleep(50 * time.Millisecond)
		srv.Advertise(protocol.ServiceResetWorld)
	}()

	began := time.Now()
	require.NoError(t, ctrl.Initialize(ctx))
	assert.GreaterOrEqual(t, time.Since(began), 50*time.Millisecond)
}
