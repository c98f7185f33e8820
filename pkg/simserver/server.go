// Package simserver is an in-process stand-in for the track simulator.
//
// It serves the same surface the timer talks to: a rosbridge-compatible
// websocket on /ws and a JSON gateway under /api, both backed by a
// kinematic World. It exists for bench rehearsals and integration tests.
package simserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"slices"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/teslashibe/go-linetimer/internal/log"
	"github.com/teslashibe/go-linetimer/pkg/protocol"
)

// errNoService matches the text rosbridge returns for unknown services.
var errNoService = errors.New("service does not exist")

// Server is the fake simulator.
type Server struct {
	app    *fiber.App
	world  *World
	logger *slog.Logger

	mu       sync.Mutex
	withheld map[string]bool
	failures map[string]int // Remaining injected failures per service
}

// New creates a server over world.
func New(world *World, logger *slog.Logger) *Server {
	if logger == nil {
		logger = log.L()
	}

	s := &Server{
		world:    world,
		logger:   logger.With("component", "simserver"),
		withheld: make(map[string]bool),
		failures: make(map[string]int),
	}

	app := fiber.New(fiber.Config{
		AppName:               "linetimer fake simulator",
		DisableStartupMessage: true,
	})

	api := app.Group("/api")
	api.Get("/services", s.handleListServices)
	api.Post("/services/*", s.handleCallService)
	api.Get("/params/*", s.handleGetParam)
	api.Get("/time", s.handleTime)
	api.Get("/state", s.handleState)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(s.handleRosbridge))

	s.app = app
	return s
}

// App returns the underlying fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

// World returns the simulated world.
func (s *Server) World() *World {
	return s.world
}

// Listen serves on addr, e.g. ":9090". Blocks until Shutdown.
func (s *Server) Listen(addr string) error {
	s.logger.Info("fake simulator listening", "addr", addr)
	return s.app.Listen(addr)
}

// Serve serves on an existing listener. Blocks until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	return s.app.Listener(ln)
}

// Shutdown stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// Withhold hides a service so it is neither listed nor callable.
func (s *Server) Withhold(service string) {
	s.mu.Lock()
	s.withheld[service] = true
	s.mu.Unlock()
}

// Advertise makes a withheld service available again.
func (s *Server) Advertise(service string) {
	s.mu.Lock()
	delete(s.withheld, service)
	s.mu.Unlock()
}

// FailNext makes the next n calls to service fail.
func (s *Server) FailNext(service string, n int) {
	s.mu.Lock()
	s.failures[service] += n
	s.mu.Unlock()
}

// Services returns the advertised services.
func (s *Server) Services() []string {
	all := []string{
		protocol.ServiceGetModelState,
		protocol.ServiceResetWorld,
		protocol.ServicePausePhysics,
		protocol.ServiceUnpausePhysics,
		protocol.ServiceGetParam,
		protocol.ServiceServices,
		protocol.ServiceGetTime,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.DeleteFunc(all, func(name string) bool { return s.withheld[name] })
}

// Call dispatches one service call. Both transports go through here.
func (s *Server) Call(service string, args json.RawMessage) (interface{}, error) {
	s.mu.Lock()
	if s.withheld[service] {
		s.mu.Unlock()
		return nil, errNoService
	}
	if s.failures[service] > 0 {
		s.failures[service]--
		s.mu.Unlock()
		return nil, fmt.Errorf("injected failure for %s", service)
	}
	s.mu.Unlock()

	switch service {
	case protocol.ServiceGetModelState:
		var req protocol.GetModelStateArgs
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		return s.modelState(req.ModelName), nil

	case protocol.ServiceResetWorld:
		s.world.Reset()
		return struct{}{}, nil

	case protocol.ServicePausePhysics:
		s.world.Pause()
		return struct{}{}, nil

	case protocol.ServiceUnpausePhysics:
		s.world.Unpause()
		return struct{}{}, nil

	case protocol.ServiceGetParam:
		var req protocol.GetParamArgs
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		v, ok := s.world.Param(req.Name)
		if !ok {
			return protocol.GetParamValues{Value: req.Default}, nil
		}
		raw, _ := json.Marshal(v)
		return protocol.GetParamValues{Value: string(raw)}, nil

	case protocol.ServiceServices:
		return protocol.ServicesValues{Services: s.Services()}, nil

	case protocol.ServiceGetTime:
		return protocol.GetTimeValues{Time: protocol.NewTime(s.world.SimTime())}, nil

	default:
		return nil, errNoService
	}
}

func (s *Server) modelState(model string) protocol.GetModelStateValues {
	if model != s.world.Model() {
		return protocol.GetModelStateValues{
			Success:       false,
			StatusMessage: "GetModelState: model [" + model + "] does not exist",
		}
	}

	snap := s.world.Snapshot()
	return protocol.GetModelStateValues{
		Pose: protocol.Pose{
			Position:    protocol.Point{X: snap.X, Y: snap.Y},
			Orientation: protocol.Quaternion{W: 1},
		},
		Twist: protocol.Twist{
			Linear: protocol.Point{X: snap.VX, Y: snap.VY},
		},
		Success:       true,
		StatusMessage: "GetModelState: got properties",
	}
}

func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid args: %w", err)
	}
	return nil
}
