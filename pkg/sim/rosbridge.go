package sim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-linetimer/internal/log"
	"github.com/teslashibe/go-linetimer/pkg/protocol"
)

// RosbridgeConfig holds rosbridge client settings.
type RosbridgeConfig struct {
	// HandshakeTimeout bounds the websocket dial.
	HandshakeTimeout time.Duration

	// WriteTimeout bounds each frame write.
	WriteTimeout time.Duration

	// PollInterval is how often WaitForService re-lists services.
	PollInterval time.Duration

	// PingInterval is the keepalive period. Zero disables pings.
	PingInterval time.Duration

	Logger *slog.Logger
}

// DefaultRosbridgeConfig returns a RosbridgeConfig with bench defaults.
func DefaultRosbridgeConfig() RosbridgeConfig {
	return RosbridgeConfig{
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     5 * time.Second,
		PollInterval:     500 * time.Millisecond,
		PingInterval:     30 * time.Second,
	}
}

// RosbridgeClient talks to the simulator through a rosbridge websocket.
// Calls are safe for concurrent use; replies are matched by request id.
type RosbridgeClient struct {
	cfg    RosbridgeConfig
	ws     *websocket.Conn
	wsMu   sync.Mutex // serializes writes
	logger *slog.Logger

	mu      sync.Mutex
	pending map[string]chan *protocol.Frame
	err     error // set once the read loop exits

	done      chan struct{}
	closeOnce sync.Once
}

// DialRosbridge connects to a rosbridge server, e.g. ws://localhost:9090.
func DialRosbridge(ctx context.Context, url string, cfg RosbridgeConfig) (*RosbridgeClient, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: cfg.HandshakeTimeout,
	}

	ws, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rosbridge at %s: %w", url, err)
	}

	return newRosbridgeClient(ws, cfg), nil
}

func newRosbridgeClient(ws *websocket.Conn, cfg RosbridgeConfig) *RosbridgeClient {
	logger := log.With("component", "rosbridge")
	if cfg.Logger != nil {
		logger = cfg.Logger.With("component", "rosbridge")
	}

	c := &RosbridgeClient{
		cfg:     cfg,
		ws:      ws,
		logger:  logger,
		pending: make(map[string]chan *protocol.Frame),
		done:    make(chan struct{}),
	}

	go c.readLoop()
	if cfg.PingInterval > 0 {
		go c.keepAlive()
	}

	return c
}

// ModelState implements StateQuerier.
func (c *RosbridgeClient) ModelState(ctx context.Context, model string) (*ModelState, error) {
	args := protocol.GetModelStateArgs{ModelName: model}

	var values protocol.GetModelStateValues
	if err := c.call(ctx, protocol.ServiceGetModelState, args, &values); err != nil {
		return nil, err
	}

	return modelStateFromValues(model, &values)
}

// ResetWorld implements WorldController.
func (c *RosbridgeClient) ResetWorld(ctx context.Context) error {
	return c.call(ctx, protocol.ServiceResetWorld, nil, nil)
}

// PausePhysics implements WorldController.
func (c *RosbridgeClient) PausePhysics(ctx context.Context) error {
	return c.call(ctx, protocol.ServicePausePhysics, nil, nil)
}

// UnpausePhysics implements WorldController.
func (c *RosbridgeClient) UnpausePhysics(ctx context.Context) error {
	return c.call(ctx, protocol.ServiceUnpausePhysics, nil, nil)
}

// Param implements ParamReader via rosapi/get_param.
func (c *RosbridgeClient) Param(ctx context.Context, name string) (float64, error) {
	args := protocol.GetParamArgs{Name: name}

	var values protocol.GetParamValues
	if err := c.call(ctx, protocol.ServiceGetParam, args, &values); err != nil {
		return 0, err
	}

	v, err := parseParamValue(values.Value)
	if err != nil {
		return 0, fmt.Errorf("param %s: %w", name, err)
	}
	return v, nil
}

// SimTime implements TimeSource via rosapi/get_time.
func (c *RosbridgeClient) SimTime(ctx context.Context) (time.Duration, error) {
	var values protocol.GetTimeValues
	if err := c.call(ctx, protocol.ServiceGetTime, nil, &values); err != nil {
		return 0, err
	}
	return values.Time.Duration(), nil
}

// WaitForService blocks until name shows up in rosapi/services or ctx ends.
// Listing failures are treated as "not yet available".
func (c *RosbridgeClient) WaitForService(ctx context.Context, name string) error {
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		var values protocol.ServicesValues
		err := c.call(ctx, protocol.ServiceServices, nil, &values)
		switch {
		case err == nil && slices.Contains(values.Services, name):
			return nil
		case errors.Is(err, ErrNotConnected):
			return err
		case err != nil:
			c.logger.Debug("service list failed, still waiting", "service", name, "error", err)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %s: %v", ErrUnavailable, name, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Close shuts the connection down. Pending calls fail with ErrNotConnected.
func (c *RosbridgeClient) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.wsMu.Lock()
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.wsMu.Unlock()
		err = c.ws.Close()
	})
	<-c.done
	return err
}

// call sends a call_service frame and waits for the matching response.
// out may be nil for services with empty replies.
func (c *RosbridgeClient) call(ctx context.Context, service string, args, out interface{}) error {
	id := uuid.NewString()

	frame, err := protocol.NewCallService(id, service, args)
	if err != nil {
		return wrapCall(service, err)
	}
	data, err := frame.Bytes()
	if err != nil {
		return wrapCall(service, err)
	}

	reply := make(chan *protocol.Frame, 1)
	if err := c.register(id, reply); err != nil {
		return wrapCall(service, err)
	}
	defer c.unregister(id)

	if err := c.write(data); err != nil {
		return wrapCall(service, err)
	}

	var resp *protocol.Frame
	select {
	case <-ctx.Done():
		return wrapCall(service, ctx.Err())
	case <-c.done:
		return wrapCall(service, c.connErr())
	case resp = <-reply:
	}

	if !resp.Succeeded() {
		return wrapCall(service, errors.New(resp.FailureReason()))
	}
	if out != nil {
		if err := resp.ParseValues(out); err != nil {
			return wrapCall(service, fmt.Errorf("decode values: %w", err))
		}
	}
	return nil
}

// write sends one text frame under the write deadline.
func (c *RosbridgeClient) write(data []byte) error {
	c.wsMu.Lock()
	defer c.wsMu.Unlock()

	if err := c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func (c *RosbridgeClient) register(id string, reply chan *protocol.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.pending[id] = reply
	return nil
}

func (c *RosbridgeClient) unregister(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *RosbridgeClient) connErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// readLoop is the only reader of the connection. It routes responses to
// waiting callers and fails them all when the socket closes.
func (c *RosbridgeClient) readLoop() {
	defer close(c.done)

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			c.mu.Lock()
			c.err = fmt.Errorf("%w: %v", ErrNotConnected, err)
			c.pending = make(map[string]chan *protocol.Frame)
			c.mu.Unlock()
			return
		}

		frame, err := protocol.ParseFrame(data)
		if err != nil {
			c.logger.Warn("dropping malformed frame", "error", err)
			continue
		}

		switch frame.Op {
		case protocol.OpServiceResponse:
			c.mu.Lock()
			reply, ok := c.pending[frame.ID]
			delete(c.pending, frame.ID)
			c.mu.Unlock()
			if ok {
				reply <- frame
			}
		case protocol.OpStatus:
			c.logger.Warn("rosbridge status", "level", frame.Level, "msg", frame.Msg)
		default:
			c.logger.Debug("ignoring frame", "op", frame.Op)
		}
	}
}

// keepAlive sends periodic pings until the connection closes.
func (c *RosbridgeClient) keepAlive() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.cfg.WriteTimeout)); err != nil {
				c.logger.Debug("ping failed", "error", err)
				return
			}
		}
	}
}

// modelStateFromValues converts a GetModelState reply, honoring its
// success flag (false for unknown models).
func modelStateFromValues(model string, v *protocol.GetModelStateValues) (*ModelState, error) {
	if !v.Success {
		msg := v.StatusMessage
		if msg == "" {
			msg = "model state unavailable"
		}
		return nil, wrapCall(protocol.ServiceGetModelState, fmt.Errorf("%s: %s", model, msg))
	}

	return &ModelState{
		Model:    model,
		Position: Vector2{X: v.Pose.Position.X, Y: v.Pose.Position.Y},
		Linear:   Vector2{X: v.Twist.Linear.X, Y: v.Twist.Linear.Y},
	}, nil
}

// parseParamValue decodes rosapi's JSON-encoded parameter value.
func parseParamValue(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" || raw == `""` {
		return 0, ErrParamNotFound
	}

	var v float64
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v, nil
	}

	// Some launch files store numbers as strings.
	var s string
	if err := json.Unmarshal([]byte(raw), &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f, nil
		}
	}
	return 0, fmt.Errorf("not a number: %s", raw)
}
