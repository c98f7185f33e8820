package sim

import (
	"context"
	"sync"
	"time"
)

// Mock implements Service for testing.
// All methods can be customized via function fields; a nil field succeeds
// with a zero value.
type Mock struct {
	ModelStateFunc     func(ctx context.Context, model string) (*ModelState, error)
	ResetWorldFunc     func(ctx context.Context) error
	PausePhysicsFunc   func(ctx context.Context) error
	UnpausePhysicsFunc func(ctx context.Context) error
	ParamFunc          func(ctx context.Context, name string) (float64, error)
	WaitForServiceFunc func(ctx context.Context, name string) error
	SimTimeFunc        func(ctx context.Context) (time.Duration, error)

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records a method invocation for verification.
type MockCall struct {
	Method string
	Arg    string
	Time   time.Time
}

// NewMock creates a mock whose every call succeeds.
func NewMock() *Mock {
	return &Mock{}
}

// ModelState calls ModelStateFunc and records the call.
func (m *Mock) ModelState(ctx context.Context, model string) (*ModelState, error) {
	m.recordCall("ModelState", model)
	if m.ModelStateFunc != nil {
		return m.ModelStateFunc(ctx, model)
	}
	return &ModelState{Model: model}, nil
}

// ResetWorld calls ResetWorldFunc and records the call.
func (m *Mock) ResetWorld(ctx context.Context) error {
	m.recordCall("ResetWorld", "")
	if m.ResetWorldFunc != nil {
		return m.ResetWorldFunc(ctx)
	}
	return nil
}

// PausePhysics calls PausePhysicsFunc and records the call.
func (m *Mock) PausePhysics(ctx context.Context) error {
	m.recordCall("PausePhysics", "")
	if m.PausePhysicsFunc != nil {
		return m.PausePhysicsFunc(ctx)
	}
	return nil
}

// UnpausePhysics calls UnpausePhysicsFunc and records the call.
func (m *Mock) UnpausePhysics(ctx context.Context) error {
	m.recordCall("UnpausePhysics", "")
	if m.UnpausePhysicsFunc != nil {
		return m.UnpausePhysicsFunc(ctx)
	}
	return nil
}

// Param calls ParamFunc and records the call.
func (m *Mock) Param(ctx context.Context, name string) (float64, error) {
	m.recordCall("Param", name)
	if m.ParamFunc != nil {
		return m.ParamFunc(ctx, name)
	}
	return 0, nil
}

// WaitForService calls WaitForServiceFunc and records the call.
func (m *Mock) WaitForService(ctx context.Context, name string) error {
	m.recordCall("WaitForService", name)
	if m.WaitForServiceFunc != nil {
		return m.WaitForServiceFunc(ctx, name)
	}
	return nil
}

// SimTime calls SimTimeFunc and records the call.
func (m *Mock) SimTime(ctx context.Context) (time.Duration, error) {
	m.recordCall("SimTime", "")
	if m.SimTimeFunc != nil {
		return m.SimTimeFunc(ctx)
	}
	return 0, nil
}

// Close implements io.Closer.
func (m *Mock) Close() error {
	m.recordCall("Close", "")
	return nil
}

func (m *Mock) recordCall(method, arg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockCall{Method: method, Arg: arg, Time: time.Now()})
}

// Calls returns a copy of all recorded calls.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Methods returns the recorded method names in call order.
func (m *Mock) Methods() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	for i, c := range m.calls {
		out[i] = c.Method
	}
	return out
}

// CallCount returns how many times method was called.
func (m *Mock) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Reset clears recorded calls.
func (m *Mock) Reset() {
	m.mu.Lock()
	m.calls = nil
	m.mu.Unlock()
}

// Step is one scripted ModelState reply.
type Step struct {
	Position Vector2
	Linear   Vector2
	Err      error
}

// Script returns a ModelStateFunc that replays steps in order and then
// keeps returning the last one.
func Script(steps ...Step) func(ctx context.Context, model string) (*ModelState, error) {
	var (
		mu sync.Mutex
		i  int
	)
	return func(ctx context.Context, model string) (*ModelState, error) {
		mu.Lock()
		defer mu.Unlock()

		if len(steps) == 0 {
			return &ModelState{Model: model}, nil
		}
		s := steps[i]
		if i < len(steps)-1 {
			i++
		}
		if s.Err != nil {
			return nil, s.Err
		}
		return &ModelState{Model: model, Position: s.Position, Linear: s.Linear}, nil
	}
}
