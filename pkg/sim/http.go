package sim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/teslashibe/go-linetimer/internal/httpc"
	"github.com/teslashibe/go-linetimer/pkg/protocol"
)

// HTTPClient implements Service against the simulator's JSON gateway.
//
//	GET  /api/services            list advertised services
//	POST /api/services/<service>  call a service, body is the args
//	GET  /api/params/<name>       read a parameter
//	GET  /api/time                simulator clock
type HTTPClient struct {
	BaseURL string

	// PollInterval is how often WaitForService re-lists services.
	PollInterval time.Duration

	client *http.Client
}

// NewHTTPClient creates a gateway client using the shared httpc client.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		PollInterval: 500 * time.Millisecond,
		client:       httpc.Client,
	}
}

// ModelState implements StateQuerier.
func (h *HTTPClient) ModelState(ctx context.Context, model string) (*ModelState, error) {
	args := protocol.GetModelStateArgs{ModelName: model}

	var values protocol.GetModelStateValues
	if err := h.callService(ctx, protocol.ServiceGetModelState, args, &values); err != nil {
		return nil, err
	}

	return modelStateFromValues(model, &values)
}

// ResetWorld implements WorldController.
func (h *HTTPClient) ResetWorld(ctx context.Context) error {
	return h.callService(ctx, protocol.ServiceResetWorld, nil, nil)
}

// PausePhysics implements WorldController.
func (h *HTTPClient) PausePhysics(ctx context.Context) error {
	return h.callService(ctx, protocol.ServicePausePhysics, nil, nil)
}

// UnpausePhysics implements WorldController.
func (h *HTTPClient) UnpausePhysics(ctx context.Context) error {
	return h.callService(ctx, protocol.ServiceUnpausePhysics, nil, nil)
}

// Param implements ParamReader.
func (h *HTTPClient) Param(ctx context.Context, name string) (float64, error) {
	segs := strings.Split(strings.TrimPrefix(name, "/"), "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	path := "/api/params/" + strings.Join(segs, "/")

	var pv protocol.ParamValue
	status, err := h.do(ctx, http.MethodGet, path, nil, &pv)
	if status == http.StatusNotFound {
		return 0, fmt.Errorf("param %s: %w", name, ErrParamNotFound)
	}
	if err != nil {
		return 0, wrapCall(protocol.ServiceGetParam, err)
	}
	return pv.Value, nil
}

// SimTime implements TimeSource.
func (h *HTTPClient) SimTime(ctx context.Context) (time.Duration, error) {
	var values protocol.GetTimeValues
	if _, err := h.do(ctx, http.MethodGet, "/api/time", nil, &values); err != nil {
		return 0, wrapCall(protocol.ServiceGetTime, err)
	}
	return values.Time.Duration(), nil
}

// WaitForService polls the service list until name appears or ctx ends.
func (h *HTTPClient) WaitForService(ctx context.Context, name string) error {
	ticker := time.NewTicker(h.PollInterval)
	defer ticker.Stop()

	for {
		var values protocol.ServicesValues
		if _, err := h.do(ctx, http.MethodGet, "/api/services", nil, &values); err == nil {
			if slices.Contains(values.Services, name) {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %s: %v", ErrUnavailable, name, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Close implements io.Closer. The shared HTTP client needs no teardown.
func (h *HTTPClient) Close() error {
	return nil
}

func (h *HTTPClient) callService(ctx context.Context, service string, args, out interface{}) error {
	if args == nil {
		args = struct{}{}
	}
	body, err := json.Marshal(args)
	if err != nil {
		return wrapCall(service, fmt.Errorf("failed to marshal args: %w", err))
	}

	if _, err := h.do(ctx, http.MethodPost, "/api/services"+service, body, out); err != nil {
		return wrapCall(service, err)
	}
	return nil
}

// do performs one request and decodes a 200 reply into out.
// Non-200 replies become errors carrying the gateway's message.
func (h *HTTPClient) do(ctx context.Context, method, path string, body []byte, out interface{}) (int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.BaseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var eb protocol.ErrorBody
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return resp.StatusCode, fmt.Errorf("status %d: read body: %w", resp.StatusCode, err)
		}
		if json.Unmarshal(data, &eb) == nil && eb.Error != "" {
			return resp.StatusCode, fmt.Errorf("status %d: %s", resp.StatusCode, eb.Error)
		}
		return resp.StatusCode, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
