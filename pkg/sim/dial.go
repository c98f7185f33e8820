package sim

import (
	"context"
	"fmt"
	"net/url"
)

// Dial connects to the simulator at rawURL.
// ws:// and wss:// speak rosbridge, http:// and https:// the JSON gateway.
func Dial(ctx context.Context, rawURL string) (Service, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("sim: invalid url %q: %w", rawURL, err)
	}

	switch u.Scheme {
	case "ws", "wss":
		return DialRosbridge(ctx, rawURL, DefaultRosbridgeConfig())
	case "http", "https":
		return NewHTTPClient(rawURL), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedURL, u.Scheme)
	}
}
