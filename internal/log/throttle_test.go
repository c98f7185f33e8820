package log

import (
	"testing"
	"time"
)

func TestThrottle_FirstCallPasses(t *testing.T) {
	th := NewThrottle(5 * time.Second)

	if !th.Allow(time.Unix(100, 0)) {
		t.Error("first call should pass")
	}
}

func TestThrottle_Interval(t *testing.T) {
	th := NewThrottle(5 * time.Second)
	base := time.Unix(100, 0)

	tests := []struct {
		name   string
		offset time.Duration
		want   bool
	}{
		{"initial", 0, true},
		{"too soon", 1 * time.Second, false},
		{"just before", 4999 * time.Millisecond, false},
		{"exactly interval", 5 * time.Second, true},
		{"after next too soon", 6 * time.Second, false},
		{"second interval", 10 * time.Second, true},
	}

	for _, tt := range tests {
		if got := th.Allow(base.Add(tt.offset)); got != tt.want {
			t.Errorf("%s: Allow() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestThrottle_Reset(t *testing.T) {
	th := NewThrottle(time.Hour)
	now := time.Unix(100, 0)

	th.Allow(now)
	if th.Allow(now) {
		t.Fatal("second call should be throttled")
	}

	th.Reset()
	if !th.Allow(now) {
		t.Error("call after Reset should pass")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   "DEBUG",
		"info":    "INFO",
		"warn":    "WARN",
		"error":   "ERROR",
		"":        "INFO",
		"verbose": "INFO",
	}

	for in, want := range tests {
		if got := ParseLevel(in).String(); got != want {
			t.Errorf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
