// Package config provides configuration helpers for go-linetimer commands.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Defaults for the bench setup.
const (
	DefaultSimURL  = "ws://localhost:9090"
	DefaultSimPort = "9090"
	DefaultLevel   = "info"
)

// LoadDotEnv loads variables from the given .env files (".env" when none are
// given). Missing files are ignored; variables already set in the
// environment win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}

// SimURL returns the simulator endpoint from SIM_URL.
// ws:// and wss:// select rosbridge, http:// and https:// the HTTP gateway.
func SimURL() string {
	return String("SIM_URL", DefaultSimURL)
}

// SimPort returns the fake simulator listen port from SIM_PORT.
func SimPort() string {
	return String("SIM_PORT", DefaultSimPort)
}

// LogLevel returns LOG_LEVEL or "info".
func LogLevel() string {
	return String("LOG_LEVEL", DefaultLevel)
}

// SkipFailedPolls reports whether SKIP_FAILED_POLLS is set to a true value.
func SkipFailedPolls() bool {
	return Bool("SKIP_FAILED_POLLS", false)
}

// String returns the env var key, or def when unset or blank.
func String(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// Bool parses the env var key with strconv.ParseBool, falling back to def.
func Bool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// Float parses the env var key as a float64, falling back to def.
func Float(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
