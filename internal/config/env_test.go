package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestString(t *testing.T) {
	t.Setenv("LINETIMER_TEST_STR", "")
	if got := String("LINETIMER_TEST_STR", "fallback"); got != "fallback" {
		t.Errorf("unset: got %q, want fallback", got)
	}

	t.Setenv("LINETIMER_TEST_STR", "  ws://sim:9090 ")
	if got := String("LINETIMER_TEST_STR", "fallback"); got != "ws://sim:9090" {
		t.Errorf("set: got %q", got)
	}
}

func TestBool(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{"", false, false},
		{"", true, true},
		{"true", false, true},
		{"1", false, true},
		{"0", true, false},
		{"nope", true, true},
	}

	for _, tt := range tests {
		t.Setenv("LINETIMER_TEST_BOOL", tt.value)
		if got := Bool("LINETIMER_TEST_BOOL", tt.def); got != tt.want {
			t.Errorf("Bool(%q, %v) = %v, want %v", tt.value, tt.def, got, tt.want)
		}
	}
}

func TestFloat(t *testing.T) {
	t.Setenv("LINETIMER_TEST_FLOAT", "0.125")
	if got := Float("LINETIMER_TEST_FLOAT", 1); got != 0.125 {
		t.Errorf("got %v, want 0.125", got)
	}

	t.Setenv("LINETIMER_TEST_FLOAT", "abc")
	if got := Float("LINETIMER_TEST_FLOAT", 1); got != 1 {
		t.Errorf("bad value: got %v, want default 1", got)
	}
}

func TestSimURLDefault(t *testing.T) {
	t.Setenv("SIM_URL", "")
	if got := SimURL(); got != DefaultSimURL {
		t.Errorf("SimURL() = %q, want %q", got, DefaultSimURL)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bench.env")
	if err := os.WriteFile(path, []byte("LINETIMER_DOTENV=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("LINETIMER_DOTENV", "")
	os.Unsetenv("LINETIMER_DOTENV")

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("LINETIMER_DOTENV"); got != "from-file" {
		t.Errorf("LINETIMER_DOTENV = %q, want from-file", got)
	}
}

func TestLoadDotEnv_NoFiles(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "none.env")); err != nil {
		t.Errorf("missing files should be ignored, got %v", err)
	}
}
