package timing

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Model != "meu_primeiro_robo" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.Target.X != 0.90 || cfg.Target.Y != 1.075 {
		t.Errorf("Target = %+v, want (0.90, 1.075)", cfg.Target)
	}
	if cfg.DistThreshold != 0.5 || cfg.VelThreshold != 0.005 {
		t.Errorf("thresholds = %v, %v", cfg.DistThreshold, cfg.VelThreshold)
	}
	if cfg.Rate != 10*time.Millisecond {
		t.Errorf("Rate = %v, want 10ms (100Hz)", cfg.Rate)
	}
	if cfg.SettleDelay != 100*time.Millisecond {
		t.Errorf("SettleDelay = %v, want 100ms", cfg.SettleDelay)
	}
	if cfg.LogEvery != 5*time.Second {
		t.Errorf("LogEvery = %v, want 5s", cfg.LogEvery)
	}
	if cfg.Policy != FailFast {
		t.Errorf("Policy = %v, want fail-fast", cfg.Policy)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty model", func(c *Config) { c.Model = "" }},
		{"empty param", func(c *Config) { c.HalfWidthParam = "" }},
		{"zero distance", func(c *Config) { c.DistThreshold = 0 }},
		{"negative velocity", func(c *Config) { c.VelThreshold = -1 }},
		{"zero rate", func(c *Config) { c.Rate = 0 }},
		{"negative settle", func(c *Config) { c.SettleDelay = -time.Millisecond }},
		{"negative log interval", func(c *Config) { c.LogEvery = -time.Second }},
		{"unknown policy", func(c *Config) { c.Policy = FailurePolicy(7) }},
		{"negative max failures", func(c *Config) { c.MaxConsecutiveFailures = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestFailurePolicy_String(t *testing.T) {
	if FailFast.String() != "fail-fast" || SkipTick.String() != "skip-tick" {
		t.Errorf("got %s, %s", FailFast, SkipTick)
	}
	if FailurePolicy(9).String() != "FailurePolicy(9)" {
		t.Errorf("unknown = %s", FailurePolicy(9))
	}
}
