package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Server.Port)
	}
	if cfg.Generator.Days != 730 || cfg.Generator.Volatility != 0.02 || !cfg.SkipWeekends() {
		t.Errorf("unexpected generator defaults: %+v", cfg.Generator)
	}
	if cfg.Schedule.BroadcastCron != "@every 30s" || cfg.Schedule.RefreshCron != "" {
		t.Errorf("unexpected schedule defaults: %+v", cfg.Schedule)
	}
	if cfg.Broadcast.SendTimeout != 5*time.Second || cfg.Broadcast.DrainTimeout != 10*time.Second {
		t.Errorf("unexpected broadcast defaults: %+v", cfg.Broadcast)
	}
	if len(cfg.Companies) != 10 {
		t.Errorf("expected 10 default companies, got %d", len(cfg.Companies))
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
generator:
  days: 30
  skip_weekends: false
broadcast:
  send_timeout: 2s
companies:
  - symbol: ACME
    name: Acme Corp
    sector: Industrials
    base_price: 100
    pe_ratio: 12.5
`)
	t.Setenv("PORT", "9100")
	t.Setenv("GENERATOR_SEED", "42")
	t.Setenv("SYNTHETIC_RATIOS", "true")
	t.Setenv("CRON_REFRESH", "@daily")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("expected env port 9100, got %d", cfg.Server.Port)
	}
	if cfg.Generator.Seed != 42 || cfg.Generator.Days != 30 || cfg.SkipWeekends() {
		t.Errorf("unexpected generator config: %+v", cfg.Generator)
	}
	if cfg.Broadcast.SendTimeout != 2*time.Second {
		t.Errorf("expected 2s send timeout, got %s", cfg.Broadcast.SendTimeout)
	}
	if !cfg.Stats.SyntheticRatios || cfg.Schedule.RefreshCron != "@daily" {
		t.Errorf("expected env overrides applied: %+v %+v", cfg.Stats, cfg.Schedule)
	}
	if len(cfg.Companies) != 1 || cfg.Companies[0].PERatio == nil || *cfg.Companies[0].PERatio != 12.5 {
		t.Errorf("unexpected companies: %+v", cfg.Companies)
	}
	if cfg.Companies[0].MarketCap != nil {
		t.Error("expected absent market cap to stay nil")
	}
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv("PORT", "eighty")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for non-numeric PORT")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"volatility", func(c *Config) { c.Generator.Volatility = 1 }, "volatility"},
		{"negative days", func(c *Config) { c.Generator.Days = -1 }, "generator.days"},
		{"follow without redis", func(c *Config) { c.Broadcast.Follow = true }, "redis.addr"},
		{"duplicate symbol", func(c *Config) { c.Companies = append(c.Companies, c.Companies[0]) }, "duplicate"},
		{"duplicate symbol case", func(c *Config) {
			dup := c.Companies[0]
			dup.Symbol = " " + strings.ToLower(dup.Symbol)
			c.Companies = append(c.Companies, dup)
		}, "duplicate symbol AAPL"},
		{"blank symbol", func(c *Config) { c.Companies[0].Symbol = "  " }, "no symbol"},
		{"base price", func(c *Config) { c.Companies[0].BasePrice = 0 }, "base_price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			tt.mutate(cfg)
			err = cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}
