package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"MarketPulse/internal/model"
)

// Config holds all application configuration.
type Config struct {
	App struct {
		Env string `yaml:"env"`
	} `yaml:"app"`
	Server struct {
		Port            int           `yaml:"port"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Generator struct {
		Seed         uint64  `yaml:"seed"`
		Days         int     `yaml:"days"`
		Volatility   float64 `yaml:"volatility"`
		SkipWeekends *bool   `yaml:"skip_weekends"`
	} `yaml:"generator"`
	Broadcast struct {
		SendTimeout  time.Duration `yaml:"send_timeout"`
		DrainTimeout time.Duration `yaml:"drain_timeout"`
		TopMovers    int           `yaml:"top_movers"`
		// Follow makes this process relay snapshots published by another
		// instance instead of producing its own.
		Follow bool `yaml:"follow"`
	} `yaml:"broadcast"`
	Schedule struct {
		BroadcastCron string `yaml:"broadcast_cron"`
		RefreshCron   string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Redis struct {
		Addr        string        `yaml:"addr"`
		Password    string        `yaml:"password"`
		DB          int           `yaml:"db"`
		SnapshotTTL time.Duration `yaml:"snapshot_ttl"`
	} `yaml:"redis"`
	Stats struct {
		SyntheticRatios bool `yaml:"synthetic_ratios"`
	} `yaml:"stats"`
	Companies []model.Company `yaml:"companies"`
}

// Load reads config from a YAML file, then a .env file if present, then applies
// environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Variables already set in the environment win over .env.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	// Environment variable overrides
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.App.Env = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("GENERATOR_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("GENERATOR_SEED: %w", err)
		}
		cfg.Generator.Seed = seed
	}
	if v := os.Getenv("CRON_BROADCAST"); v != "" {
		cfg.Schedule.BroadcastCron = v
	}
	if v := os.Getenv("CRON_REFRESH"); v != "" {
		cfg.Schedule.RefreshCron = v
	}
	if v := os.Getenv("SYNTHETIC_RATIOS"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("SYNTHETIC_RATIOS: %w", err)
		}
		cfg.Stats.SyntheticRatios = on
	}
	if v := os.Getenv("BROADCAST_FOLLOW"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("BROADCAST_FOLLOW: %w", err)
		}
		cfg.Broadcast.Follow = on
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Env == "" {
		cfg.App.Env = "production"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Generator.Days == 0 {
		cfg.Generator.Days = 730
	}
	if cfg.Generator.Volatility == 0 {
		cfg.Generator.Volatility = 0.02
	}
	if cfg.Generator.SkipWeekends == nil {
		skip := true
		cfg.Generator.SkipWeekends = &skip
	}
	if cfg.Broadcast.SendTimeout == 0 {
		cfg.Broadcast.SendTimeout = 5 * time.Second
	}
	if cfg.Broadcast.DrainTimeout == 0 {
		cfg.Broadcast.DrainTimeout = 10 * time.Second
	}
	if cfg.Broadcast.TopMovers == 0 {
		cfg.Broadcast.TopMovers = 5
	}
	if cfg.Schedule.BroadcastCron == "" {
		cfg.Schedule.BroadcastCron = "@every 30s"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/market_pulse.db"
	}
	if cfg.Redis.SnapshotTTL == 0 {
		cfg.Redis.SnapshotTTL = 10 * time.Minute
	}
	if len(cfg.Companies) == 0 {
		cfg.Companies = model.DefaultCompanies()
	}
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Generator.Days < 0 {
		return fmt.Errorf("generator.days must not be negative")
	}
	if c.Generator.Volatility < 0 || c.Generator.Volatility >= 1 {
		return fmt.Errorf("generator.volatility must be in [0, 1)")
	}
	if c.Broadcast.SendTimeout < 0 || c.Broadcast.DrainTimeout < 0 {
		return fmt.Errorf("broadcast timeouts must not be negative")
	}
	if c.Broadcast.Follow && c.Redis.Addr == "" {
		return fmt.Errorf("broadcast.follow requires redis.addr")
	}
	seen := make(map[string]bool, len(c.Companies))
	for _, co := range c.Companies {
		symbol := strings.ToUpper(strings.TrimSpace(co.Symbol))
		if symbol == "" {
			return fmt.Errorf("companies: entry %q has no symbol", co.Name)
		}
		if seen[symbol] {
			return fmt.Errorf("companies: duplicate symbol %s", symbol)
		}
		seen[symbol] = true
		if co.BasePrice <= 0 {
			return fmt.Errorf("companies: %s base_price must be positive", co.Symbol)
		}
	}
	return nil
}

// SkipWeekends reports whether generated history omits Saturdays and Sundays.
func (c *Config) SkipWeekends() bool {
	return c.Generator.SkipWeekends == nil || *c.Generator.SkipWeekends
}
