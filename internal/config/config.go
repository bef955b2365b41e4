package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"salonsked/internal/slots"
	"salonsked/internal/store"
)

// EnvPath names the environment variable holding the config file path.
const EnvPath = "SALONSKED_CONFIG"

type Config struct {
	Server struct {
		Addr            string  `yaml:"addr"`
		RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
		RateLimitBurst  int     `yaml:"rate_limit_burst"`
	} `yaml:"server"`

	Database struct {
		Path   string           `yaml:"path"`
		Tables store.TableNames `yaml:"tables"`
	} `yaml:"database"`

	Backup store.BackupConfig `yaml:"backup"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Schedule ScheduleConfig `yaml:"schedule"`
}

// ScheduleConfig holds the settings that can be reloaded while running.
type ScheduleConfig struct {
	Timezone            string `yaml:"timezone"`
	DefaultInterval     int    `yaml:"default_interval"`
	LoadWindowDays      int    `yaml:"load_window_days"`
	BlockDefaultMinutes int    `yaml:"block_default_minutes"`
}

// Location resolves Timezone, falling back to UTC when it is empty.
func (s ScheduleConfig) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(s.Timezone)
}

// Path returns the config path from the environment or the default location.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return "configs/config.yaml"
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyDefaults()

	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.RateLimitPerSec <= 0 {
		c.Server.RateLimitPerSec = 10
	}
	if c.Server.RateLimitBurst <= 0 {
		c.Server.RateLimitBurst = 20
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/salonsked.db"
	}
	c.Database.Tables = c.Database.Tables.WithDefaults()
	if c.Backup.Path == "" {
		c.Backup.Path = "data/backups"
	}
	if c.Monitoring.HealthCheckPort == 0 {
		c.Monitoring.HealthCheckPort = 8081
	}
	if c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	c.Schedule = c.Schedule.withDefaults()
}

func (s ScheduleConfig) withDefaults() ScheduleConfig {
	if s.DefaultInterval == 0 {
		s.DefaultInterval = slots.DefaultGranularity
	}
	if s.LoadWindowDays == 0 {
		s.LoadWindowDays = 90
	}
	if s.BlockDefaultMinutes == 0 {
		s.BlockDefaultMinutes = 30
	}
	return s
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Database.Tables.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Schedule.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Backup.Enabled && c.Backup.RetentionDays < 0 {
		errs = append(errs, errors.New("backup.retention_days must not be negative"))
	}
	return errors.Join(errs...)
}

func (s ScheduleConfig) Validate() error {
	var errs []error
	if !slots.ValidGranularity(s.DefaultInterval) {
		errs = append(errs, fmt.Errorf("schedule.default_interval must be one of %v, got %d", slots.Granularities, s.DefaultInterval))
	}
	if s.LoadWindowDays < 1 {
		errs = append(errs, fmt.Errorf("schedule.load_window_days must be positive, got %d", s.LoadWindowDays))
	}
	if s.BlockDefaultMinutes < 1 {
		errs = append(errs, fmt.Errorf("schedule.block_default_minutes must be positive, got %d", s.BlockDefaultMinutes))
	}
	if _, err := s.Location(); err != nil {
		errs = append(errs, fmt.Errorf("schedule.timezone: %w", err))
	}
	return errors.Join(errs...)
}
