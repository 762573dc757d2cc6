// Package config handles TOML configuration loading with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/setevik/assetrisk/internal/health"
)

// Config is the top-level configuration for assetrisk.
type Config struct {
	Instance   InstanceConfig   `toml:"instance"`
	Thresholds ThresholdsConfig `toml:"thresholds"`
	Warranty   WarrantyConfig   `toml:"warranty"`
	DB         DBConfig         `toml:"db"`
	Metrics    MetricsConfig    `toml:"metrics"`
	Log        LogConfig        `toml:"log"`
}

// InstanceConfig names the inventory this tool runs against.
type InstanceConfig struct {
	ID string `toml:"id"`
}

// ThresholdsConfig tunes health alerts and replacement suggestions.
type ThresholdsConfig struct {
	CriticalBelow int `toml:"critical_below"`
	AtRiskMax     int `toml:"at_risk_max"`
	Replacement   int `toml:"replacement"`
	AlertLimit    int `toml:"alert_limit"`
}

// WarrantyConfig controls when a warranty counts as expiring soon.
type WarrantyConfig struct {
	Window Duration `toml:"window"`
}

// DBConfig controls the local inventory database.
type DBConfig struct {
	Path string `toml:"path"`
	// Retention is how long decommissioned assets are kept. Zero keeps them forever.
	Retention Duration `toml:"retention"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	TextfilePath string `toml:"textfile_path"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Duration wraps time.Duration for TOML string parsing (e.g. "720h", "30d").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ParseDuration extends time.ParseDuration with support for a "d" (days) suffix.
func ParseDuration(s string) (time.Duration, error) {
	if n := len(s); n > 1 && s[n-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s[:n-1], "%d", &days); err != nil {
			return 0, fmt.Errorf("invalid days format: %s", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	th := health.DefaultThresholds()
	return &Config{
		Instance: InstanceConfig{
			ID: "inventory",
		},
		Thresholds: ThresholdsConfig{
			CriticalBelow: th.CriticalBelow,
			AtRiskMax:     th.AtRiskMax,
			Replacement:   th.Replacement,
			AlertLimit:    th.AlertLimit,
		},
		Warranty: WarrantyConfig{
			Window: Duration{30 * 24 * time.Hour},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, "assetrisk", "config.toml")
}

// Load reads configuration from the given path, falling back to defaults
// for any unset fields. If the file does not exist, returns defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// validate rejects values the health evaluator would not use as given.
func (c *Config) validate() error {
	t := c.Thresholds
	if t.CriticalBelow < 1 || t.CriticalBelow > 100 {
		return fmt.Errorf("thresholds.critical_below must be within 1-100, got %d", t.CriticalBelow)
	}
	if t.AtRiskMax < 1 || t.AtRiskMax > 100 {
		return fmt.Errorf("thresholds.at_risk_max must be within 1-100, got %d", t.AtRiskMax)
	}
	if t.CriticalBelow > t.AtRiskMax {
		return fmt.Errorf("thresholds.critical_below (%d) exceeds at_risk_max (%d)", t.CriticalBelow, t.AtRiskMax)
	}
	if t.Replacement < 1 {
		return fmt.Errorf("thresholds.replacement must be positive, got %d", t.Replacement)
	}
	if t.AlertLimit < 1 {
		return fmt.Errorf("thresholds.alert_limit must be positive, got %d", t.AlertLimit)
	}
	if c.Warranty.Window.Duration < 0 {
		return fmt.Errorf("warranty.window must not be negative")
	}
	return nil
}

// HealthThresholds converts the configured limits for the health evaluator.
func (c *Config) HealthThresholds() health.Thresholds {
	return health.Thresholds{
		CriticalBelow: c.Thresholds.CriticalBelow,
		AtRiskMax:     c.Thresholds.AtRiskMax,
		Replacement:   c.Thresholds.Replacement,
		AlertLimit:    c.Thresholds.AlertLimit,
	}
}

// DBPath returns the inventory database path, defaulting to the XDG data
// directory.
func (c *Config) DBPath() string {
	if c.DB.Path != "" {
		return c.DB.Path
	}
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "assetrisk", "inventory.db")
}
