package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/setevik/assetrisk/internal/health"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if cfg.Instance.ID == "" {
		t.Error("default instance ID should not be empty")
	}
	if cfg.Thresholds.CriticalBelow != 30 {
		t.Errorf("default critical_below = %d, want 30", cfg.Thresholds.CriticalBelow)
	}
	if cfg.Thresholds.AtRiskMax != 70 {
		t.Errorf("default at_risk_max = %d, want 70", cfg.Thresholds.AtRiskMax)
	}
	if cfg.Thresholds.Replacement != 5 {
		t.Errorf("default replacement = %d, want 5", cfg.Thresholds.Replacement)
	}
	if cfg.Thresholds.AlertLimit != 5 {
		t.Errorf("default alert_limit = %d, want 5", cfg.Thresholds.AlertLimit)
	}
	if cfg.Warranty.Window.Duration != 30*24*time.Hour {
		t.Errorf("default warranty window = %v, want 720h", cfg.Warranty.Window.Duration)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("default log level = %q, want %q", cfg.Log.Level, "info")
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("loading nonexistent config should return defaults, got error: %v", err)
	}
	if cfg.Thresholds.Replacement != 5 {
		t.Errorf("replacement = %d, want default 5", cfg.Thresholds.Replacement)
	}
}

func TestLoadValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[instance]
id = "matriz"

[thresholds]
critical_below = 25
replacement = 3
alert_limit = 10

[warranty]
window = "60d"

[db]
path = "/var/lib/assetrisk/inventory.db"
retention = "365d"

[metrics]
textfile_path = "/var/lib/node_exporter/assetrisk.prom"

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}

	if cfg.Instance.ID != "matriz" {
		t.Errorf("instance.id = %q, want %q", cfg.Instance.ID, "matriz")
	}
	if cfg.Thresholds.CriticalBelow != 25 {
		t.Errorf("critical_below = %d, want 25", cfg.Thresholds.CriticalBelow)
	}
	// Unset keys keep their defaults.
	if cfg.Thresholds.AtRiskMax != 70 {
		t.Errorf("at_risk_max = %d, want default 70", cfg.Thresholds.AtRiskMax)
	}
	if cfg.Thresholds.Replacement != 3 {
		t.Errorf("replacement = %d, want 3", cfg.Thresholds.Replacement)
	}
	if cfg.Thresholds.AlertLimit != 10 {
		t.Errorf("alert_limit = %d, want 10", cfg.Thresholds.AlertLimit)
	}
	if cfg.Warranty.Window.Duration != 60*24*time.Hour {
		t.Errorf("warranty.window = %v, want 60d", cfg.Warranty.Window.Duration)
	}
	if cfg.DBPath() != "/var/lib/assetrisk/inventory.db" {
		t.Errorf("db path = %q", cfg.DBPath())
	}
	if cfg.DB.Retention.Duration != 365*24*time.Hour {
		t.Errorf("db.retention = %v", cfg.DB.Retention.Duration)
	}
	if cfg.Metrics.TextfilePath != "/var/lib/node_exporter/assetrisk.prom" {
		t.Errorf("metrics.textfile_path = %q", cfg.Metrics.TextfilePath)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q, want %q", cfg.Log.Level, "debug")
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	if err := os.WriteFile(path, []byte("not valid [[[ toml"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid TOML, got nil")
	}
}

func TestLoadRejectsInvertedThresholds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := "[thresholds]\ncritical_below = 80\nat_risk_max = 50\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for critical_below above at_risk_max")
	}
	if !strings.Contains(err.Error(), "critical_below") {
		t.Errorf("error = %v, should name critical_below", err)
	}
}

func TestLoadRejectsNonPositiveThresholds(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"zero critical_below", "[thresholds]\ncritical_below = 0\n", "critical_below"},
		{"zero at_risk_max", "[thresholds]\nat_risk_max = 0\n", "at_risk_max"},
		{"negative replacement", "[thresholds]\nreplacement = -1\n", "replacement"},
		{"zero alert_limit", "[thresholds]\nalert_limit = 0\n", "alert_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}

			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error = %v, should name %s", err, tt.field)
			}
		})
	}
}

func TestHealthThresholds(t *testing.T) {
	cfg := Default()
	if got := cfg.HealthThresholds(); got != health.DefaultThresholds() {
		t.Errorf("HealthThresholds = %+v, want %+v", got, health.DefaultThresholds())
	}
}

func TestDBPathDefault(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg")
	cfg := Default()
	if got := cfg.DBPath(); got != "/tmp/xdg/assetrisk/inventory.db" {
		t.Errorf("DBPath = %q", got)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"24h", 24 * time.Hour, false},
		{"7d", 7 * 24 * time.Hour, false},
		{"90m", 90 * time.Minute, false},
		{"xd", 0, true},
		{"bogus", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDuration(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
