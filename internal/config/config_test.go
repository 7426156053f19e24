package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "no-such-config.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.FRED.BaseURL != "https://api.stlouisfed.org/fred" {
		t.Errorf("base_url default: %q", cfg.FRED.BaseURL)
	}
	if cfg.FRED.DieselSeriesID != "DDFUELNYH" || cfg.FRED.CrudeSeriesID != "DCOILBRENTEU" {
		t.Errorf("series defaults: %q / %q", cfg.FRED.DieselSeriesID, cfg.FRED.CrudeSeriesID)
	}
	if cfg.FRED.LookbackDays != 60 {
		t.Errorf("lookback default: %d", cfg.FRED.LookbackDays)
	}
	if cfg.Sheet.Path != "data/fuel_prices.xlsx" {
		t.Errorf("sheet path default: %q", cfg.Sheet.Path)
	}
	if cfg.Report.Weekday != "FRI" {
		t.Errorf("weekday default: %q", cfg.Report.Weekday)
	}
	if cfg.Report.SMTP.Port != 587 {
		t.Errorf("smtp port default: %d", cfg.Report.SMTP.Port)
	}
	if cfg.Schedule.DailyCron != "0 0 7 * * *" {
		t.Errorf("cron default: %q", cfg.Schedule.DailyCron)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
fred:
  api_key: file-key
  lookback_days: 90
sheet:
  path: /var/lib/fuel/prices.xlsx
report:
  weekday: MON
  recipients:
    - a@example.com
    - b@example.com
  smtp:
    host: mail.example.com
    username: sender@example.com
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.FRED.APIKey != "file-key" || cfg.FRED.LookbackDays != 90 {
		t.Errorf("fred section: %+v", cfg.FRED)
	}
	if cfg.Sheet.Path != "/var/lib/fuel/prices.xlsx" {
		t.Errorf("sheet path: %q", cfg.Sheet.Path)
	}
	if len(cfg.Report.Recipients) != 2 {
		t.Errorf("recipients: %v", cfg.Report.Recipients)
	}
	// from falls back to the smtp username
	if cfg.Report.SMTP.From != "sender@example.com" {
		t.Errorf("smtp from fallback: %q", cfg.Report.SMTP.From)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("fred:\n  api_key: file-key\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("FRED_API_KEY", "env-key")
	t.Setenv("REPORT_WEEKDAY", "WED")
	t.Setenv("REPORT_RECIPIENTS", " a@example.com, b@example.com ,")
	t.Setenv("SMTP_HOST", "smtp.env.example.com")
	t.Setenv("SMTP_PORT", "2525")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.FRED.APIKey != "env-key" {
		t.Errorf("api key not overridden: %q", cfg.FRED.APIKey)
	}
	if cfg.Report.Weekday != "WED" {
		t.Errorf("weekday not overridden: %q", cfg.Report.Weekday)
	}
	want := []string{"a@example.com", "b@example.com"}
	if !reflect.DeepEqual(cfg.Report.Recipients, want) {
		t.Errorf("recipients = %v, want %v", cfg.Report.Recipients, want)
	}
	if cfg.Report.SMTP.Host != "smtp.env.example.com" || cfg.Report.SMTP.Port != 2525 {
		t.Errorf("smtp override: %s:%d", cfg.Report.SMTP.Host, cfg.Report.SMTP.Port)
	}
}

func TestValidate(t *testing.T) {
	base := func(t *testing.T) *Config {
		t.Helper()
		t.Setenv("FRED_API_KEY", "key")
		cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
		if err != nil {
			t.Fatal(err)
		}
		return cfg
	}

	t.Run("defaults with api key are valid", func(t *testing.T) {
		if err := base(t).Validate(); err != nil {
			t.Errorf("validate: %v", err)
		}
	})

	t.Run("missing api key", func(t *testing.T) {
		cfg := base(t)
		cfg.FRED.APIKey = ""
		if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "api_key") {
			t.Errorf("expected api_key error, got %v", err)
		}
	})

	t.Run("bad weekday", func(t *testing.T) {
		cfg := base(t)
		cfg.Report.Weekday = "FRIDAY"
		if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "weekday") {
			t.Errorf("expected weekday error, got %v", err)
		}
	})

	t.Run("recipients without smtp host", func(t *testing.T) {
		cfg := base(t)
		cfg.Report.Recipients = []string{"a@example.com"}
		if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "smtp.host") {
			t.Errorf("expected smtp host error, got %v", err)
		}
	})

	t.Run("non-positive lookback", func(t *testing.T) {
		cfg := base(t)
		cfg.FRED.LookbackDays = -1
		if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "lookback") {
			t.Errorf("expected lookback error, got %v", err)
		}
	})
}
