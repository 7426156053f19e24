package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"FuelWatch/internal/heartbeat"
)

// Config holds all application configuration. It is loaded once at
// startup and treated as immutable for the duration of the run.
type Config struct {
	FRED struct {
		APIKey         string `yaml:"api_key"`
		BaseURL        string `yaml:"base_url"`
		DieselSeriesID string `yaml:"diesel_series_id"`
		CrudeSeriesID  string `yaml:"crude_series_id"`
		LookbackDays   int    `yaml:"lookback_days"`
	} `yaml:"fred"`
	Sheet struct {
		Path string `yaml:"path"`
	} `yaml:"sheet"`
	Heartbeat struct {
		Path string `yaml:"path"`
	} `yaml:"heartbeat"`
	Report struct {
		Weekday    string   `yaml:"weekday"`
		Subject    string   `yaml:"subject"`
		Recipients []string `yaml:"recipients"`
		SMTP       struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Username string `yaml:"username"`
			Password string `yaml:"password"`
			From     string `yaml:"from"`
		} `yaml:"smtp"`
	} `yaml:"report"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Schedule struct {
		DailyCron string `yaml:"daily_cron"`
	} `yaml:"schedule"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults.
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

	// Environment variable overrides
	if v := os.Getenv("FRED_API_KEY"); v != "" {
		cfg.FRED.APIKey = v
	}
	if v := os.Getenv("FRED_DIESEL_SERIES"); v != "" {
		cfg.FRED.DieselSeriesID = v
	}
	if v := os.Getenv("FRED_CRUDE_SERIES"); v != "" {
		cfg.FRED.CrudeSeriesID = v
	}
	if v := os.Getenv("SHEET_PATH"); v != "" {
		cfg.Sheet.Path = v
	}
	if v := os.Getenv("HEARTBEAT_PATH"); v != "" {
		cfg.Heartbeat.Path = v
	}
	if v := os.Getenv("REPORT_WEEKDAY"); v != "" {
		cfg.Report.Weekday = v
	}
	if v := os.Getenv("REPORT_RECIPIENTS"); v != "" {
		cfg.Report.Recipients = splitList(v)
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.Report.SMTP.Host = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Report.SMTP.Port = p
		}
	}
	if v := os.Getenv("SMTP_USERNAME"); v != "" {
		cfg.Report.SMTP.Username = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.Report.SMTP.Password = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.FRED.BaseURL == "" {
		cfg.FRED.BaseURL = "https://api.stlouisfed.org/fred"
	}
	if cfg.FRED.DieselSeriesID == "" {
		cfg.FRED.DieselSeriesID = "DDFUELNYH"
	}
	if cfg.FRED.CrudeSeriesID == "" {
		cfg.FRED.CrudeSeriesID = "DCOILBRENTEU"
	}
	if cfg.FRED.LookbackDays == 0 {
		cfg.FRED.LookbackDays = 60
	}
	if cfg.Sheet.Path == "" {
		cfg.Sheet.Path = "data/fuel_prices.xlsx"
	}
	if cfg.Heartbeat.Path == "" {
		cfg.Heartbeat.Path = "runtime/heartbeat.json"
	}
	if cfg.Report.Weekday == "" {
		cfg.Report.Weekday = "FRI"
	}
	if cfg.Report.Subject == "" {
		cfg.Report.Subject = "Weekly fuel price report"
	}
	if cfg.Report.SMTP.Port == 0 {
		cfg.Report.SMTP.Port = 587
	}
	if cfg.Report.SMTP.From == "" {
		cfg.Report.SMTP.From = cfg.Report.SMTP.Username
	}
	if cfg.Schedule.DailyCron == "" {
		cfg.Schedule.DailyCron = "0 0 7 * * *"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.FRED.APIKey == "" {
		return fmt.Errorf("fred.api_key is required")
	}
	if c.FRED.LookbackDays <= 0 {
		return fmt.Errorf("fred.lookback_days must be positive")
	}
	if _, err := heartbeat.ParseWeekday(c.Report.Weekday); err != nil {
		return fmt.Errorf("report.weekday: %w", err)
	}
	if len(c.Report.Recipients) > 0 && c.Report.SMTP.Host == "" {
		return fmt.Errorf("report.smtp.host is required when recipients are configured")
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
