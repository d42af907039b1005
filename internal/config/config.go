// Package config provides configuration loading for ratingscope.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the ratingscope settings.
type Config struct {
	// Brand is the name pattern of the brand under study.
	Brand string `json:"brand" yaml:"brand"`

	// Competitors are matched in order; the first match wins.
	Competitors []string `json:"competitors" yaml:"competitors"`

	// NationalThreshold is the number of cities a chain must exceed to
	// count as national.
	NationalThreshold int `json:"national_threshold" yaml:"national_threshold"`

	// Window limits the per-year rating distribution.
	Window WindowConfig `json:"window" yaml:"window"`

	// DataDir is the base directory for the database and saved reports.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// DB is the SQLite database path. Defaults to DataDir/ratingscope.db.
	DB string `json:"db" yaml:"db"`

	// ReportDir is where saved reports go. Defaults to DataDir/reports.
	ReportDir string `json:"report_dir" yaml:"report_dir"`

	// WatchDebounce is how long import --watch waits for writes to settle.
	// Zero re-imports on the first event. Files take a duration string
	// ("2s"); JSON also accepts nanoseconds.
	WatchDebounce time.Duration `json:"watch_debounce" yaml:"watch_debounce"`
}

// WindowConfig is an inclusive range of years.
type WindowConfig struct {
	From int `json:"from" yaml:"from"`
	To   int `json:"to" yaml:"to"`
}

// Default values.
const (
	DefaultBrand             = "Subway"
	DefaultNationalThreshold = 50
	DefaultWindowFrom        = 2018
	DefaultWindowTo          = 2021
	DefaultWatchDebounce     = 2 * time.Second
)

// DefaultCompetitors returns the default competitor patterns.
func DefaultCompetitors() []string {
	return []string{"Jimmy John", "Jersey Mike"}
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Brand:             DefaultBrand,
		Competitors:       DefaultCompetitors(),
		NationalThreshold: DefaultNationalThreshold,
		Window: WindowConfig{
			From: DefaultWindowFrom,
			To:   DefaultWindowTo,
		},
		WatchDebounce: DefaultWatchDebounce,
	}
}

// Dir returns the ratingscope config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/ratingscope if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "ratingscope"), nil
}

// Resolve fills derived paths. DataDir defaults to ~/.ratingscope.
func (c *Config) Resolve() error {
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		c.DataDir = filepath.Join(home, ".ratingscope")
	}
	if c.DB == "" {
		c.DB = filepath.Join(c.DataDir, "ratingscope.db")
	}
	if c.ReportDir == "" {
		c.ReportDir = filepath.Join(c.DataDir, "reports")
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Brand) == "" {
		return errors.New("brand must not be empty")
	}
	if c.NationalThreshold < 1 {
		return fmt.Errorf("national_threshold must be at least 1, got %d", c.NationalThreshold)
	}
	if c.Window.From != 0 && c.Window.To != 0 && c.Window.From > c.Window.To {
		return fmt.Errorf("window is inverted: %d > %d", c.Window.From, c.Window.To)
	}
	if c.WatchDebounce < 0 {
		return fmt.Errorf("watch_debounce must not be negative, got %s", c.WatchDebounce)
	}
	return nil
}

// UnmarshalJSON decodes a config, reading watch_debounce as a duration
// string or a number of nanoseconds.
func (c *Config) UnmarshalJSON(data []byte) error {
	type plain Config
	aux := struct {
		*plain
		WatchDebounce json.RawMessage `json:"watch_debounce"`
	}{plain: (*plain)(c)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	raw := aux.WatchDebounce
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid watch_debounce %q: %w", s, err)
		}
		c.WatchDebounce = d
		return nil
	}

	var ns int64
	if err := json.Unmarshal(raw, &ns); err != nil {
		return fmt.Errorf("invalid watch_debounce %s: must be a duration string or nanoseconds", raw)
	}
	c.WatchDebounce = time.Duration(ns)
	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file. Fields absent
// from the file keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv applies RATINGSCOPE_* environment overrides.
func LoadFromEnv(cfg *Config) error {
	if v := os.Getenv("RATINGSCOPE_BRAND"); v != "" {
		cfg.Brand = v
	}
	if v := os.Getenv("RATINGSCOPE_COMPETITORS"); v != "" {
		cfg.Competitors = splitList(v)
	}
	if v := os.Getenv("RATINGSCOPE_NATIONAL_THRESHOLD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RATINGSCOPE_NATIONAL_THRESHOLD %q: %w", v, err)
		}
		cfg.NationalThreshold = n
	}
	if v := os.Getenv("RATINGSCOPE_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("RATINGSCOPE_DB"); v != "" {
		cfg.DB = v
	}
	if v := os.Getenv("RATINGSCOPE_WATCH_DEBOUNCE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid RATINGSCOPE_WATCH_DEBOUNCE %q: %w", v, err)
		}
		cfg.WatchDebounce = d
	}
	return nil
}

// Load builds the effective configuration: defaults, then the config file,
// then a .env file in the working directory, then the environment.
//
// With an empty path the file is {Dir()}/config.yaml and may be missing.
// An explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		dir, err := Dir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate config directory: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}

	if _, err := os.Stat(path); err == nil || explicit {
		loaded, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	if err := LoadFromEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Resolve(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadDotEnv loads variables from path if it exists. Variables already set
// in the environment win.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
