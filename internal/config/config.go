// Package config loads boardpoints configuration from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"boardpoints/internal/board"
	"boardpoints/internal/browser"
	"boardpoints/internal/logging"

	"gopkg.in/yaml.v3"
)

// DefaultInterval is the fixed delay between ticks.
const DefaultInterval = 1500 * time.Millisecond

// Config holds all boardpoints configuration.
type Config struct {
	// Interval is the delay between the end of one tick and the start of the next.
	Interval string `yaml:"interval"`

	Selectors board.Selectors `yaml:"selectors"`

	Browser browser.Config `yaml:"browser"`

	Watch WatchConfig `yaml:"watch"`

	Logging logging.Config `yaml:"logging"`
}

// WatchConfig configures file watching.
type WatchConfig struct {
	// Debounce is how long a file must be quiet before it is re-annotated.
	Debounce string `yaml:"debounce"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Interval:  "1.5s",
		Selectors: board.DefaultSelectors(),
		Browser:   browser.DefaultConfig(),
		Watch: WatchConfig{
			Debounce: "500ms",
		},
		Logging: logging.Config{
			Level: "info",
		},
	}
}

// DefaultPath returns the config path inside a workspace.
func DefaultPath(workspace string) string {
	return filepath.Join(workspace, ".boardpoints", "config.yaml")
}

// Load loads configuration from a YAML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("BOARDPOINTS_DEBUGGER_URL"); url != "" {
		c.Browser.DebuggerURL = url
	}
	if interval := os.Getenv("BOARDPOINTS_INTERVAL"); interval != "" {
		c.Interval = interval
	}
	if v := os.Getenv("BOARDPOINTS_HEADLESS"); v != "" {
		if headless, err := strconv.ParseBool(v); err == nil {
			c.Browser.Headless = headless
		}
	}
}

// GetInterval returns the tick interval as a duration.
func (c *Config) GetInterval() time.Duration {
	d, err := time.ParseDuration(c.Interval)
	if err != nil || d <= 0 {
		return DefaultInterval
	}
	return d
}

// GetDebounce returns the watch debounce as a duration.
func (c *Config) GetDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d < 0 {
		return 500 * time.Millisecond
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	d, err := time.ParseDuration(c.Interval)
	if err != nil {
		return fmt.Errorf("invalid interval %q: %w", c.Interval, err)
	}
	if d <= 0 {
		return fmt.Errorf("interval must be positive, got %s", d)
	}
	if c.Watch.Debounce != "" {
		if _, err := time.ParseDuration(c.Watch.Debounce); err != nil {
			return fmt.Errorf("invalid watch debounce %q: %w", c.Watch.Debounce, err)
		}
	}
	return c.Selectors.Validate()
}
