package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hyprspaces/hyprspaces/internal/paired"
)

const (
	DefaultPairedOffset      = 10
	DefaultRebalanceDebounce = 500 * time.Millisecond
	DefaultFocusDebounce     = 200 * time.Millisecond
	defaultWrapCycling       = true
	defaultFocusFollow       = true
)

// Config is the monitor pairing document. It is loaded once per command or
// daemon generation and treated as immutable afterwards.
type Config struct {
	PrimaryMonitor   string       `yaml:"primary_monitor"`
	SecondaryMonitor string       `yaml:"secondary_monitor"`
	PairedOffset     int          `yaml:"paired_offset"`
	WorkspaceCount   int          `yaml:"workspace_count"`
	WrapCycling      bool         `yaml:"wrap_cycling"`
	Daemon           DaemonConfig `yaml:"daemon"`
}

// DaemonConfig tunes the event loop.
type DaemonConfig struct {
	RebalanceDebounceMs int    `yaml:"rebalance_debounce_ms"`
	FocusDebounceMs     int    `yaml:"focus_debounce_ms"`
	FocusFollow         bool   `yaml:"focus_follow"`
	ControlSocket       string `yaml:"control_socket"`
}

// UnmarshalYAML distinguishes absent keys from explicit zero values so
// defaults only fill what the user left out.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	type rawDaemon struct {
		RebalanceDebounceMs *int   `yaml:"rebalance_debounce_ms"`
		FocusDebounceMs     *int   `yaml:"focus_debounce_ms"`
		FocusFollow         *bool  `yaml:"focus_follow"`
		ControlSocket       string `yaml:"control_socket"`
	}
	type rawConfig struct {
		PrimaryMonitor   string    `yaml:"primary_monitor"`
		SecondaryMonitor string    `yaml:"secondary_monitor"`
		PairedOffset     *int      `yaml:"paired_offset"`
		WorkspaceCount   *int      `yaml:"workspace_count"`
		WrapCycling      *bool     `yaml:"wrap_cycling"`
		Daemon           rawDaemon `yaml:"daemon"`
	}

	var raw rawConfig
	if err := value.Decode(&raw); err != nil {
		return err
	}

	c.PrimaryMonitor = raw.PrimaryMonitor
	c.SecondaryMonitor = raw.SecondaryMonitor
	c.Daemon.ControlSocket = raw.Daemon.ControlSocket

	c.PairedOffset = DefaultPairedOffset
	if raw.PairedOffset != nil {
		c.PairedOffset = *raw.PairedOffset
	}
	c.WorkspaceCount = c.PairedOffset
	if raw.WorkspaceCount != nil {
		c.WorkspaceCount = *raw.WorkspaceCount
	}
	c.WrapCycling = defaultWrapCycling
	if raw.WrapCycling != nil {
		c.WrapCycling = *raw.WrapCycling
	}
	c.Daemon.RebalanceDebounceMs = int(DefaultRebalanceDebounce / time.Millisecond)
	if raw.Daemon.RebalanceDebounceMs != nil {
		c.Daemon.RebalanceDebounceMs = *raw.Daemon.RebalanceDebounceMs
	}
	c.Daemon.FocusDebounceMs = int(DefaultFocusDebounce / time.Millisecond)
	if raw.Daemon.FocusDebounceMs != nil {
		c.Daemon.FocusDebounceMs = *raw.Daemon.FocusDebounceMs
	}
	c.Daemon.FocusFollow = defaultFocusFollow
	if raw.Daemon.FocusFollow != nil {
		c.Daemon.FocusFollow = *raw.Daemon.FocusFollow
	}
	return nil
}

// RebalanceDebounce is the minimum interval between rebalance batches.
func (d DaemonConfig) RebalanceDebounce() time.Duration {
	return time.Duration(d.RebalanceDebounceMs) * time.Millisecond
}

// FocusDebounce is the window in which repeated switches to one slot collapse.
func (d DaemonConfig) FocusDebounce() time.Duration {
	return time.Duration(d.FocusDebounceMs) * time.Millisecond
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML (or JSON) configuration payload.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate performs basic sanity checks.
func (c *Config) Validate() error {
	if c.PrimaryMonitor == "" {
		return fmt.Errorf("missing required field: primary_monitor")
	}
	if c.SecondaryMonitor == "" {
		return fmt.Errorf("missing required field: secondary_monitor")
	}
	if c.PrimaryMonitor == c.SecondaryMonitor {
		return fmt.Errorf("primary_monitor and secondary_monitor must differ, both are %q", c.PrimaryMonitor)
	}
	if err := paired.CheckOffset(c.PairedOffset); err != nil {
		return fmt.Errorf("paired_offset: %w", err)
	}
	if c.WorkspaceCount < 1 {
		return fmt.Errorf("workspace_count must be at least 1, got %d", c.WorkspaceCount)
	}
	if c.Daemon.RebalanceDebounceMs < 0 {
		return fmt.Errorf("daemon.rebalance_debounce_ms cannot be negative")
	}
	if c.Daemon.FocusDebounceMs < 0 {
		return fmt.Errorf("daemon.focus_debounce_ms cannot be negative")
	}
	return nil
}
