package config

import (
	"errors"
	"os"
	"path/filepath"
)

const appDir = "hyprspaces"

// Paths holds the on-disk locations used by hyprspaces.
type Paths struct {
	BaseDir    string
	ConfigPath string
}

// ConfigDir returns $XDG_CONFIG_HOME, falling back to ~/.config.
func ConfigDir(home, xdgConfig string) string {
	if xdgConfig != "" {
		return xdgConfig
	}
	return filepath.Join(home, ".config")
}

// ResolvePaths builds Paths for the given home and XDG config directory. The
// YAML file wins; a legacy paired.json is used when it is the only one present.
func ResolvePaths(home, xdgConfig string) Paths {
	base := filepath.Join(ConfigDir(home, xdgConfig), appDir)
	cfgPath := filepath.Join(base, "paired.yaml")
	if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {
		legacy := filepath.Join(base, "paired.json")
		if _, err := os.Stat(legacy); err == nil {
			cfgPath = legacy
		}
	}
	return Paths{BaseDir: base, ConfigPath: cfgPath}
}

// DefaultPaths resolves Paths from the process environment.
func DefaultPaths() (Paths, error) {
	home := os.Getenv("HOME")
	xdg := os.Getenv("XDG_CONFIG_HOME")
	if home == "" && xdg == "" {
		return Paths{}, errors.New("neither HOME nor XDG_CONFIG_HOME is set")
	}
	return ResolvePaths(home, xdg), nil
}

// SessionPath returns override when set, else the default snapshot location.
func (p Paths) SessionPath(override string) string {
	if override != "" {
		return override
	}
	return filepath.Join(p.BaseDir, "sessions", "latest.json")
}

// PIDPath is where the running daemon records its pid.
func (p Paths) PIDPath() string {
	return filepath.Join(p.BaseDir, "daemon.pid")
}
