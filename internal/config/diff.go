package config

import (
	"strings"

	"github.com/google/go-cmp/cmp"
)

// Diff describes how curr differs from prev, or "" when they are equal.
func Diff(prev, curr *Config) string {
	if prev == nil || curr == nil {
		return ""
	}
	return cmp.Diff(*prev, *curr)
}

// DiffSerialized returns a line diff between two raw configuration files. It
// is used to show what a rejected edit changed relative to the last good file.
func DiffSerialized(previous, current []byte) string {
	return cmp.Diff(lines(previous), lines(current))
}

func lines(data []byte) []string {
	text := strings.TrimSuffix(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// RequiresRebalance reports whether moving from prev to curr changes which
// workspace belongs on which monitor.
func RequiresRebalance(prev, curr *Config) bool {
	if prev == nil || curr == nil {
		return true
	}
	return prev.PrimaryMonitor != curr.PrimaryMonitor ||
		prev.SecondaryMonitor != curr.SecondaryMonitor ||
		prev.PairedOffset != curr.PairedOffset
}
