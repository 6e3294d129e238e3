package config

import (
	"strings"
	"testing"
)

func TestDiffSerialized(t *testing.T) {
	diff := DiffSerialized([]byte("paired_offset: 10\nprimary_monitor: DP-1\n"), []byte("paired_offset: 0\nprimary_monitor: DP-1\n"))
	if !strings.Contains(diff, "paired_offset: 10") || !strings.Contains(diff, "paired_offset: 0") {
		t.Fatalf("diff should show both lines, got %s", diff)
	}
	if DiffSerialized([]byte("a\n"), []byte("a\r\n")) != "" {
		t.Fatalf("line ending differences should not produce a diff")
	}
}

func TestRequiresRebalance(t *testing.T) {
	base := &Config{PrimaryMonitor: "DP-1", SecondaryMonitor: "HDMI-A-1", PairedOffset: 10}
	same := *base
	same.WrapCycling = true
	if RequiresRebalance(base, &same) {
		t.Fatalf("wrap toggle should not require rebalance")
	}
	if Diff(base, &same) == "" {
		t.Fatalf("expected a diff for wrap toggle")
	}
	moved := *base
	moved.PairedOffset = 5
	if !RequiresRebalance(base, &moved) {
		t.Fatalf("offset change should require rebalance")
	}
}
