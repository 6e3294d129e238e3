package dispatch

import (
	"fmt"
	"strconv"

	"github.com/hyprspaces/hyprspaces/internal/config"
	"github.com/hyprspaces/hyprspaces/internal/paired"
	"github.com/hyprspaces/hyprspaces/internal/state"
)

// PairedSwitch selects slot workspace on both monitors and leaves focus on
// focusMonitor. The other monitor is handled first so the final focus lands
// where the caller asked.
func PairedSwitch(cfg config.Config, workspace int, focusMonitor string) Batch {
	slot := paired.Normalize(workspace, cfg.PairedOffset)
	mirror := slot + cfg.PairedOffset
	var b Batch
	if focusMonitor == cfg.SecondaryMonitor {
		b.Add("focusmonitor", cfg.PrimaryMonitor)
		b.Add("workspace", strconv.Itoa(slot))
		b.Add("focusmonitor", cfg.SecondaryMonitor)
		b.Add("workspace", strconv.Itoa(mirror))
		return b
	}
	if focusMonitor == "" {
		focusMonitor = cfg.PrimaryMonitor
	}
	b.Add("focusmonitor", cfg.SecondaryMonitor)
	b.Add("workspace", strconv.Itoa(mirror))
	b.Add("focusmonitor", focusMonitor)
	b.Add("workspace", strconv.Itoa(slot))
	return b
}

// Rebalance pins slots 1..offset to the primary monitor and their mirrors to
// the secondary monitor.
func Rebalance(cfg config.Config) Batch {
	var b Batch
	for id := 1; id <= cfg.PairedOffset; id++ {
		b.Add("moveworkspacetomonitor", fmt.Sprintf("%d %s", id, cfg.PrimaryMonitor))
	}
	for id := cfg.PairedOffset + 1; id <= cfg.PairedOffset*2; id++ {
		b.Add("moveworkspacetomonitor", fmt.Sprintf("%d %s", id, cfg.SecondaryMonitor))
	}
	return b
}

// MoveToWorkspaceSilent moves a window without following it. An empty
// address targets the focused window.
func MoveToWorkspaceSilent(target, address string) Command {
	if address == "" {
		return Command{Name: "movetoworkspacesilent", Arg: target}
	}
	return Command{Name: "movetoworkspacesilent", Arg: target + ",address:" + address}
}

// Move is a planned relocation of one window.
type Move struct {
	Address string
	Target  int
}

// MigrationTargets folds every client parked above modulus back onto its slot.
// Special and negative workspaces are left alone.
func MigrationTargets(clients []state.Client, modulus int) []Move {
	var moves []Move
	for _, c := range clients {
		if c.OnSpecialWorkspace() || c.WorkspaceID <= modulus {
			continue
		}
		moves = append(moves, Move{Address: c.Address, Target: paired.Normalize(c.WorkspaceID, modulus)})
	}
	return moves
}

// MoveBatch renders moves as silent relocations.
func MoveBatch(moves []Move) Batch {
	var b Batch
	for _, m := range moves {
		b.Append(MoveToWorkspaceSilent(strconv.Itoa(m.Target), m.Address))
	}
	return b
}
