package dispatch

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hyprspaces/hyprspaces/internal/config"
	"github.com/hyprspaces/hyprspaces/internal/paired"
	"github.com/hyprspaces/hyprspaces/internal/util"
)

// Pair issues paired workspace operations for one monitor pair.
type Pair struct {
	cfg    config.Config
	ctl    Control
	logger *util.Logger
}

// NewPair binds cfg to a compositor control. logger may be nil.
func NewPair(cfg config.Config, ctl Control, logger *util.Logger) *Pair {
	return &Pair{cfg: cfg, ctl: ctl, logger: logger}
}

// Config returns the pairing configuration in use.
func (p *Pair) Config() config.Config {
	return p.cfg
}

// FocusMonitorFor returns the monitor that hosts workspace id.
func (p *Pair) FocusMonitorFor(id int) string {
	if paired.OnSecondary(id, p.cfg.PairedOffset) {
		return p.cfg.SecondaryMonitor
	}
	return p.cfg.PrimaryMonitor
}

// Switch selects workspace on both monitors, keeping focus on the monitor
// that currently has it.
func (p *Pair) Switch(ctx context.Context, workspace int) error {
	if workspace < 1 {
		return fmt.Errorf("workspace must be positive, got %d", workspace)
	}
	active, err := p.ctl.ActiveWorkspaceID(ctx)
	if err != nil {
		return fmt.Errorf("query active workspace: %w", err)
	}
	return p.SwitchWithFocus(ctx, workspace, p.FocusMonitorFor(active))
}

// SwitchWithFocus selects workspace on both monitors and focuses focusMonitor.
func (p *Pair) SwitchWithFocus(ctx context.Context, workspace int, focusMonitor string) error {
	return p.send(ctx, "paired switch", PairedSwitch(p.cfg, workspace, focusMonitor))
}

// Cycle moves both monitors to the neighbouring slot.
func (p *Pair) Cycle(ctx context.Context, dir paired.Direction) error {
	active, err := p.ctl.ActiveWorkspaceID(ctx)
	if err != nil {
		return fmt.Errorf("query active workspace: %w", err)
	}
	if active < 1 {
		return fmt.Errorf("active workspace %d is not pairable", active)
	}
	base := paired.Normalize(active, p.cfg.PairedOffset)
	target := paired.CycleTarget(base, p.cfg.PairedOffset, dir, p.cfg.WrapCycling)
	return p.SwitchWithFocus(ctx, target, p.FocusMonitorFor(active))
}

// MoveWindow sends the focused window to workspace on the focused monitor's
// side and switches the pair to it.
func (p *Pair) MoveWindow(ctx context.Context, workspace int) error {
	if workspace < 1 {
		return fmt.Errorf("workspace must be positive, got %d", workspace)
	}
	active, err := p.ctl.ActiveWorkspaceID(ctx)
	if err != nil {
		return fmt.Errorf("query active workspace: %w", err)
	}
	slot := paired.Normalize(workspace, p.cfg.PairedOffset)
	target := slot
	if paired.OnSecondary(active, p.cfg.PairedOffset) {
		target += p.cfg.PairedOffset
	}
	var b Batch
	b.Append(MoveToWorkspaceSilent(strconv.Itoa(target), ""))
	b.Merge(PairedSwitch(p.cfg, slot, p.FocusMonitorFor(active)))
	return p.send(ctx, "paired move-window", b)
}

// Rebalance reassigns every paired workspace to its monitor.
func (p *Pair) Rebalance(ctx context.Context) error {
	return p.send(ctx, "rebalance", Rebalance(p.cfg))
}

// MigrateWindows folds windows on secondary-range workspaces back to their
// slot. It returns the number of windows moved.
func (p *Pair) MigrateWindows(ctx context.Context) (int, error) {
	return p.migrate(ctx, "migrate windows", p.cfg.PairedOffset)
}

// GrabRogueWindows folds windows beyond workspace_count back into range.
func (p *Pair) GrabRogueWindows(ctx context.Context) (int, error) {
	return p.migrate(ctx, "grab rogue windows", p.cfg.WorkspaceCount)
}

func (p *Pair) migrate(ctx context.Context, reason string, modulus int) (int, error) {
	clients, err := p.ctl.Clients(ctx)
	if err != nil {
		return 0, fmt.Errorf("query clients: %w", err)
	}
	moves := MigrationTargets(clients, modulus)
	if len(moves) == 0 {
		return 0, nil
	}
	if err := p.send(ctx, reason, MoveBatch(moves)); err != nil {
		return 0, err
	}
	return len(moves), nil
}

func (p *Pair) send(ctx context.Context, reason string, b Batch) error {
	if b.Empty() {
		return nil
	}
	if err := p.ctl.DispatchBatch(ctx, b); err != nil {
		return fmt.Errorf("%s: %w", reason, err)
	}
	if p.logger != nil {
		p.logger.Debugf("%s dispatched %d commands: %s", reason, b.Len(), b)
	}
	return nil
}
