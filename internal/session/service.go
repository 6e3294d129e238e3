package session

import (
	"context"
	"fmt"
	"time"

	"github.com/hyprspaces/hyprspaces/internal/config"
	"github.com/hyprspaces/hyprspaces/internal/dispatch"
	"github.com/hyprspaces/hyprspaces/internal/state"
	"github.com/hyprspaces/hyprspaces/internal/util"
)

// Service saves and restores sessions against a live compositor.
type Service struct {
	cfg       config.Config
	ctl       dispatch.Control
	signature string
	logger    *util.Logger
	now       func() time.Time
}

// NewService binds cfg and ctl. signature identifies the running instance.
func NewService(cfg config.Config, ctl dispatch.Control, signature string, logger *util.Logger) *Service {
	return &Service{cfg: cfg, ctl: ctl, signature: signature, logger: logger, now: time.Now}
}

// Save captures the current state and writes it to path.
func (s *Service) Save(ctx context.Context, path string) (Snapshot, error) {
	world, err := state.NewWorld(ctx, s.ctl)
	if err != nil {
		return Snapshot{}, fmt.Errorf("capture session: %w", err)
	}
	snap := Capture(world, s.cfg.PairedOffset, s.cfg.WorkspaceCount, s.signature, s.now())
	if err := Save(path, snap); err != nil {
		return Snapshot{}, err
	}
	s.logger.Infof("saved %d windows to %s", len(snap.Clients), path)
	return snap, nil
}

// Restore loads path and sends the corrective moves as one batch. It
// returns the batch it sent, which is empty when nothing had to move.
func (s *Service) Restore(ctx context.Context, path string, mode RestoreMode) (dispatch.Batch, error) {
	snap, err := Load(path)
	if err != nil {
		return dispatch.Batch{}, err
	}
	live, err := s.ctl.Clients(ctx)
	if err != nil {
		return dispatch.Batch{}, fmt.Errorf("list clients: %w", err)
	}
	resolved := ResolveMode(mode, snap.Signature, s.signature)
	b := RestoreBatch(snap, resolved, s.signature, live, s.cfg.PairedOffset)
	s.logger.Debugf("restore mode %s resolved to %s, %d moves", mode, resolved, b.Len())
	if b.Empty() {
		return b, nil
	}
	if err := s.ctl.DispatchBatch(ctx, b); err != nil {
		return dispatch.Batch{}, fmt.Errorf("restore session: %w", err)
	}
	s.logger.Infof("restored %d windows from %s", b.Len(), path)
	return b, nil
}
