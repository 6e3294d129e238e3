// Package session captures window placement to a JSON file and computes the
// moves needed to put windows back, either in the same Hyprland instance or in
// a fresh one.
package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/natefinch/atomic"

	"github.com/hyprspaces/hyprspaces/internal/paired"
	"github.com/hyprspaces/hyprspaces/internal/state"
)

// Version is the snapshot format written by Save and accepted by Load.
const Version = 1

// ErrUnsupportedVersion is returned by Load for snapshots of another format.
var ErrUnsupportedVersion = errors.New("unsupported session version")

// Snapshot is an immutable record of monitors, workspaces and windows.
type Snapshot struct {
	Version        int                 `json:"version"`
	CreatedAt      int64               `json:"created_at"`
	Signature      string              `json:"signature,omitempty"`
	PairedOffset   int                 `json:"paired_offset"`
	WorkspaceCount int                 `json:"workspace_count"`
	Focus          Focus               `json:"focus"`
	Monitors       []SnapshotMonitor   `json:"monitors"`
	Workspaces     []SnapshotWorkspace `json:"workspaces"`
	Clients        []SnapshotClient    `json:"clients"`
}

// Focus records where focus was at capture time.
type Focus struct {
	Monitor     string `json:"monitor,omitempty"`
	WorkspaceID int    `json:"workspace_id"`
}

// SnapshotMonitor is a connected output at capture time.
type SnapshotMonitor struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// SnapshotWorkspace records which monitor hosted a workspace.
type SnapshotWorkspace struct {
	ID      int    `json:"id"`
	Name    string `json:"name,omitempty"`
	Monitor string `json:"monitor,omitempty"`
	Windows int    `json:"windows"`
}

// SnapshotClient is a window's identity plus its placement. PairedSlot is
// the normalized slot, or the raw id for special workspaces.
type SnapshotClient struct {
	Address       string `json:"address"`
	Class         string `json:"class,omitempty"`
	Title         string `json:"title,omitempty"`
	InitialClass  string `json:"initial_class,omitempty"`
	InitialTitle  string `json:"initial_title,omitempty"`
	AppID         string `json:"app_id,omitempty"`
	PID           int    `json:"pid,omitempty"`
	WorkspaceID   int    `json:"workspace_id"`
	WorkspaceName string `json:"workspace_name,omitempty"`
	PairedSlot    int    `json:"paired_slot"`
}

func (c SnapshotClient) onSpecialWorkspace() bool {
	return state.IsSpecialName(c.WorkspaceName)
}

// target is the movetoworkspacesilent destination for this client.
func (c SnapshotClient) target() string {
	if c.onSpecialWorkspace() {
		return c.WorkspaceName
	}
	return strconv.Itoa(c.WorkspaceID)
}

// Capture builds a snapshot from world. It does not touch the compositor.
func Capture(world *state.World, offset, workspaceCount int, signature string, now time.Time) Snapshot {
	snap := Snapshot{
		Version:        Version,
		CreatedAt:      now.Unix(),
		Signature:      signature,
		PairedOffset:   offset,
		WorkspaceCount: workspaceCount,
		Focus:          Focus{WorkspaceID: world.ActiveWorkspaceID, Monitor: world.FocusedMonitor()},
		Monitors:       make([]SnapshotMonitor, 0, len(world.Monitors)),
		Workspaces:     make([]SnapshotWorkspace, 0, len(world.Workspaces)),
		Clients:        make([]SnapshotClient, 0, len(world.Clients)),
	}
	for _, m := range world.Monitors {
		snap.Monitors = append(snap.Monitors, SnapshotMonitor{ID: m.ID, Name: m.Name})
	}
	for _, ws := range world.Workspaces {
		snap.Workspaces = append(snap.Workspaces, SnapshotWorkspace{
			ID:      ws.ID,
			Name:    ws.Name,
			Monitor: ws.MonitorName,
			Windows: ws.Windows,
		})
	}
	for _, c := range world.Clients {
		slot := c.WorkspaceID
		if !c.OnSpecialWorkspace() {
			slot = paired.Normalize(c.WorkspaceID, offset)
		}
		snap.Clients = append(snap.Clients, SnapshotClient{
			Address:       c.Address,
			Class:         c.Class,
			Title:         c.Title,
			InitialClass:  c.InitialClass,
			InitialTitle:  c.InitialTitle,
			AppID:         c.AppID,
			PID:           c.PID,
			WorkspaceID:   c.WorkspaceID,
			WorkspaceName: c.WorkspaceName,
			PairedSlot:    slot,
		})
	}
	return snap
}

// Save writes snap as indented JSON, creating parent directories. The file
// is replaced atomically.
func Save(path string, snap Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(append(data, '\n'))); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Load reads a snapshot and rejects other format versions.
func Load(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read session: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode session %s: %w", path, err)
	}
	if snap.Version != Version {
		return Snapshot{}, fmt.Errorf("%w: %d (want %d)", ErrUnsupportedVersion, snap.Version, Version)
	}
	return snap, nil
}
