package state

import (
	"context"
	"strings"
)

// SpecialPrefix marks named workspaces that sit outside the pairing scheme.
const SpecialPrefix = "special:"

// Client describes a Hyprland client window as reported by the compositor.
// Optional attributes are empty when the compositor did not report them.
type Client struct {
	Address       string
	Class         string
	Title         string
	InitialClass  string
	InitialTitle  string
	AppID         string
	PID           int
	WorkspaceID   int
	WorkspaceName string
}

// OnSpecialWorkspace reports whether the client sits on a special workspace.
func (c Client) OnSpecialWorkspace() bool {
	return IsSpecialName(c.WorkspaceName)
}

// Workspace describes a Hyprland workspace.
type Workspace struct {
	ID          int
	Name        string
	MonitorName string
	Windows     int
}

// Monitor describes a connected output.
type Monitor struct {
	ID   int
	Name string
	X    int
}

// IsSpecialName reports whether a workspace name denotes a special workspace.
func IsSpecialName(name string) bool {
	return strings.HasPrefix(name, SpecialPrefix)
}

// World is a point-in-time view of the compositor.
type World struct {
	Clients           []Client
	Workspaces        []Workspace
	Monitors          []Monitor
	ActiveWorkspaceID int
}

// DataSource abstracts the queries required to build a world snapshot.
type DataSource interface {
	ActiveWorkspaceID(ctx context.Context) (int, error)
	Monitors(ctx context.Context) ([]Monitor, error)
	Workspaces(ctx context.Context) ([]Workspace, error)
	Clients(ctx context.Context) ([]Client, error)
}

// NewWorld queries every topic of src. The first failing query aborts.
func NewWorld(ctx context.Context, src DataSource) (*World, error) {
	active, err := src.ActiveWorkspaceID(ctx)
	if err != nil {
		return nil, err
	}
	monitors, err := src.Monitors(ctx)
	if err != nil {
		return nil, err
	}
	workspaces, err := src.Workspaces(ctx)
	if err != nil {
		return nil, err
	}
	clients, err := src.Clients(ctx)
	if err != nil {
		return nil, err
	}
	return &World{
		Clients:           clients,
		Workspaces:        workspaces,
		Monitors:          monitors,
		ActiveWorkspaceID: active,
	}, nil
}

// WorkspaceByID finds workspace by ID.
func (w *World) WorkspaceByID(id int) *Workspace {
	for i := range w.Workspaces {
		if w.Workspaces[i].ID == id {
			return &w.Workspaces[i]
		}
	}
	return nil
}

// FocusedMonitor returns the name of the monitor hosting the active workspace.
func (w *World) FocusedMonitor() string {
	if ws := w.WorkspaceByID(w.ActiveWorkspaceID); ws != nil {
		return ws.MonitorName
	}
	return ""
}

// FindClient scans clients for address.
func FindClient(clients []Client, address string) (Client, bool) {
	for _, c := range clients {
		if c.Address == address {
			return c, true
		}
	}
	return Client{}, false
}
