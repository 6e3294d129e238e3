package state

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fakeSource struct {
	active     int
	monitors   []Monitor
	workspaces []Workspace
	clients    []Client
	clientsErr error
}

func (f fakeSource) ActiveWorkspaceID(context.Context) (int, error)  { return f.active, nil }
func (f fakeSource) Monitors(context.Context) ([]Monitor, error)     { return f.monitors, nil }
func (f fakeSource) Workspaces(context.Context) ([]Workspace, error) { return f.workspaces, nil }
func (f fakeSource) Clients(context.Context) ([]Client, error)       { return f.clients, f.clientsErr }

func TestNewWorldCollectsAllTopics(t *testing.T) {
	src := fakeSource{
		active:     13,
		monitors:   []Monitor{{ID: 0, Name: "DP-1"}, {ID: 1, Name: "HDMI-A-1", X: 1920}},
		workspaces: []Workspace{{ID: 3, MonitorName: "DP-1"}, {ID: 13, MonitorName: "HDMI-A-1", Windows: 1}},
		clients:    []Client{{Address: "0x1", WorkspaceID: 13}},
	}
	world, err := NewWorld(context.Background(), src)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	want := &World{
		Clients:           src.clients,
		Workspaces:        src.workspaces,
		Monitors:          src.monitors,
		ActiveWorkspaceID: 13,
	}
	if diff := cmp.Diff(want, world); diff != "" {
		t.Fatalf("world mismatch (-want +got):\n%s", diff)
	}
	if got := world.FocusedMonitor(); got != "HDMI-A-1" {
		t.Fatalf("FocusedMonitor = %q, want HDMI-A-1", got)
	}
	if _, ok := FindClient(world.Clients, "0x1"); !ok {
		t.Fatalf("FindClient missed 0x1")
	}
	if _, ok := FindClient(world.Clients, "0x2"); ok {
		t.Fatalf("FindClient returned unexpected result")
	}
}

func TestNewWorldPropagatesQueryError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewWorld(context.Background(), fakeSource{clientsErr: boom})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestIsSpecialName(t *testing.T) {
	if !IsSpecialName("special:scratch") {
		t.Fatalf("special:scratch should be special")
	}
	if IsSpecialName("3") || IsSpecialName("") {
		t.Fatalf("numeric and empty names are not special")
	}
}
