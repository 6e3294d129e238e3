package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/hyprspaces/hyprspaces/internal/config"
	"github.com/hyprspaces/hyprspaces/internal/dispatch"
	"github.com/hyprspaces/hyprspaces/internal/state"
)

type fakeControl struct {
	active     int
	monitors   []state.Monitor
	workspaces []state.Workspace
	clients    []state.Client
	batches    []string
	batchErr   error
}

func (f *fakeControl) ActiveWorkspaceID(context.Context) (int, error) { return f.active, nil }
func (f *fakeControl) Monitors(context.Context) ([]state.Monitor, error) {
	return f.monitors, nil
}
func (f *fakeControl) Workspaces(context.Context) ([]state.Workspace, error) {
	return f.workspaces, nil
}
func (f *fakeControl) Clients(context.Context) ([]state.Client, error) { return f.clients, nil }
func (f *fakeControl) Dispatch(context.Context, dispatch.Command) error { return nil }
func (f *fakeControl) DispatchBatch(_ context.Context, b dispatch.Batch) error {
	f.batches = append(f.batches, b.String())
	return f.batchErr
}

func testConfig() config.Config {
	return config.Config{
		PrimaryMonitor:   "DP-1",
		SecondaryMonitor: "HDMI-A-1",
		PairedOffset:     10,
		WorkspaceCount:   10,
		WrapCycling:      true,
	}
}

func TestServiceSaveThenRestoreSameInstance(t *testing.T) {
	ctl := &fakeControl{
		active:     2,
		monitors:   []state.Monitor{{ID: 0, Name: "DP-1"}},
		workspaces: []state.Workspace{{ID: 2, Name: "2", MonitorName: "DP-1", Windows: 1}},
		clients:    []state.Client{{Address: "0xabc", Class: "kitty", WorkspaceID: 2, WorkspaceName: "2"}},
	}
	svc := NewService(testConfig(), ctl, "sig", nil)
	svc.now = func() time.Time { return time.Unix(100, 0) }
	path := filepath.Join(t.TempDir(), "sessions", "latest.json")

	snap, err := svc.Save(context.Background(), path)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if snap.CreatedAt != 100 || snap.Focus.Monitor != "DP-1" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	ctl.clients[0].WorkspaceID = 1
	ctl.clients[0].WorkspaceName = "1"
	b, err := svc.Restore(context.Background(), path, Auto)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	want := []string{"dispatch movetoworkspacesilent 2,address:0xabc"}
	if diff := cmp.Diff(want, ctl.batches); diff != "" {
		t.Fatalf("batches mismatch (-want +got):\n%s", diff)
	}
	if b.Len() != 1 {
		t.Fatalf("expected one move, got %d", b.Len())
	}
}

func TestServiceRestoreNothingToDo(t *testing.T) {
	ctl := &fakeControl{clients: []state.Client{{Address: "0xabc", WorkspaceID: 2}}}
	svc := NewService(testConfig(), ctl, "sig", nil)
	path := filepath.Join(t.TempDir(), "latest.json")
	if err := Save(path, snapshotWith("sig", SnapshotClient{Address: "0xabc", WorkspaceID: 2, PairedSlot: 2})); err != nil {
		t.Fatalf("Save: %v", err)
	}

	b, err := svc.Restore(context.Background(), path, Auto)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if !b.Empty() || len(ctl.batches) != 0 {
		t.Fatalf("expected no dispatch, got %v", ctl.batches)
	}
}

func TestServiceRestoreErrors(t *testing.T) {
	ctl := &fakeControl{
		clients:  []state.Client{{Address: "0xabc", WorkspaceID: 1}},
		batchErr: errors.New("rejected"),
	}
	svc := NewService(testConfig(), ctl, "sig", nil)
	dir := t.TempDir()

	if _, err := svc.Restore(context.Background(), filepath.Join(dir, "missing.json"), Auto); err == nil {
		t.Fatalf("expected error for missing session")
	}

	path := filepath.Join(dir, "latest.json")
	if err := Save(path, snapshotWith("sig", SnapshotClient{Address: "0xabc", WorkspaceID: 2, PairedSlot: 2})); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := svc.Restore(context.Background(), path, Same); err == nil {
		t.Fatalf("expected dispatch failure to propagate")
	}
}
