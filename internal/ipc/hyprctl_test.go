package ipc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hyprspaces/hyprspaces/internal/dispatch"
	"github.com/hyprspaces/hyprspaces/internal/state"
)

type fakeRunner struct {
	replies map[string]string
	errs    map[string]error
	calls   [][]string
}

func (f *fakeRunner) Run(_ context.Context, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string(nil), args...))
	key := strings.Join(args, " ")
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	if reply, ok := f.replies[key]; ok {
		return []byte(reply), nil
	}
	return []byte("ok"), nil
}

func TestClientDecodesQueries(t *testing.T) {
	runner := &fakeRunner{replies: map[string]string{
		"-j activeworkspace": `{"id":12,"name":"12","monitor":"HDMI-A-1"}`,
		"-j monitors":        `[{"id":0,"name":"DP-1","x":0,"focused":true},{"id":1,"name":"HDMI-A-1","x":2560}]`,
		"-j workspaces":      `[{"id":1,"name":"1","monitor":"DP-1","windows":2},{"id":-98,"name":"special:scratch","monitor":"DP-1","windows":1}]`,
		"-j clients":         `[{"address":"0xabc","class":"firefox","title":"Docs","initialClass":"firefox","initialTitle":"Mozilla Firefox","appId":"org.mozilla.firefox","pid":7,"workspace":{"id":-98,"name":"special:scratch"}}]`,
	}}
	client := NewClient(runner)
	ctx := context.Background()

	active, err := client.ActiveWorkspaceID(ctx)
	if err != nil || active != 12 {
		t.Fatalf("ActiveWorkspaceID = %d, %v", active, err)
	}

	monitors, err := client.Monitors(ctx)
	if err != nil {
		t.Fatalf("Monitors: %v", err)
	}
	wantMonitors := []state.Monitor{{ID: 0, Name: "DP-1", X: 0}, {ID: 1, Name: "HDMI-A-1", X: 2560}}
	if diff := cmp.Diff(wantMonitors, monitors); diff != "" {
		t.Fatalf("monitors mismatch (-want +got):\n%s", diff)
	}

	workspaces, err := client.Workspaces(ctx)
	if err != nil {
		t.Fatalf("Workspaces: %v", err)
	}
	wantWorkspaces := []state.Workspace{
		{ID: 1, Name: "1", MonitorName: "DP-1", Windows: 2},
		{ID: -98, Name: "special:scratch", MonitorName: "DP-1", Windows: 1},
	}
	if diff := cmp.Diff(wantWorkspaces, workspaces); diff != "" {
		t.Fatalf("workspaces mismatch (-want +got):\n%s", diff)
	}

	clients, err := client.Clients(ctx)
	if err != nil {
		t.Fatalf("Clients: %v", err)
	}
	wantClients := []state.Client{{
		Address:       "0xabc",
		Class:         "firefox",
		Title:         "Docs",
		InitialClass:  "firefox",
		InitialTitle:  "Mozilla Firefox",
		AppID:         "org.mozilla.firefox",
		PID:           7,
		WorkspaceID:   -98,
		WorkspaceName: "special:scratch",
	}}
	if diff := cmp.Diff(wantClients, clients); diff != "" {
		t.Fatalf("clients mismatch (-want +got):\n%s", diff)
	}
}

func TestClientDecodeError(t *testing.T) {
	runner := &fakeRunner{replies: map[string]string{"-j clients": "not json"}}
	if _, err := NewClient(runner).Clients(context.Background()); err == nil || !strings.Contains(err.Error(), "decode clients") {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestClientCommands(t *testing.T) {
	runner := &fakeRunner{}
	client := NewClient(runner)
	ctx := context.Background()

	if err := client.Dispatch(ctx, dispatch.Command{Name: "workspace", Arg: "3"}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	var b dispatch.Batch
	b.Add("focusmonitor", "DP-1")
	b.Add("workspace", "3")
	if err := client.DispatchBatch(ctx, b); err != nil {
		t.Fatalf("DispatchBatch: %v", err)
	}
	if err := client.Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if err := client.DispatchBatch(ctx, dispatch.Batch{}); !errors.Is(err, dispatch.ErrEmptyBatch) {
		t.Fatalf("expected ErrEmptyBatch, got %v", err)
	}

	want := [][]string{
		{"dispatch", "workspace", "3"},
		{"--batch", "dispatch focusmonitor DP-1 ; dispatch workspace 3"},
		{"reload"},
	}
	if diff := cmp.Diff(want, runner.calls); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestClientCommandFailures(t *testing.T) {
	failure := fmt.Errorf("%w: exit status 1", ErrCommandFailed)
	runner := &fakeRunner{
		replies: map[string]string{"dispatch bogus": "Invalid dispatcher"},
		errs:    map[string]error{"reload": failure},
	}
	client := NewClient(runner)
	if err := client.Dispatch(context.Background(), dispatch.Command{Name: "bogus"}); !errors.Is(err, ErrCommandFailed) {
		t.Fatalf("expected rejected reply to fail, got %v", err)
	}
	if err := client.Reload(context.Background()); !errors.Is(err, ErrCommandFailed) {
		t.Fatalf("expected runner failure, got %v", err)
	}
}

func TestCheckReplyAcceptsBatchOKs(t *testing.T) {
	if err := checkReply([]string{"--batch", "x"}, []byte("ok\n\nok\n")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := checkReply([]string{"reload"}, nil); err != nil {
		t.Fatalf("empty reply should pass: %v", err)
	}
}

func TestParseBackend(t *testing.T) {
	for in, want := range map[string]Backend{"hyprctl": BackendHyprctl, " Native ": BackendNative} {
		got, err := ParseBackend(in)
		if err != nil || got != want {
			t.Fatalf("ParseBackend(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseBackend("dbus"); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestNewFallsBackWithoutSocket(t *testing.T) {
	setEnv(t, "HYPRLAND_INSTANCE_SIGNATURE", "")
	client, backend, err := New(nil, BackendNative)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if client == nil || backend != BackendHyprctl {
		t.Fatalf("expected hyprctl fallback, got %q", backend)
	}
}
