package ipc

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hyprspaces/hyprspaces/internal/dispatch"
)

// serveOnce answers each accepted connection with the next reply and records
// the request it received.
func serveOnce(t *testing.T, listener net.Listener, replies ...string) <-chan string {
	t.Helper()
	requests := make(chan string, len(replies))
	go func() {
		defer close(requests)
		for _, reply := range replies {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			buf := make([]byte, 4096)
			n, _ := conn.Read(buf)
			requests <- string(buf[:n])
			conn.Write([]byte(reply))
			conn.Close()
		}
	}()
	return requests
}

func listenCommandSocket(t *testing.T) (string, net.Listener) {
	t.Helper()
	runtimeDir := t.TempDir()
	sig := "instance"
	setEnv(t, "XDG_RUNTIME_DIR", runtimeDir)
	setEnv(t, "HYPRLAND_INSTANCE_SIGNATURE", sig)

	socketPath := filepath.Join(runtimeDir, "hypr", sig, ".socket.sock")
	if err := os.MkdirAll(filepath.Dir(socketPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { listener.Close() })
	return socketPath, listener
}

func TestSocketPathsFollowEnvironment(t *testing.T) {
	setEnv(t, "XDG_RUNTIME_DIR", "/run/user/1000")
	setEnv(t, "HYPRLAND_INSTANCE_SIGNATURE", "abc")

	cmdPath, err := CommandSocketPath()
	if err != nil {
		t.Fatalf("CommandSocketPath: %v", err)
	}
	if cmdPath != "/run/user/1000/hypr/abc/.socket.sock" {
		t.Fatalf("unexpected command socket %q", cmdPath)
	}
	evPath, err := EventSocketPath()
	if err != nil {
		t.Fatalf("EventSocketPath: %v", err)
	}
	if evPath != "/run/user/1000/hypr/abc/.socket2.sock" {
		t.Fatalf("unexpected event socket %q", evPath)
	}

	setEnv(t, "HYPRLAND_INSTANCE_SIGNATURE", "")
	if _, err := EventSocketPath(); err == nil {
		t.Fatalf("expected error without instance signature")
	}
}

func TestSocketRequestTranslation(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"-j", "clients"}, "j/clients"},
		{[]string{"--batch", "dispatch workspace 1 ; dispatch workspace 11"}, "[[BATCH]]dispatch workspace 1 ; dispatch workspace 11"},
		{[]string{"dispatch", "moveworkspacetomonitor", "1 DP-1"}, "dispatch moveworkspacetomonitor 1 DP-1"},
		{[]string{"reload"}, "reload"},
	}
	for _, tt := range tests {
		got, err := socketRequest(tt.args)
		if err != nil {
			t.Fatalf("socketRequest(%v): %v", tt.args, err)
		}
		if got != tt.want {
			t.Errorf("socketRequest(%v) = %q, want %q", tt.args, got, tt.want)
		}
	}
	if _, err := socketRequest(nil); err == nil {
		t.Fatalf("expected error for empty request")
	}
	if _, err := socketRequest([]string{"-j"}); err == nil {
		t.Fatalf("expected error for query without topic")
	}
}

func TestSocketRunnerDrivesClient(t *testing.T) {
	socketPath, listener := listenCommandSocket(t)
	requests := serveOnce(t, listener,
		`[{"address":"0x1","class":"kitty","title":"zsh","initialClass":"kitty","initialTitle":"kitty","appId":"","pid":42,"workspace":{"id":3,"name":"3"}}]`,
		"ok",
	)

	runner, err := NewSocketRunner()
	if err != nil {
		t.Fatalf("NewSocketRunner: %v", err)
	}
	if runner.Path() != socketPath {
		t.Fatalf("unexpected socket path: got %q want %q", runner.Path(), socketPath)
	}
	client := NewClient(runner)

	clients, err := client.Clients(context.Background())
	if err != nil {
		t.Fatalf("Clients: %v", err)
	}
	if len(clients) != 1 || clients[0].PID != 42 || clients[0].WorkspaceID != 3 || clients[0].InitialClass != "kitty" {
		t.Fatalf("unexpected clients %+v", clients)
	}

	var b dispatch.Batch
	b.Add("workspace", "1")
	b.Add("workspace", "11")
	if err := client.DispatchBatch(context.Background(), b); err != nil {
		t.Fatalf("DispatchBatch: %v", err)
	}

	var got []string
	for req := range requests {
		got = append(got, req)
	}
	want := []string{"j/clients", "[[BATCH]]dispatch workspace 1 ; dispatch workspace 11"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("requests mismatch (-want +got):\n%s", diff)
	}
}

func TestSocketRunnerRejectedReply(t *testing.T) {
	_, listener := listenCommandSocket(t)
	serveOnce(t, listener, "Invalid dispatcher")

	runner, err := NewSocketRunner()
	if err != nil {
		t.Fatalf("NewSocketRunner: %v", err)
	}
	err = NewClient(runner).Dispatch(context.Background(), dispatch.Command{Name: "bogus"})
	if !errors.Is(err, ErrCommandFailed) {
		t.Fatalf("expected ErrCommandFailed, got %v", err)
	}
}

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	original, had := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("setenv %s: %v", key, err)
	}
	t.Cleanup(func() {
		if !had {
			os.Unsetenv(key)
			return
		}
		os.Setenv(key, original)
	})
}
