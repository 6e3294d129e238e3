package ipc

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// InstanceSignature returns the running Hyprland instance signature.
func InstanceSignature() string {
	return os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")
}

func socketDir() (string, error) {
	sig := InstanceSignature()
	if sig == "" {
		return "", fmt.Errorf("HYPRLAND_INSTANCE_SIGNATURE not set")
	}
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		return "", fmt.Errorf("XDG_RUNTIME_DIR not set")
	}
	return filepath.Join(runtimeDir, "hypr", sig), nil
}

// CommandSocketPath locates the request/reply socket.
func CommandSocketPath() (string, error) {
	dir, err := socketDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ".socket.sock"), nil
}

// EventSocketPath locates the event stream socket.
func EventSocketPath() (string, error) {
	dir, err := socketDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ".socket2.sock"), nil
}

const socketTimeout = 5 * time.Second

// SocketRunner speaks the hyprctl request format directly over the command
// socket. Each request uses a fresh connection; Hyprland closes it after
// replying.
type SocketRunner struct {
	path string
}

// NewSocketRunner resolves the command socket from the environment.
func NewSocketRunner() (*SocketRunner, error) {
	path, err := CommandSocketPath()
	if err != nil {
		return nil, err
	}
	return NewSocketRunnerAt(path), nil
}

// NewSocketRunnerAt uses an explicit socket path.
func NewSocketRunnerAt(path string) *SocketRunner {
	return &SocketRunner{path: path}
}

// Path returns the socket path.
func (r *SocketRunner) Path() string {
	return r.path
}

// Run translates args to a socket request and returns the reply.
func (r *SocketRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	request, err := socketRequest(args)
	if err != nil {
		return nil, err
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", r.path)
	if err != nil {
		return nil, fmt.Errorf("connect command socket: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(socketTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("set socket deadline: %w", err)
	}
	if _, err := io.WriteString(conn, request); err != nil {
		return nil, fmt.Errorf("write %q: %w", request, err)
	}
	reply, err := io.ReadAll(conn)
	if err != nil {
		return nil, fmt.Errorf("read reply to %q: %w", request, err)
	}
	return reply, nil
}

// socketRequest maps hyprctl argv to the socket wire format:
// "-j topic" becomes "j/topic", "--batch cmds" becomes "[[BATCH]]cmds",
// anything else is joined with spaces.
func socketRequest(args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("empty request")
	}
	switch args[0] {
	case "-j":
		if len(args) != 2 {
			return "", fmt.Errorf("json query wants one topic, got %v", args[1:])
		}
		return "j/" + args[1], nil
	case "--batch":
		if len(args) != 2 {
			return "", fmt.Errorf("batch wants one argument, got %v", args[1:])
		}
		return "[[BATCH]]" + args[1], nil
	default:
		return strings.Join(args, " "), nil
	}
}
