package ipc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/hyprspaces/hyprspaces/internal/dispatch"
	"github.com/hyprspaces/hyprspaces/internal/state"
	"github.com/hyprspaces/hyprspaces/internal/util"
)

// ErrCommandFailed marks a non-zero exit or a rejected reply from Hyprland.
var ErrCommandFailed = errors.New("hyprland command failed")

// Runner executes one hyprctl-style request and returns the raw reply.
type Runner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// ExecRunner shells out to the hyprctl binary.
type ExecRunner struct {
	Binary string
}

// Run invokes the binary with args.
func (r ExecRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	binary := r.Binary
	if binary == "" {
		binary = "hyprctl"
	}
	cmd := exec.CommandContext(ctx, binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v: %s", ErrCommandFailed, binary, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// Client is the compositor control interface: JSON queries plus dispatch,
// batch, and reload commands over a Runner.
type Client struct {
	runner Runner
}

// NewClient wraps runner.
func NewClient(runner Runner) *Client {
	return &Client{runner: runner}
}

func (c *Client) queryJSON(ctx context.Context, topic string, out any) error {
	data, err := c.runner.Run(ctx, "-j", topic)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", topic, err)
	}
	return nil
}

func (c *Client) command(ctx context.Context, args ...string) error {
	reply, err := c.runner.Run(ctx, args...)
	if err != nil {
		return err
	}
	return checkReply(args, reply)
}

// checkReply accepts replies made only of "ok" tokens, which is what Hyprland
// answers for each accepted command.
func checkReply(args []string, reply []byte) error {
	for _, field := range strings.Fields(string(reply)) {
		if field != "ok" {
			return fmt.Errorf("%w: %s: %s", ErrCommandFailed, strings.Join(args, " "), strings.TrimSpace(string(reply)))
		}
	}
	return nil
}

// ActiveWorkspaceID returns the focused workspace id.
func (c *Client) ActiveWorkspaceID(ctx context.Context) (int, error) {
	var payload struct {
		ID int `json:"id"`
	}
	if err := c.queryJSON(ctx, "activeworkspace", &payload); err != nil {
		return 0, err
	}
	return payload.ID, nil
}

// Monitors returns connected monitors.
func (c *Client) Monitors(ctx context.Context) ([]state.Monitor, error) {
	var raw []struct {
		ID   int     `json:"id"`
		Name string  `json:"name"`
		X    float64 `json:"x"`
	}
	if err := c.queryJSON(ctx, "monitors", &raw); err != nil {
		return nil, err
	}
	monitors := make([]state.Monitor, 0, len(raw))
	for _, m := range raw {
		monitors = append(monitors, state.Monitor{ID: m.ID, Name: m.Name, X: int(m.X)})
	}
	return monitors, nil
}

// Workspaces returns all workspaces.
func (c *Client) Workspaces(ctx context.Context) ([]state.Workspace, error) {
	var raw []struct {
		ID      int    `json:"id"`
		Name    string `json:"name"`
		Monitor string `json:"monitor"`
		Windows int    `json:"windows"`
	}
	if err := c.queryJSON(ctx, "workspaces", &raw); err != nil {
		return nil, err
	}
	workspaces := make([]state.Workspace, 0, len(raw))
	for _, ws := range raw {
		workspaces = append(workspaces, state.Workspace{
			ID:          ws.ID,
			Name:        ws.Name,
			MonitorName: ws.Monitor,
			Windows:     ws.Windows,
		})
	}
	return workspaces, nil
}

// Clients returns all mapped windows.
func (c *Client) Clients(ctx context.Context) ([]state.Client, error) {
	var raw []struct {
		Address   string `json:"address"`
		Workspace struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		} `json:"workspace"`
		Class        string `json:"class"`
		Title        string `json:"title"`
		InitialClass string `json:"initialClass"`
		InitialTitle string `json:"initialTitle"`
		AppID        string `json:"appId"`
		PID          int    `json:"pid"`
	}
	if err := c.queryJSON(ctx, "clients", &raw); err != nil {
		return nil, err
	}
	clients := make([]state.Client, 0, len(raw))
	for _, cl := range raw {
		clients = append(clients, state.Client{
			Address:       cl.Address,
			Class:         cl.Class,
			Title:         cl.Title,
			InitialClass:  cl.InitialClass,
			InitialTitle:  cl.InitialTitle,
			AppID:         cl.AppID,
			PID:           cl.PID,
			WorkspaceID:   cl.Workspace.ID,
			WorkspaceName: cl.Workspace.Name,
		})
	}
	return clients, nil
}

// Dispatch runs a single dispatcher.
func (c *Client) Dispatch(ctx context.Context, cmd dispatch.Command) error {
	args := []string{"dispatch", cmd.Name}
	if cmd.Arg != "" {
		args = append(args, cmd.Arg)
	}
	return c.command(ctx, args...)
}

// DispatchBatch sends every command of b in one hyprctl --batch call.
func (c *Client) DispatchBatch(ctx context.Context, b dispatch.Batch) error {
	if b.Empty() {
		return dispatch.ErrEmptyBatch
	}
	return c.command(ctx, "--batch", b.String())
}

// Reload asks Hyprland to re-read its configuration.
func (c *Client) Reload(ctx context.Context) error {
	return c.command(ctx, "reload")
}

// Backend selects how hyprspaces talks to Hyprland.
type Backend string

const (
	// BackendHyprctl shells out to hyprctl and reads events with a blocking reader.
	BackendHyprctl Backend = "hyprctl"
	// BackendNative talks to the Hyprland sockets in-process and pushes events
	// from a background reader.
	BackendNative Backend = "native"
)

// ParseBackend validates a backend name.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case BackendHyprctl, BackendNative:
		return b, nil
	default:
		return "", fmt.Errorf("unknown ipc backend %q (want hyprctl or native)", s)
	}
}

// New returns a client for the requested backend. The native backend falls
// back to hyprctl when the command socket cannot be located.
func New(logger *util.Logger, requested Backend) (*Client, Backend, error) {
	switch requested {
	case BackendNative:
		runner, err := NewSocketRunner()
		if err != nil {
			if logger != nil {
				logger.Warnf("falling back to hyprctl: %v", err)
			}
			return NewClient(ExecRunner{}), BackendHyprctl, nil
		}
		if logger != nil {
			logger.Debugf("using command socket at %s", runner.Path())
		}
		return NewClient(runner), BackendNative, nil
	case BackendHyprctl:
		return NewClient(ExecRunner{}), BackendHyprctl, nil
	default:
		return nil, "", fmt.Errorf("unknown ipc backend %q", requested)
	}
}

var _ dispatch.Control = (*Client)(nil)
