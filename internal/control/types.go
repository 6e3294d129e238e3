package control

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/hyprspaces/hyprspaces/internal/metrics"
)

const (
	// SocketFileName is the filename of the control socket within the runtime dir.
	SocketFileName = "control.sock"

	// Action names supported by the control protocol.
	ActionStatus = "status"
	ActionReload = "reload"

	// Response statuses.
	StatusOK    = "ok"
	StatusError = "error"
)

// Request represents a control API request.
type Request struct {
	Action string         `json:"action"`
	Params map[string]any `json:"params,omitempty"`
}

// Response represents a control API response.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// DaemonStatus is returned by the status action.
type DaemonStatus struct {
	PID              int              `json:"pid"`
	Started          time.Time        `json:"started"`
	Backend          string           `json:"backend"`
	PrimaryMonitor   string           `json:"primaryMonitor"`
	SecondaryMonitor string           `json:"secondaryMonitor"`
	PairedOffset     int              `json:"pairedOffset"`
	RebalancePending bool             `json:"rebalancePending"`
	Metrics          metrics.Snapshot `json:"metrics"`
}

// DefaultSocketPath returns the expected location of the control socket.
func DefaultSocketPath() (string, error) {
	if env := os.Getenv("HYPRSPACES_CONTROL_SOCKET"); env != "" {
		return env, nil
	}
	base := os.Getenv("XDG_RUNTIME_DIR")
	if base == "" {
		base = os.TempDir()
		if base == "" {
			return "", errors.New("no runtime directory available")
		}
	}
	return filepath.Join(base, "hyprspaces", SocketFileName), nil
}

// ResolveSocketPath prefers an explicit path over the default.
func ResolveSocketPath(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	return DefaultSocketPath()
}
