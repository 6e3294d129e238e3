// Package events turns the Hyprland notification stream into the small set of
// domain events the daemon acts on.
package events

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrStreamClosed is returned by the daemon loop once the source disconnects.
var ErrStreamClosed = errors.New("event stream closed")

// Kind tags an Event.
type Kind int

const (
	// TopologyChanged reports a monitor being plugged or unplugged.
	TopologyChanged Kind = iota
	// FocusChanged reports a workspace or window gaining focus.
	FocusChanged
	// Timeout is emitted when no record arrived within the wait window.
	Timeout
	// Disconnected is emitted once the stream has closed.
	Disconnected
)

func (k Kind) String() string {
	switch k {
	case TopologyChanged:
		return "topology"
	case FocusChanged:
		return "focus"
	case Timeout:
		return "timeout"
	case Disconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Topology says which way the monitor set changed.
type Topology int

const (
	Added Topology = iota
	Removed
)

func (t Topology) String() string {
	if t == Removed {
		return "removed"
	}
	return "added"
}

// Event is a classified notification. For FocusChanged exactly one of
// WorkspaceID and WindowAddress is set.
type Event struct {
	Kind          Kind
	At            time.Time
	Topology      Topology
	WorkspaceID   int
	WindowAddress string
}

// HasWorkspace reports whether the focus event carries a workspace id.
func (e Event) HasWorkspace() bool {
	return e.WorkspaceID != 0
}

// Classify parses one "name>>payload" line. Unknown names, malformed lines
// and focus payloads without a usable identity return false.
func Classify(line string, now time.Time) (Event, bool) {
	name, payload, ok := strings.Cut(strings.TrimRight(line, "\r\n"), ">>")
	if !ok {
		return Event{}, false
	}
	switch name {
	case "monitoradded", "monitoraddedv2":
		return Event{Kind: TopologyChanged, At: now, Topology: Added}, true
	case "monitorremoved", "monitorremovedv2":
		return Event{Kind: TopologyChanged, At: now, Topology: Removed}, true
	case "workspace":
		return focusWorkspace(payload, now)
	case "workspacev2":
		id, _, _ := strings.Cut(payload, ",")
		return focusWorkspace(id, now)
	case "focusedmon":
		_, ws, found := strings.Cut(payload, ",")
		if !found {
			return Event{}, false
		}
		return focusWorkspace(ws, now)
	case "focusedmonv2":
		_, ws, found := strings.Cut(payload, ",")
		if !found {
			return Event{}, false
		}
		return focusWorkspace(ws, now)
	case "activewindowv2":
		addr := strings.TrimSpace(payload)
		if addr == "" || addr == "," {
			return Event{}, false
		}
		if !strings.HasPrefix(addr, "0x") {
			addr = "0x" + addr
		}
		return Event{Kind: FocusChanged, At: now, WindowAddress: addr}, true
	default:
		return Event{}, false
	}
}

// focusWorkspace accepts only positive numeric ids; named workspaces are not
// pairing-aware.
func focusWorkspace(field string, now time.Time) (Event, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(field))
	if err != nil || id <= 0 {
		return Event{}, false
	}
	return Event{Kind: FocusChanged, At: now, WorkspaceID: id}, true
}
