package control

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"testing"

	"github.com/hyprspaces/hyprspaces/internal/util"
)

func roundTrip(t *testing.T, srv *Server, req Request) Response {
	t.Helper()
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.handle(serverConn)
	}()

	if err := json.NewEncoder(clientConn).Encode(req); err != nil {
		t.Fatalf("encode request: %v", err)
	}
	var resp Response
	if err := json.NewDecoder(clientConn).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	<-done
	return resp
}

func TestHandleStatus(t *testing.T) {
	logger := util.NewLoggerWithWriter(util.LevelError, io.Discard)
	srv := NewServer("", func() DaemonStatus {
		return DaemonStatus{PID: 7, PrimaryMonitor: "DP-1", PairedOffset: 10}
	}, logger, nil)

	resp := roundTrip(t, srv, Request{Action: ActionStatus})
	if resp.Status != StatusOK {
		t.Fatalf("expected ok, got %s (%s)", resp.Status, resp.Error)
	}
	data, _ := resp.Data.(map[string]any)
	if data["primaryMonitor"] != "DP-1" || data["pid"] != float64(7) {
		t.Fatalf("unexpected status payload: %#v", resp.Data)
	}
}

func TestHandleReload(t *testing.T) {
	logger := util.NewLoggerWithWriter(util.LevelError, io.Discard)
	var reasons []string
	srv := NewServer("", nil, logger, func(reason string) error {
		reasons = append(reasons, reason)
		if len(reasons) > 1 {
			return errors.New("invalid config")
		}
		return nil
	})

	if resp := roundTrip(t, srv, Request{Action: ActionReload}); resp.Status != StatusOK {
		t.Fatalf("expected ok, got %s (%s)", resp.Status, resp.Error)
	}
	resp := roundTrip(t, srv, Request{Action: ActionReload})
	if resp.Status != StatusError || resp.Error != "invalid config" {
		t.Fatalf("expected reload error, got %#v", resp)
	}
	if len(reasons) != 2 || reasons[0] != "control request" {
		t.Fatalf("unexpected reasons %v", reasons)
	}
}

func TestHandleUnknownAndUnsupported(t *testing.T) {
	logger := util.NewLoggerWithWriter(util.LevelError, io.Discard)
	srv := NewServer("", nil, logger, nil)

	if resp := roundTrip(t, srv, Request{Action: "mode.set"}); resp.Status != StatusError {
		t.Fatalf("expected error for unknown action")
	}
	if resp := roundTrip(t, srv, Request{Action: ActionStatus}); resp.Status != StatusError {
		t.Fatalf("expected error without status provider")
	}
	if resp := roundTrip(t, srv, Request{Action: ActionReload}); resp.Status != StatusError {
		t.Fatalf("expected error without reload hook")
	}
}
