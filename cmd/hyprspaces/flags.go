package main

import (
	"github.com/spf13/pflag"

	"github.com/hyprspaces/hyprspaces/internal/ipc"
	"github.com/hyprspaces/hyprspaces/internal/session"
)

// backendValue is the --ipc flag.
type backendValue ipc.Backend

func (b *backendValue) String() string { return string(*b) }
func (b *backendValue) Type() string   { return "backend" }
func (b *backendValue) Set(s string) error {
	backend, err := ipc.ParseBackend(s)
	if err != nil {
		return err
	}
	*b = backendValue(backend)
	return nil
}

// restoreModeValue is the session restore --mode flag.
type restoreModeValue session.RestoreMode

func (m *restoreModeValue) String() string { return session.RestoreMode(*m).String() }
func (m *restoreModeValue) Type() string   { return "mode" }
func (m *restoreModeValue) Set(s string) error {
	mode, err := session.ParseRestoreMode(s)
	if err != nil {
		return err
	}
	*m = restoreModeValue(mode)
	return nil
}

var (
	_ pflag.Value = (*backendValue)(nil)
	_ pflag.Value = (*restoreModeValue)(nil)
)
