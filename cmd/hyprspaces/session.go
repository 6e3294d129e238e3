package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyprspaces/hyprspaces/internal/ipc"
	"github.com/hyprspaces/hyprspaces/internal/session"
)

func newSessionCmd(a *app) *cobra.Command {
	var (
		path string
		mode = restoreModeValue(session.Auto)
	)
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Save and restore window placement",
	}
	save := &cobra.Command{
		Use:   "save",
		Short: "Capture monitors, workspaces and windows to a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, target, err := a.sessionService(path)
			if err != nil {
				return err
			}
			snap, err := svc.Save(cmd.Context(), target)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %d windows to %s\n", len(snap.Clients), target)
			return nil
		},
	}
	restore := &cobra.Command{
		Use:   "restore",
		Short: "Move windows back to the workspaces recorded in a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, target, err := a.sessionService(path)
			if err != nil {
				return err
			}
			b, err := svc.Restore(cmd.Context(), target, session.RestoreMode(mode))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "moved %d windows\n", b.Len())
			return nil
		},
	}
	for _, sub := range []*cobra.Command{save, restore} {
		sub.Flags().StringVar(&path, "path", "", "session file (default <config dir>/hyprspaces/sessions/latest.json)")
	}
	restore.Flags().Var(&mode, "mode", "restore strategy (auto|same|cold)")
	cmd.AddCommand(save, restore)
	return cmd
}

func (a *app) sessionService(override string) (*session.Service, string, error) {
	cfg, paths, err := a.loadConfig()
	if err != nil {
		return nil, "", err
	}
	h, _, err := a.hyprland()
	if err != nil {
		return nil, "", err
	}
	return session.NewService(*cfg, h, ipc.InstanceSignature(), a.logger), paths.SessionPath(override), nil
}
