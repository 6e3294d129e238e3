package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateWindowsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate-windows",
		Short: "Move windows from secondary workspaces to their primary slot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pair, _, err := a.pair()
			if err != nil {
				return err
			}
			moved, err := pair.MigrateWindows(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "moved %d windows\n", moved)
			return nil
		},
	}
}

func newGrabRogueWindowsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "grab-rogue-windows",
		Short: "Pull windows on workspaces beyond workspace_count back into range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pair, _, err := a.pair()
			if err != nil {
				return err
			}
			moved, err := pair.GrabRogueWindows(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "moved %d windows\n", moved)
			return nil
		},
	}
}

func newReloadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Reload Hyprland and put every workspace back on its monitor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pair, h, err := a.pair()
			if err != nil {
				return err
			}
			if err := h.Reload(cmd.Context()); err != nil {
				return fmt.Errorf("reload hyprland: %w", err)
			}
			return pair.Rebalance(cmd.Context())
		},
	}
}
