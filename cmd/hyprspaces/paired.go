package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hyprspaces/hyprspaces/internal/paired"
)

func newPairedCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paired",
		Short: "Switch, cycle and move windows across the workspace pair",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "switch <workspace>",
			Short: "Show a workspace on both monitors",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ws, err := parseWorkspace(args[0])
				if err != nil {
					return err
				}
				pair, _, err := a.pair()
				if err != nil {
					return err
				}
				return pair.Switch(cmd.Context(), ws)
			},
		},
		&cobra.Command{
			Use:       "cycle <next|prev>",
			Short:     "Move both monitors to the neighbouring slot",
			Args:      cobra.ExactArgs(1),
			ValidArgs: []string{"next", "prev"},
			RunE: func(cmd *cobra.Command, args []string) error {
				dir, err := paired.ParseDirection(args[0])
				if err != nil {
					return err
				}
				pair, _, err := a.pair()
				if err != nil {
					return err
				}
				return pair.Cycle(cmd.Context(), dir)
			},
		},
		&cobra.Command{
			Use:   "move-window <workspace>",
			Short: "Move the focused window to a slot and follow it",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ws, err := parseWorkspace(args[0])
				if err != nil {
					return err
				}
				pair, _, err := a.pair()
				if err != nil {
					return err
				}
				return pair.MoveWindow(cmd.Context(), ws)
			},
		},
	)
	return cmd
}

func parseWorkspace(arg string) (int, error) {
	ws, err := strconv.Atoi(arg)
	if err != nil || ws < 1 {
		return 0, fmt.Errorf("workspace must be a positive integer, got %q", arg)
	}
	return ws, nil
}
