package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/hyprspaces/hyprspaces/internal/config"
	"github.com/hyprspaces/hyprspaces/internal/control"
	"github.com/hyprspaces/hyprspaces/internal/control/client"
	"github.com/hyprspaces/hyprspaces/internal/daemon"
	"github.com/hyprspaces/hyprspaces/internal/events"
	"github.com/hyprspaces/hyprspaces/internal/ipc"
	"github.com/hyprspaces/hyprspaces/internal/metrics"
	"github.com/hyprspaces/hyprspaces/internal/pidfile"
	"github.com/hyprspaces/hyprspaces/internal/util"
)

func newDaemonCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Keep workspaces paired as monitors and focus change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDaemon(cmd.Context())
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "stop",
			Short: "Stop the running daemon",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				paths, err := a.paths()
				if err != nil {
					return err
				}
				pid, err := pidfile.Signal(paths.PIDPath(), unix.SIGTERM)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "stopped daemon (pid %d)\n", pid)
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the running daemon's pairing and counters",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cli, err := a.controlClient()
				if err != nil {
					return err
				}
				status, err := cli.Status(cmd.Context())
				if err != nil {
					return err
				}
				printStatus(cmd, status)
				return nil
			},
		},
		&cobra.Command{
			Use:   "reload",
			Short: "Ask the running daemon to reload its config",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cli, err := a.controlClient()
				if err != nil {
					return err
				}
				return cli.Reload(cmd.Context())
			},
		},
	)
	return cmd
}

// controlClient dials the socket named in the config, or the default one
// when the config cannot be read.
func (a *app) controlClient() (*client.Client, error) {
	override := ""
	if cfg, _, err := a.loadConfig(); err == nil {
		override = cfg.Daemon.ControlSocket
	} else {
		a.logger.Debugf("using default control socket: %v", err)
	}
	return client.New(override)
}

func printStatus(cmd *cobra.Command, status client.DaemonStatus) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "pid %d, %s backend, up %s\n", status.PID, status.Backend, time.Since(status.Started).Round(time.Second))
	fmt.Fprintf(out, "pair %s + %s, offset %d\n", status.PrimaryMonitor, status.SecondaryMonitor, status.PairedOffset)
	if status.RebalancePending {
		fmt.Fprintln(out, "rebalance pending")
	}
	for _, action := range status.Metrics.Actions {
		fmt.Fprintf(out, "%-13s executed=%d deferred=%d suppressed=%d failed=%d\n",
			action.Action, action.Executed, action.Deferred, action.Suppressed, action.Failed)
		if action.LastError != "" {
			fmt.Fprintf(out, "%-13s last error: %s\n", "", action.LastError)
		}
	}
}

func (a *app) runDaemon(ctx context.Context) error {
	paths, err := a.paths()
	if err != nil {
		return err
	}
	raw, err := os.ReadFile(paths.ConfigPath)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	cfg, err := config.Parse(raw)
	if err != nil {
		return fmt.Errorf("load config %s: %w", paths.ConfigPath, err)
	}

	lock, err := pidfile.Acquire(paths.PIDPath())
	if err != nil {
		return err
	}
	defer lock.Release()

	h, backend, err := a.hyprland()
	if err != nil {
		return err
	}
	a.logger.Infof("using %s backend", backend)
	src, err := openEventSource(ctx, backend, a.logger.Named("events"))
	if err != nil {
		return err
	}
	defer src.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	d := daemon.New(daemon.Options{
		Config:  *cfg,
		Control: h,
		Source:  src,
		Logger:  a.logger.Named("daemon"),
		Metrics: metrics.NewCollector(),
		Backend: string(backend),
	})
	reloader := newConfigReloader(paths.ConfigPath, a.logger, d, cfg, raw)

	watcher, err := newConfigWatcher(paths.ConfigPath, a.logger.Named("watch"), configDebounce)
	if err != nil {
		return err
	}
	defer watcher.Close()
	reloadRequests := make(chan string, 1)
	go watcher.Run(ctx, reloadRequests)

	socketPath, err := control.ResolveSocketPath(cfg.Daemon.ControlSocket)
	if err != nil {
		return err
	}
	ctrlSrv := control.NewServer(socketPath, d.Status, a.logger.Named("control"), reloader.Reload)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGHUP)
	defer signal.Stop(sigs)

	errs := make(chan error, 2)
	go func() {
		errs <- d.Run(ctx)
	}()
	go func() {
		if err := ctrlSrv.Serve(ctx); err != nil {
			a.logger.Errorf("control server: %v", err)
		}
	}()

	for {
		select {
		case err := <-errs:
			if errors.Is(err, context.Canceled) {
				a.logger.Infof("daemon stopped")
				return nil
			}
			return err
		case reason := <-reloadRequests:
			if err := reloader.Reload(reason); err != nil {
				a.logger.Errorf("reload failed: %v", err)
			}
		case <-sigs:
			if err := reloader.Reload("received SIGHUP"); err != nil {
				a.logger.Errorf("reload failed: %v", err)
			}
		}
	}
}

func openEventSource(ctx context.Context, backend ipc.Backend, logger *util.Logger) (events.Source, error) {
	path, err := ipc.EventSocketPath()
	if err != nil {
		return nil, err
	}
	if backend == ipc.BackendNative {
		src, err := events.DialPush(ctx, path, logger)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	src, err := events.DialStream(ctx, path, logger)
	if err != nil {
		return nil, err
	}
	return src, nil
}
