package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hyprspaces/hyprspaces/internal/config"
	"github.com/hyprspaces/hyprspaces/internal/dispatch"
	"github.com/hyprspaces/hyprspaces/internal/ipc"
	"github.com/hyprspaces/hyprspaces/internal/util"
)

// hyprland is the compositor surface the commands need.
type hyprland interface {
	dispatch.Control
	Reload(ctx context.Context) error
}

type app struct {
	configPath string
	logLevel   string
	backend    backendValue

	logger  *util.Logger
	connect func(logger *util.Logger, backend ipc.Backend) (hyprland, ipc.Backend, error)
}

func newApp() *app {
	return &app{
		logLevel: "info",
		backend:  backendValue(ipc.BackendHyprctl),
		connect: func(logger *util.Logger, backend ipc.Backend) (hyprland, ipc.Backend, error) {
			client, selected, err := ipc.New(logger, backend)
			if err != nil {
				return nil, "", err
			}
			return client, selected, nil
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd(newApp()).ExecuteContext(ctx); err != nil {
		exitErr(err)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "hyprspaces",
		Short:         "Paired workspaces across two monitors for Hyprland",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.logger = util.NewLoggerWithWriter(util.ParseLogLevel(a.logLevel), cmd.ErrOrStderr())
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to paired.yaml (default $XDG_CONFIG_HOME/hyprspaces/paired.yaml)")
	flags.StringVar(&a.logLevel, "log-level", a.logLevel, "log level (trace|debug|info|warn|error)")
	flags.Var(&a.backend, "ipc", "how to reach Hyprland (hyprctl|native)")

	root.AddCommand(
		newPairedCmd(a),
		newMigrateWindowsCmd(a),
		newGrabRogueWindowsCmd(a),
		newReloadCmd(a),
		newSessionCmd(a),
		newDaemonCmd(a),
	)
	return root
}

// paths resolves the on-disk layout, honouring --config.
func (a *app) paths() (config.Paths, error) {
	paths, err := config.DefaultPaths()
	if err != nil && a.configPath == "" {
		return config.Paths{}, err
	}
	if a.configPath != "" {
		paths.ConfigPath = a.configPath
		if paths.BaseDir == "" {
			paths.BaseDir = filepath.Dir(a.configPath)
		}
	}
	return paths, nil
}

func (a *app) loadConfig() (*config.Config, config.Paths, error) {
	paths, err := a.paths()
	if err != nil {
		return nil, config.Paths{}, err
	}
	cfg, err := config.Load(paths.ConfigPath)
	if err != nil {
		return nil, config.Paths{}, fmt.Errorf("load config %s: %w", paths.ConfigPath, err)
	}
	return cfg, paths, nil
}

func (a *app) hyprland() (hyprland, ipc.Backend, error) {
	h, backend, err := a.connect(a.logger, ipc.Backend(a.backend))
	if err != nil {
		return nil, "", fmt.Errorf("connect to hyprland: %w", err)
	}
	a.logger.Debugf("using %s backend", backend)
	return h, backend, nil
}

// pair loads the config and binds it to a compositor connection.
func (a *app) pair() (*dispatch.Pair, hyprland, error) {
	cfg, _, err := a.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	h, _, err := a.hyprland()
	if err != nil {
		return nil, nil, err
	}
	return dispatch.NewPair(*cfg, h, a.logger), h, nil
}

func exitErr(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
