package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/hyprspaces/hyprspaces/internal/config"
	"github.com/hyprspaces/hyprspaces/internal/util"
)

type reloadTarget interface {
	Reload(cfg config.Config)
}

// configReloader re-reads the config file and hands valid results to the
// daemon. It is called from the watcher, SIGHUP and the control socket.
type configReloader struct {
	path   string
	logger *util.Logger
	target reloadTarget

	mu             sync.Mutex
	lastConfig     *config.Config
	lastSerialized []byte
}

func newConfigReloader(path string, logger *util.Logger, target reloadTarget, cfg *config.Config, serialized []byte) *configReloader {
	return &configReloader{
		path:           path,
		logger:         logger,
		target:         target,
		lastConfig:     cfg,
		lastSerialized: append([]byte(nil), serialized...),
	}
}

func (r *configReloader) Reload(reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Infof("%s, reloading config", reason)
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	cfg, err := config.Parse(raw)
	if err != nil {
		r.logDiff(raw)
		return err
	}
	if diff := config.Diff(r.lastConfig, cfg); diff != "" {
		r.logger.Debugf("config changes:\n%s", diff)
	}
	if config.RequiresRebalance(r.lastConfig, cfg) {
		r.logger.Infof("pairing changed to %s + %s (offset %d)", cfg.PrimaryMonitor, cfg.SecondaryMonitor, cfg.PairedOffset)
	}
	r.target.Reload(*cfg)

	r.lastConfig = cfg
	r.lastSerialized = append([]byte(nil), raw...)
	return nil
}

func (r *configReloader) logDiff(current []byte) {
	diff := config.DiffSerialized(r.lastSerialized, current)
	if diff == "" {
		r.logger.Warnf("config change rejected; unable to compute diff vs last valid config")
		return
	}
	r.logger.Warnf("config change rejected; diff vs last valid config:\n%s", diff)
}
