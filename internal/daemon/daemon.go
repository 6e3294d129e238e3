// Package daemon runs the event loop that keeps paired workspaces in sync.
package daemon

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"time"

	"github.com/hyprspaces/hyprspaces/internal/config"
	"github.com/hyprspaces/hyprspaces/internal/control"
	"github.com/hyprspaces/hyprspaces/internal/debounce"
	"github.com/hyprspaces/hyprspaces/internal/dispatch"
	"github.com/hyprspaces/hyprspaces/internal/events"
	"github.com/hyprspaces/hyprspaces/internal/metrics"
	"github.com/hyprspaces/hyprspaces/internal/paired"
	"github.com/hyprspaces/hyprspaces/internal/state"
	"github.com/hyprspaces/hyprspaces/internal/util"
)

// DefaultWait bounds each read of the event source and doubles as the flush
// tick for deferred rebalances.
const DefaultWait = 250 * time.Millisecond

const (
	actionRebalance   = "rebalance"
	actionFocusSwitch = "focus-switch"
	actionReload      = "reload"
)

// Options configures a Daemon.
type Options struct {
	Config  config.Config
	Control dispatch.Control
	Source  events.Source
	Logger  *util.Logger
	Metrics *metrics.Collector
	Backend string
	// Wait overrides DefaultWait.
	Wait time.Duration
	// Now overrides time.Now for events without a timestamp.
	Now func() time.Time
}

// Daemon owns the debounce state and the dispatcher. Only Run mutates them;
// Reload and Status are safe to call from other goroutines.
type Daemon struct {
	ctl     dispatch.Control
	source  events.Source
	logger  *util.Logger
	metrics *metrics.Collector
	backend string
	wait    time.Duration
	now     func() time.Time
	started time.Time

	cfg       config.Config
	pair      *dispatch.Pair
	rebalance *debounce.Rebalance
	focus     *debounce.FocusSwitch

	reloads   chan config.Config
	current   atomic.Pointer[config.Config]
	isPending atomic.Bool
}

// New builds a daemon from opts.
func New(opts Options) *Daemon {
	d := &Daemon{
		ctl:       opts.Control,
		source:    opts.Source,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		backend:   opts.Backend,
		wait:      opts.Wait,
		now:       opts.Now,
		cfg:       opts.Config,
		pair:      dispatch.NewPair(opts.Config, opts.Control, opts.Logger),
		rebalance: debounce.NewRebalance(opts.Config.Daemon.RebalanceDebounce()),
		focus:     debounce.NewFocusSwitch(opts.Config.Daemon.FocusDebounce()),
		reloads:   make(chan config.Config, 1),
	}
	if d.wait <= 0 {
		d.wait = DefaultWait
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.metrics == nil {
		d.metrics = metrics.NewCollector()
	}
	d.started = d.now()
	cfg := opts.Config
	d.current.Store(&cfg)
	return d
}

// Reload hands a new configuration to the loop. Only the latest pending
// configuration is kept.
func (d *Daemon) Reload(cfg config.Config) {
	for {
		select {
		case d.reloads <- cfg:
			return
		default:
		}
		select {
		case <-d.reloads:
		default:
		}
	}
}

// Status reports the configuration in use and the loop counters.
func (d *Daemon) Status() control.DaemonStatus {
	cfg := d.current.Load()
	return control.DaemonStatus{
		PID:              os.Getpid(),
		Started:          d.started,
		Backend:          d.backend,
		PrimaryMonitor:   cfg.PrimaryMonitor,
		SecondaryMonitor: cfg.SecondaryMonitor,
		PairedOffset:     cfg.PairedOffset,
		RebalancePending: d.isPending.Load(),
		Metrics:          d.metrics.Snapshot(),
	}
}

// Run processes events until the source disconnects or ctx is cancelled.
// A disconnect returns events.ErrStreamClosed.
func (d *Daemon) Run(ctx context.Context) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			d.source.Close()
		case <-stop:
		}
	}()

	d.logger.Infof("pairing %s with %s (offset %d)", d.cfg.PrimaryMonitor, d.cfg.SecondaryMonitor, d.cfg.PairedOffset)
	d.forceRebalance(ctx, "startup", d.now())

	for {
		select {
		case cfg := <-d.reloads:
			d.applyConfig(ctx, cfg)
		default:
		}

		ev := d.source.Next(d.wait)
		if err := ctx.Err(); err != nil {
			return err
		}
		at := ev.At
		if at.IsZero() {
			at = d.now()
		}
		switch ev.Kind {
		case events.Disconnected:
			d.logger.Warnf("event stream disconnected")
			return events.ErrStreamClosed
		case events.TopologyChanged:
			d.metrics.RecordEvent(ev.Kind.String())
			d.onTopology(ctx, ev, at)
		case events.FocusChanged:
			d.metrics.RecordEvent(ev.Kind.String())
			d.onFocus(ctx, ev, at)
		}
		if d.rebalance.Flush(at) {
			d.dispatchRebalance(ctx, "deferred")
		}
		d.isPending.Store(d.rebalance.Pending())
	}
}

func (d *Daemon) onTopology(ctx context.Context, ev events.Event, at time.Time) {
	d.logger.Debugf("monitor %s", ev.Topology)
	if d.rebalance.RecordEvent(at) == debounce.Defer {
		d.logger.Debugf("rebalance deferred")
		d.metrics.Record(actionRebalance, metrics.Deferred, nil)
		return
	}
	d.dispatchRebalance(ctx, "monitor "+ev.Topology.String())
}

// forceRebalance runs a rebalance regardless of the debounce window.
func (d *Daemon) forceRebalance(ctx context.Context, reason string, at time.Time) {
	d.rebalance.MarkRun(at)
	d.dispatchRebalance(ctx, reason)
}

func (d *Daemon) dispatchRebalance(ctx context.Context, reason string) {
	if err := d.pair.Rebalance(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		d.logger.Errorf("rebalance (%s) failed: %v", reason, err)
		d.metrics.Record(actionRebalance, metrics.Failed, err)
		return
	}
	d.logger.Infof("rebalanced workspaces (%s)", reason)
	d.metrics.Record(actionRebalance, metrics.Executed, nil)
}

func (d *Daemon) onFocus(ctx context.Context, ev events.Event, at time.Time) {
	if !d.cfg.Daemon.FocusFollow {
		return
	}
	id := ev.WorkspaceID
	if ev.WindowAddress != "" {
		resolved, err := d.workspaceOf(ctx, ev.WindowAddress)
		if err != nil {
			d.logger.Warnf("resolve window %s: %v", ev.WindowAddress, err)
			return
		}
		id = resolved
	}
	offset := d.cfg.PairedOffset
	if id <= 0 || id > 2*offset {
		d.logger.Tracef("focus on workspace %d outside the pair", id)
		return
	}
	slot := paired.Normalize(id, offset)
	if !d.focus.ShouldSwitch(at, slot) {
		d.logger.Debugf("focus switch to slot %d suppressed", slot)
		d.metrics.Record(actionFocusSwitch, metrics.Suppressed, nil)
		return
	}
	if err := d.pair.SwitchWithFocus(ctx, slot, d.pair.FocusMonitorFor(id)); err != nil {
		if ctx.Err() != nil {
			return
		}
		d.logger.Errorf("focus switch to slot %d failed: %v", slot, err)
		d.metrics.Record(actionFocusSwitch, metrics.Failed, err)
		return
	}
	d.logger.Infof("followed focus to slot %d", slot)
	d.metrics.Record(actionFocusSwitch, metrics.Executed, nil)
}

var errUnknownWindow = errors.New("window not found")

// workspaceOf resolves the workspace hosting address. Windows on special
// workspaces resolve to 0 so they are ignored.
func (d *Daemon) workspaceOf(ctx context.Context, address string) (int, error) {
	clients, err := d.ctl.Clients(ctx)
	if err != nil {
		return 0, err
	}
	client, ok := state.FindClient(clients, address)
	if !ok {
		return 0, errUnknownWindow
	}
	if client.OnSpecialWorkspace() {
		return 0, nil
	}
	return client.WorkspaceID, nil
}

func (d *Daemon) applyConfig(ctx context.Context, cfg config.Config) {
	d.cfg = cfg
	d.pair = dispatch.NewPair(cfg, d.ctl, d.logger)
	d.rebalance.SetInterval(cfg.Daemon.RebalanceDebounce())
	d.focus.SetInterval(cfg.Daemon.FocusDebounce())
	d.current.Store(&cfg)
	d.metrics.Record(actionReload, metrics.Executed, nil)
	d.logger.Infof("configuration reloaded")
	d.forceRebalance(ctx, "reload", d.now())
}
