package metrics

import (
	"sort"
	"sync"
	"time"
)

// Outcome names what happened to a daemon action.
type Outcome string

const (
	Executed   Outcome = "executed"
	Deferred   Outcome = "deferred"
	Suppressed Outcome = "suppressed"
	Failed     Outcome = "failed"
)

// Collector aggregates counters for the daemon loop. The loop records and the
// control server reads, so all access is locked.
type Collector struct {
	mu      sync.RWMutex
	started time.Time
	events  map[string]uint64
	actions map[string]*ActionMetrics
	now     func() time.Time
}

// ActionMetrics captures per-action counters.
type ActionMetrics struct {
	Action       string    `json:"action"`
	Executed     uint64    `json:"executed"`
	Deferred     uint64    `json:"deferred"`
	Suppressed   uint64    `json:"suppressed"`
	Failed       uint64    `json:"failed"`
	LastExecuted time.Time `json:"lastExecuted,omitempty"`
	LastFailed   time.Time `json:"lastFailed,omitempty"`
	LastError    string    `json:"lastError,omitempty"`
}

// Totals aggregates counters across all actions in a snapshot.
type Totals struct {
	Events     uint64 `json:"events"`
	Executed   uint64 `json:"executed"`
	Deferred   uint64 `json:"deferred"`
	Suppressed uint64 `json:"suppressed"`
	Failed     uint64 `json:"failed"`
}

// Snapshot is the serializable view of the current metrics state.
type Snapshot struct {
	Started time.Time         `json:"started,omitempty"`
	Events  map[string]uint64 `json:"events,omitempty"`
	Totals  Totals            `json:"totals"`
	Actions []ActionMetrics   `json:"actions,omitempty"`
}

// NewCollector returns an empty collector started now.
func NewCollector() *Collector {
	return newCollector(time.Now)
}

func newCollector(now func() time.Time) *Collector {
	return &Collector{
		started: now(),
		events:  make(map[string]uint64),
		actions: make(map[string]*ActionMetrics),
		now:     now,
	}
}

// RecordEvent counts one classified event of the given kind.
func (c *Collector) RecordEvent(kind string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events[kind]++
}

// Record counts one outcome for action. err is kept as the last error when
// the outcome is Failed.
func (c *Collector) Record(action string, outcome Outcome, err error) {
	if c == nil {
		return
	}
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.actions[action]
	if !ok {
		m = &ActionMetrics{Action: action}
		c.actions[action] = m
	}
	switch outcome {
	case Executed:
		m.Executed++
		m.LastExecuted = now
	case Deferred:
		m.Deferred++
	case Suppressed:
		m.Suppressed++
	case Failed:
		m.Failed++
		m.LastFailed = now
		if err != nil {
			m.LastError = err.Error()
		}
	}
}

// Snapshot returns the current counters for serialization or display.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap := Snapshot{Started: c.started}
	if len(c.events) > 0 {
		snap.Events = make(map[string]uint64, len(c.events))
		for kind, n := range c.events {
			snap.Events[kind] = n
			snap.Totals.Events += n
		}
	}
	if len(c.actions) == 0 {
		return snap
	}
	snap.Actions = make([]ActionMetrics, 0, len(c.actions))
	for _, m := range c.actions {
		clone := *m
		snap.Actions = append(snap.Actions, clone)
		snap.Totals.Executed += clone.Executed
		snap.Totals.Deferred += clone.Deferred
		snap.Totals.Suppressed += clone.Suppressed
		snap.Totals.Failed += clone.Failed
	}
	sort.Slice(snap.Actions, func(i, j int) bool {
		return snap.Actions[i].Action < snap.Actions[j].Action
	})
	return snap
}
