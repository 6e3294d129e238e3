// Package debounce holds the daemon's rate limiters. Both are plain state
// advanced by the caller with an explicit timestamp; neither owns a timer.
package debounce

import "time"

// Decision is the outcome of recording an event.
type Decision int

const (
	// Defer means the action is pending until a later Flush.
	Defer Decision = iota
	// RunNow means the caller should act immediately.
	RunNow
)

func (d Decision) String() string {
	if d == RunNow {
		return "run"
	}
	return "defer"
}

// Rebalance coalesces bursts of topology events into a single rebalance that
// runs once the burst has gone quiet.
type Rebalance struct {
	minInterval   time.Duration
	lastRebalance time.Time
	lastEvent     time.Time
	ran           bool
	pending       bool
}

// NewRebalance returns a controller with the given interval.
func NewRebalance(minInterval time.Duration) *Rebalance {
	return &Rebalance{minInterval: minInterval}
}

func (r *Rebalance) intervalElapsed(now time.Time) bool {
	return !r.ran || now.Sub(r.lastRebalance) >= r.minInterval
}

// RecordEvent registers a topology event at now.
func (r *Rebalance) RecordEvent(now time.Time) Decision {
	if r.intervalElapsed(now) {
		r.pending = false
		r.ran = true
		r.lastRebalance = now
		return RunNow
	}
	r.pending = true
	r.lastEvent = now
	return Defer
}

// Flush reports whether a deferred rebalance should run at now. It fires only
// when one is pending, the burst has been quiet for minInterval and the
// previous rebalance is at least minInterval old.
func (r *Rebalance) Flush(now time.Time) bool {
	if !r.pending {
		return false
	}
	if now.Sub(r.lastEvent) < r.minInterval || !r.intervalElapsed(now) {
		return false
	}
	r.pending = false
	r.ran = true
	r.lastRebalance = now
	return true
}

// MarkRun records a rebalance that ran outside RecordEvent, such as at
// startup or after a reload, and drops any pending one.
func (r *Rebalance) MarkRun(now time.Time) {
	r.pending = false
	r.ran = true
	r.lastRebalance = now
}

// Pending reports whether a deferred rebalance is waiting.
func (r *Rebalance) Pending() bool {
	return r.pending
}

// SetInterval changes minInterval, keeping the recorded timestamps.
func (r *Rebalance) SetInterval(d time.Duration) {
	r.minInterval = d
}

// FocusSwitch suppresses repeated switches to the same slot.
type FocusSwitch struct {
	minInterval time.Duration
	lastSwitch  time.Time
	lastSlot    int
	switched    bool
}

// NewFocusSwitch returns a controller with the given interval.
func NewFocusSwitch(minInterval time.Duration) *FocusSwitch {
	return &FocusSwitch{minInterval: minInterval}
}

// ShouldSwitch reports whether a switch to slot at now is allowed and records
// it when it is. A different slot is always allowed.
func (f *FocusSwitch) ShouldSwitch(now time.Time, slot int) bool {
	if f.switched && slot == f.lastSlot && now.Sub(f.lastSwitch) < f.minInterval {
		return false
	}
	f.switched = true
	f.lastSlot = slot
	f.lastSwitch = now
	return true
}

// SetInterval changes minInterval.
func (f *FocusSwitch) SetInterval(d time.Duration) {
	f.minInterval = d
}
