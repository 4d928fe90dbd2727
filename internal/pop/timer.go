package pop

import (
	"time"

	"github.com/jmylchreest/popstack/internal/clock"
)

// TimerState is the auto-dismiss state of a descriptor.
type TimerState int

const (
	// TimerAbsent means no countdown exists.
	TimerAbsent TimerState = iota
	// TimerRunning means a callback is scheduled.
	TimerRunning
	// TimerPaused means a remaining duration is stored but nothing is scheduled.
	TimerPaused
)

// String returns the string representation of TimerState.
func (s TimerState) String() string {
	switch s {
	case TimerAbsent:
		return "absent"
	case TimerRunning:
		return "running"
	case TimerPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// timerState is attached to a descriptor while it has a countdown.
// active with a nil handle is the paused state.
type timerState struct {
	active    bool
	remaining time.Duration
	startedAt time.Time
	handle    clock.Timer
	gen       uint64
}

func (t *timerState) state() TimerState {
	switch {
	case !t.active:
		return TimerAbsent
	case t.handle != nil:
		return TimerRunning
	default:
		return TimerPaused
	}
}

// timerController owns the single delayed callback of each descriptor.
// It is not safe for concurrent use; Pop serialises access.
type timerController struct {
	clock clock.Clock
	gen   uint64
}

// startOrResume schedules onExpire after the stored remaining duration, or
// after d.Timeout when no countdown exists. onExpire receives the generation
// of the countdown it belongs to so stale callbacks can be recognised.
func (c *timerController) startOrResume(d *Descriptor, onExpire func(gen uint64)) bool {
	if d == nil {
		return false
	}
	t := &d.timer
	if t.handle != nil {
		return true
	}
	if !t.active {
		if d.Timeout <= 0 {
			return false
		}
		t.active = true
		t.remaining = d.Timeout
	}

	c.gen++
	gen := c.gen
	t.gen = gen
	t.startedAt = c.clock.Now()
	t.handle = c.clock.AfterFunc(t.remaining, func() { onExpire(gen) })
	return true
}

// pause stops a running countdown and keeps what is left of it.
func (c *timerController) pause(d *Descriptor) bool {
	if d == nil || d.timer.handle == nil {
		return false
	}
	t := &d.timer
	t.handle.Stop()
	t.handle = nil

	elapsed := c.clock.Now().Sub(t.startedAt)
	t.remaining = max(t.remaining-elapsed, 0)
	t.startedAt = time.Time{}
	return true
}

// cancel discards any countdown, running or paused.
func (c *timerController) cancel(d *Descriptor) bool {
	if d == nil || !d.timer.active {
		return false
	}
	if d.timer.handle != nil {
		d.timer.handle.Stop()
	}
	d.timer = timerState{}
	return true
}

// remaining reports the time left on a descriptor's countdown at now.
func (c *timerController) remaining(d *Descriptor) time.Duration {
	t := &d.timer
	if !t.active {
		return 0
	}
	if t.handle == nil {
		return t.remaining
	}
	return max(t.remaining-c.clock.Now().Sub(t.startedAt), 0)
}
