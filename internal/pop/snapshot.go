package pop

import "time"

// EntrySnapshot is the observable state of one stacked descriptor.
type EntrySnapshot struct {
	ID        string        `json:"id" yaml:"id"`
	Timeout   time.Duration `json:"timeout" yaml:"timeout"`
	Remaining time.Duration `json:"remaining" yaml:"remaining"`
	Timer     string        `json:"timer" yaml:"timer"`
}

// ViewSnapshot is a point-in-time copy of a view, bottom to top.
type ViewSnapshot struct {
	Name    string          `json:"name" yaml:"name"`
	Depth   int             `json:"depth" yaml:"depth"`
	Entries []EntrySnapshot `json:"entries" yaml:"entries"`
}

// Top returns the topmost entry, if any.
func (s ViewSnapshot) Top() (EntrySnapshot, bool) {
	if len(s.Entries) == 0 {
		return EntrySnapshot{}, false
	}
	return s.Entries[len(s.Entries)-1], true
}

// Snapshot copies the state of a view, including remaining timer durations.
func (p *Pop) Snapshot(view string) ViewSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	v := p.viewLocked(view)
	snap := ViewSnapshot{
		Name:    v.name,
		Depth:   len(v.stack),
		Entries: make([]EntrySnapshot, 0, len(v.stack)),
	}
	for _, d := range v.stack {
		snap.Entries = append(snap.Entries, EntrySnapshot{
			ID:        d.ID,
			Timeout:   d.Timeout,
			Remaining: p.timers.remaining(d),
			Timer:     d.timer.state().String(),
		})
	}
	return snap
}

// TimerState reports the countdown state of d.
func (p *Pop) TimerState(d *Descriptor) TimerState {
	if d == nil {
		return TimerAbsent
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return d.timer.state()
}

// Remaining reports how long d has left before it auto-dismisses.
// It is zero when d has no countdown.
func (p *Pop) Remaining(d *Descriptor) time.Duration {
	if d == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.timers.remaining(d)
}
