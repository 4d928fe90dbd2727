// Package pop implements the view-stack engine for overlay UI elements.
//
// A Pop keeps one stack of descriptors per named view. Only the topmost
// descriptor of a view may have a running auto-dismiss timer: covering a
// descriptor pauses its countdown and exposing it again resumes it from
// where it stopped, while removing a descriptor cancels its countdown for
// good. Mutations are serialised by a single lock, including the pops
// triggered by expiring timers.
package pop

import (
	"log/slog"
	"sync"

	"github.com/jmylchreest/popstack/internal/clock"
)

// Pop is the view-stack engine. The zero value is not usable; call New.
type Pop struct {
	mu     sync.Mutex
	clock  clock.Clock
	logger *slog.Logger
	timers timerController

	views       map[string]*View
	subscribers []chan ChangeEvent
	bufferSize  int
	closed      bool
}

// Option configures a Pop.
type Option func(*Pop)

// WithClock sets the clock used to schedule auto-dismiss timers.
func WithClock(c clock.Clock) Option {
	return func(p *Pop) {
		if c != nil {
			p.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pop) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithSubscriberBuffer sets the channel capacity of subscriptions made
// through Subscribe. Values below one keep the default.
func WithSubscriberBuffer(n int) Option {
	return func(p *Pop) {
		if n > 0 {
			p.bufferSize = n
		}
	}
}

// WithViews creates the named views up front, in addition to DefaultView.
func WithViews(names ...string) Option {
	return func(p *Pop) {
		for _, name := range names {
			p.viewLocked(name)
		}
	}
}

// New creates a Pop with the default view already present.
func New(opts ...Option) *Pop {
	p := &Pop{
		clock:      clock.System,
		logger:     slog.Default(),
		views:      make(map[string]*View),
		bufferSize: subscriberBuffer,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.timers.clock = p.clock
	p.viewLocked(DefaultView)
	return p
}

// Clock returns the clock timers are scheduled on.
func (p *Pop) Clock() clock.Clock {
	return p.clock
}

// Top returns the topmost descriptor of a view, or nil when it is empty.
func (p *Pop) Top(view string) *Descriptor {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewLocked(view).topLocked()
}

// Len returns the stack depth of a view.
func (p *Pop) Len(view string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.viewLocked(view).stack)
}

// Push places d on top of a view. The previous top, if any, has its timer
// paused, and d starts a fresh countdown from its own Timeout.
func (p *Pop) Push(d *Descriptor, view string) {
	if d == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	v := p.viewLocked(view)
	if top := v.topLocked(); top != nil {
		if p.timers.pause(top) {
			p.logger.Debug("paused covered popup", "view", v.name, "id", top.ID, "remaining", top.timer.remaining)
		}
	}

	p.prepareLocked(d)
	p.startLocked(v, d)
	v.stack = append(v.stack, d)

	p.logger.Debug("pushed popup", "view", v.name, "id", d.ID, "timeout", d.Timeout, "depth", len(v.stack))
	p.notifyLocked(ChangeTypePush, v)
}

// Pop removes the top descriptor of a view and cancels its timer. The newly
// exposed descriptor resumes its countdown. Popping an empty view does nothing.
func (p *Pop) Pop(view string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.popLocked(p.viewLocked(view), ChangeTypePop)
}

// Replace overwrites the top descriptor of a view with d, cancelling the old
// top's timer, or pushes d when the view is empty. d starts a fresh countdown.
func (p *Pop) Replace(d *Descriptor, view string) {
	if d == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	v := p.viewLocked(view)
	p.prepareLocked(d)
	if top := v.topLocked(); top != nil {
		p.timers.cancel(top)
		v.stack[len(v.stack)-1] = d
		p.logger.Debug("replaced popup", "view", v.name, "old_id", top.ID, "id", d.ID)
	} else {
		v.stack = append(v.stack, d)
		p.logger.Debug("replaced empty view", "view", v.name, "id", d.ID)
	}
	p.startLocked(v, d)

	p.notifyLocked(ChangeTypeReplace, v)
}

// ReplaceAll empties a view, cancelling every timer on it, and pushes d as
// its only descriptor.
func (p *Pop) ReplaceAll(d *Descriptor, view string) {
	if d == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	v := p.viewLocked(view)
	cancelled := p.drainLocked(v)

	p.prepareLocked(d)
	p.startLocked(v, d)
	v.stack = append(v.stack, d)

	p.logger.Debug("replaced all popups", "view", v.name, "id", d.ID, "cancelled_timers", cancelled)
	p.notifyLocked(ChangeTypeReplaceAll, v)
}

// Clear empties a view, cancelling every timer on it.
func (p *Pop) Clear(view string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	v := p.viewLocked(view)
	if len(v.stack) == 0 {
		return
	}
	cancelled := p.drainLocked(v)

	p.logger.Debug("cleared view", "view", v.name, "cancelled_timers", cancelled)
	p.notifyLocked(ChangeTypeClear, v)
}

// Close cancels every timer in every view and closes all subscriptions.
// The engine stays usable for reads; timers started afterwards still run.
func (p *Pop) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true

	for _, v := range p.views {
		for _, d := range v.stack {
			p.timers.cancel(d)
		}
	}
	for _, ch := range p.subscribers {
		close(ch)
	}
	p.subscribers = nil
}

// prepareLocked assigns an ID and drops any countdown left over from an
// earlier life of d, so that push and replace always start fresh.
func (p *Pop) prepareLocked(d *Descriptor) {
	if d.ID == "" {
		d.ID = newID(p.clock.Now())
	}
	p.timers.cancel(d)
}

func (p *Pop) startLocked(v *View, d *Descriptor) {
	name := v.name
	p.timers.startOrResume(d, func(gen uint64) {
		p.expire(name, d, gen)
	})
}

func (p *Pop) popLocked(v *View, typ ChangeType) {
	top := v.popLocked()
	if top == nil {
		return
	}
	p.timers.cancel(top)

	next := v.topLocked()
	if next != nil {
		if p.timers.startOrResume(next, func(gen uint64) { p.expire(v.name, next, gen) }) {
			p.logger.Debug("resumed exposed popup", "view", v.name, "id", next.ID, "remaining", next.timer.remaining)
		}
	}

	p.logger.Debug("popped popup", "view", v.name, "id", top.ID, "reason", typ.String(), "depth", len(v.stack))
	p.notifyLocked(typ, v)
}

// drainLocked removes every descriptor from v, cancelling their timers.
// It returns how many countdowns were discarded.
func (p *Pop) drainLocked(v *View) int {
	cancelled := 0
	for d := v.popLocked(); d != nil; d = v.popLocked() {
		if p.timers.cancel(d) {
			cancelled++
		}
	}
	return cancelled
}

// expire runs when a countdown elapses. The pop only happens if d is still
// the top of the same view and the countdown was not superseded; a callback
// that lost a race with an explicit pop, replace or clear is ignored.
func (p *Pop) expire(view string, d *Descriptor, gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	v, ok := p.views[view]
	if !ok || v.topLocked() != d || d.timer.handle == nil || d.timer.gen != gen {
		p.logger.Debug("ignored stale popup timer", "view", view, "id", d.ID)
		return
	}
	d.timer.handle = nil
	p.popLocked(v, ChangeTypeExpire)
}
