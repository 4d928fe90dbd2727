package pop

import (
	"slices"
	"sort"
)

// DefaultView is the view used when no name is given.
const DefaultView = "default"

// View is a named stack of descriptors, bottom to top.
// Its accessors read through the owning engine's lock.
type View struct {
	owner *Pop
	name  string
	stack []*Descriptor
}

// Name returns the view name.
func (v *View) Name() string {
	return v.name
}

// Len returns the number of stacked descriptors.
func (v *View) Len() int {
	v.owner.mu.Lock()
	defer v.owner.mu.Unlock()
	return len(v.stack)
}

// Top returns the topmost descriptor, or nil when the stack is empty.
func (v *View) Top() *Descriptor {
	v.owner.mu.Lock()
	defer v.owner.mu.Unlock()
	return v.topLocked()
}

// Descriptors returns a copy of the stack, bottom to top.
func (v *View) Descriptors() []*Descriptor {
	v.owner.mu.Lock()
	defer v.owner.mu.Unlock()
	return slices.Clone(v.stack)
}

func (v *View) topLocked() *Descriptor {
	if len(v.stack) == 0 {
		return nil
	}
	return v.stack[len(v.stack)-1]
}

func (v *View) popLocked() *Descriptor {
	top := v.topLocked()
	if top != nil {
		v.stack[len(v.stack)-1] = nil
		v.stack = v.stack[:len(v.stack)-1]
	}
	return top
}

func viewName(name string) string {
	if name == "" {
		return DefaultView
	}
	return name
}

// View returns the view called name, creating an empty one if needed.
// An empty name selects DefaultView.
func (p *Pop) View(name string) *View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewLocked(name)
}

// InitView makes sure the view called name exists.
func (p *Pop) InitView(name string) {
	p.View(name)
}

// ReleaseView removes a view, cancelling the timers of everything stacked
// on it. Releasing an unknown view does nothing. Releasing DefaultView
// empties it but leaves it registered.
func (p *Pop) ReleaseView(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	name = viewName(name)
	v, ok := p.views[name]
	if !ok {
		return
	}
	cancelled := p.drainLocked(v)
	delete(p.views, name)
	if name == DefaultView {
		p.viewLocked(DefaultView)
	}

	p.logger.Debug("released view", "view", name, "cancelled_timers", cancelled)
	p.notifyLocked(ChangeTypeRelease, v)
}

// Views returns the names of all existing views, sorted.
func (p *Pop) Views() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	names := make([]string, 0, len(p.views))
	for name := range p.views {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (p *Pop) viewLocked(name string) *View {
	name = viewName(name)
	v, ok := p.views[name]
	if !ok {
		v = &View{owner: p, name: name}
		p.views[name] = v
		p.logger.Debug("created view", "view", name)
	}
	return v
}
