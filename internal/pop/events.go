package pop

// ChangeType indicates which operation mutated a view.
type ChangeType int

const (
	// ChangeTypePush indicates a descriptor was pushed.
	ChangeTypePush ChangeType = iota
	// ChangeTypePop indicates the top descriptor was removed by a caller.
	ChangeTypePop
	// ChangeTypeReplace indicates the top descriptor was replaced in place.
	ChangeTypeReplace
	// ChangeTypeReplaceAll indicates the stack was reset to one descriptor.
	ChangeTypeReplaceAll
	// ChangeTypeClear indicates the stack was emptied.
	ChangeTypeClear
	// ChangeTypeExpire indicates the top descriptor was removed by its timer.
	ChangeTypeExpire
	// ChangeTypeRelease indicates the view was released.
	ChangeTypeRelease
)

// String returns the string representation of ChangeType.
func (t ChangeType) String() string {
	switch t {
	case ChangeTypePush:
		return "push"
	case ChangeTypePop:
		return "pop"
	case ChangeTypeReplace:
		return "replace"
	case ChangeTypeReplaceAll:
		return "replace-all"
	case ChangeTypeClear:
		return "clear"
	case ChangeTypeExpire:
		return "expire"
	case ChangeTypeRelease:
		return "release"
	default:
		return "unknown"
	}
}

// ChangeEvent signals that a view's stack changed.
type ChangeEvent struct {
	Type  ChangeType
	View  string
	Depth int
	TopID string // empty when the view is empty
}

// subscriberBuffer is the default bound on how far a subscriber may lag
// before events drop.
const subscriberBuffer = 16

// Subscribe returns a channel that receives change events.
// Delivery never blocks the engine: when the channel is full the event is
// dropped, so subscribers should re-read state rather than replay events.
func (p *Pop) Subscribe() <-chan ChangeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch := make(chan ChangeEvent, p.bufferSize)
	if p.closed {
		close(ch)
		return ch
	}
	p.subscribers = append(p.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (p *Pop) Unsubscribe(ch <-chan ChangeEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, sub := range p.subscribers {
		if sub == ch {
			p.subscribers = append(p.subscribers[:i], p.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

// notifyLocked sends an event for v to every subscriber. Caller must hold the lock.
func (p *Pop) notifyLocked(typ ChangeType, v *View) {
	event := ChangeEvent{
		Type:  typ,
		View:  v.name,
		Depth: len(v.stack),
	}
	if top := v.topLocked(); top != nil {
		event.TopID = top.ID
	}
	for _, ch := range p.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}
