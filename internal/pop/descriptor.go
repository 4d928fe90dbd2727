package pop

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Handler is a callback attached to a descriptor event, such as "close".
type Handler func(args ...any)

// EventClose is the event name whose handler replaces the default
// close-to-pop behaviour of a presentation adapter.
const EventClose = "close"

// Descriptor describes one stacked overlay.
// Component, Props and Handlers belong to the caller and are passed through
// untouched. The engine only reads Timeout and attaches its own timer state.
type Descriptor struct {
	ID        string
	Component any
	Props     map[string]any
	Handlers  map[string]Handler
	Timeout   time.Duration // <= 0 means no auto-dismiss

	timer timerState
}

// Handler returns the handler registered for event, if any.
func (d *Descriptor) Handler(event string) (Handler, bool) {
	if d == nil || d.Handlers == nil {
		return nil, false
	}
	h, ok := d.Handlers[event]
	return h, ok && h != nil
}

// Prop returns a prop value, or nil when unset.
func (d *Descriptor) Prop(key string) any {
	if d == nil || d.Props == nil {
		return nil
	}
	return d.Props[key]
}

func newID(now time.Time) string {
	return ulid.MustNew(ulid.Timestamp(now), rand.Reader).String()
}
