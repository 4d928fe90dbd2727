// Package tui renders pop views with Bubble Tea.
package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/popstack/internal/pop"
)

// ErrInvalidDescriptor is returned when the top descriptor of a view carries
// a Component that cannot be rendered.
var ErrInvalidDescriptor = errors.New("descriptor component does not implement tui.Component")

// RenderContext is what a Component receives on every render.
type RenderContext struct {
	View       string
	Width      int
	Height     int
	Props      map[string]any
	Descriptor *pop.Descriptor
	Remaining  time.Duration
}

// String returns a prop as a string, or "" when unset.
func (c RenderContext) String(key string) string {
	v, ok := c.Props[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Component is anything that can draw the top descriptor of a view.
type Component interface {
	View(ctx RenderContext) string
}

// Emitter raises a named event on the descriptor being rendered.
type Emitter func(event string, args ...any)

// Interactive components receive key presses while they are on top.
// HandleKey reports whether it consumed the key.
type Interactive interface {
	HandleKey(msg tea.KeyMsg, emit Emitter) (tea.Cmd, bool)
}

// ChangedMsg is delivered when the engine reports a change to any view.
type ChangedMsg struct {
	pop.ChangeEvent
}

// WatchChanges waits for the next engine change event.
// Re-issue the command after each ChangedMsg to keep watching.
func WatchChanges(ch <-chan pop.ChangeEvent) tea.Cmd {
	return func() tea.Msg {
		if ch == nil {
			return nil
		}
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return ChangedMsg{ChangeEvent: ev}
	}
}

// rect is a screen region in cells.
type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// PopView draws the topmost descriptor of one named view.
type PopView struct {
	pop    *pop.Pop
	name   string
	logger *slog.Logger

	// Wrap draws the component in a bordered box centred on screen that
	// closes on a click outside the box or on the Back key.
	Wrap bool
	// Props are merged under the descriptor's own props.
	Props map[string]any
	// Back closes a wrapped view.
	Back key.Binding

	width  int
	height int
	box    rect
}

// PopViewOption configures a PopView.
type PopViewOption func(*PopView)

// WithWrap enables the bordered wrapper.
func WithWrap(wrap bool) PopViewOption {
	return func(v *PopView) { v.Wrap = wrap }
}

// WithProps sets props passed to every component rendered by the view.
func WithProps(props map[string]any) PopViewOption {
	return func(v *PopView) { v.Props = props }
}

// WithViewLogger sets the logger.
func WithViewLogger(logger *slog.Logger) PopViewOption {
	return func(v *PopView) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// NewPopView creates a view adapter for the named view.
func NewPopView(p *pop.Pop, name string, opts ...PopViewOption) *PopView {
	if name == "" {
		name = pop.DefaultView
	}
	v := &PopView{
		pop:    p,
		name:   name,
		logger: slog.Default(),
		Back:   DefaultKeyMap().Back,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Name returns the view name.
func (v *PopView) Name() string {
	return v.name
}

// SetSize sets the screen size used for layout.
func (v *PopView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// Active reports whether the view has something to draw.
func (v *PopView) Active() bool {
	return v.pop.Top(v.name) != nil
}

// Emit raises event on the current top descriptor. A "close" event calls the
// descriptor's close handler when it has one and pops the view otherwise.
// Other events go to the matching handler and are dropped when there is none.
func (v *PopView) Emit(event string, args ...any) {
	top := v.pop.Top(v.name)
	if top == nil {
		return
	}
	v.emitFor(top)(event, args...)
}

// Close closes the current top descriptor.
func (v *PopView) Close() {
	v.Emit(pop.EventClose)
}

func (v *PopView) emitFor(d *pop.Descriptor) Emitter {
	return func(event string, args ...any) {
		if h, ok := d.Handler(event); ok {
			h(args...)
			return
		}
		if event != pop.EventClose {
			v.logger.Debug("unhandled popup event", "view", v.name, "id", d.ID, "event", event)
			return
		}
		// Only pop if d is still the one on top.
		if v.pop.Top(v.name) == d {
			v.pop.Pop(v.name)
		}
	}
}

// HandleKey routes a key press to the top component. Unconsumed Back keys
// close a wrapped view. It reports whether the key was consumed.
func (v *PopView) HandleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	top := v.pop.Top(v.name)
	if top == nil {
		return nil, false
	}
	if c, ok := top.Component.(Interactive); ok {
		if cmd, handled := c.HandleKey(msg, v.emitFor(top)); handled {
			return cmd, true
		}
	}
	if v.Wrap && key.Matches(msg, v.Back) {
		v.emitFor(top)(pop.EventClose)
		return nil, true
	}
	return nil, false
}

// HandleMouse closes a wrapped view when the overlay outside its box is
// clicked. It reports whether the click was consumed.
func (v *PopView) HandleMouse(msg tea.MouseMsg) bool {
	if !v.Wrap || msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return false
	}
	top := v.pop.Top(v.name)
	if top == nil {
		return false
	}
	if v.box.contains(msg.X, msg.Y) {
		return false
	}
	v.emitFor(top)(pop.EventClose)
	return true
}

// Render draws the top component without any placement.
// It returns "" when the view is empty.
func (v *PopView) Render() (string, error) {
	top := v.pop.Top(v.name)
	if top == nil {
		return "", nil
	}
	c, ok := top.Component.(Component)
	if !ok {
		return "", fmt.Errorf("view %q, descriptor %s (%T): %w", v.name, top.ID, top.Component, ErrInvalidDescriptor)
	}

	props := make(map[string]any, len(v.Props)+len(top.Props))
	maps.Copy(props, v.Props)
	maps.Copy(props, top.Props)

	return c.View(RenderContext{
		View:       v.name,
		Width:      v.width,
		Height:     v.height,
		Props:      props,
		Descriptor: top,
		Remaining:  v.pop.Remaining(top),
	}), nil
}

// View returns the layer to compose over the base screen. Wrapped views are
// boxed and centred on a full-screen layer; other views return the raw
// component output. Render errors are logged and drawn inline.
func (v *PopView) View() string {
	content, err := v.Render()
	if err != nil {
		v.logger.Error("failed to render popup", "view", v.name, "error", err)
		content = errorStyle.Render("invalid popup: " + err.Error())
	}
	if content == "" {
		v.box = rect{}
		return ""
	}
	if !v.Wrap {
		return content
	}

	box := wrapperStyle.Render(content)
	layer, r := Center(box, v.width, v.height)
	v.box = r
	return layer
}

var (
	wrapperStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)
