// Package notif is a convenience layer for pushing short-lived
// notifications onto a dedicated view of a pop engine.
package notif

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jmylchreest/popstack/internal/clock"
	"github.com/jmylchreest/popstack/internal/pop"
)

// Defaults for the notification view.
const (
	DefaultView        = "notif"
	DefaultTimeout     = 2000 * time.Millisecond
	DefaultMinInterval = 5 * time.Second
)

// Prop keys set on every notification descriptor.
const (
	PropMessage = "message"
	PropLevel   = "level"
)

// Level indicates the severity of a notification.
type Level string

const (
	LevelLog   Level = "log"
	LevelDone  Level = "done"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Levels returns all valid levels.
func Levels() []Level {
	return []Level{LevelLog, LevelDone, LevelWarn, LevelError}
}

// ParseLevel converts a level name, case-insensitively.
func ParseLevel(s string) (Level, error) {
	for _, l := range Levels() {
		if strings.EqualFold(s, string(l)) {
			return l, nil
		}
	}
	return "", fmt.Errorf("invalid level %q, must be one of: %v", s, Levels())
}

// Notifier pushes notifications onto a view of a pop engine.
type Notifier struct {
	pop       *pop.Pop
	view      string
	component any
	logger    *slog.Logger

	mu             sync.Mutex
	timeout        time.Duration
	minInterval    time.Duration
	lastNotifyTime map[string]time.Time
	clock          clock.Clock
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithView sets the view notifications are pushed to.
func WithView(name string) Option {
	return func(n *Notifier) {
		if name != "" {
			n.view = name
		}
	}
}

// WithTimeout sets the default time to live of a notification.
func WithTimeout(d time.Duration) Option {
	return func(n *Notifier) { n.timeout = d }
}

// WithComponent sets the renderable attached to every notification.
func WithComponent(c any) Option {
	return func(n *Notifier) { n.component = c }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Notifier) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithClock sets the clock used for the NotifyKeyed rate limit.
// By default the engine's clock is used.
func WithClock(c clock.Clock) Option {
	return func(n *Notifier) {
		if c != nil {
			n.clock = c
		}
	}
}

// WithMinInterval sets how long NotifyKeyed suppresses repeats of a key.
func WithMinInterval(d time.Duration) Option {
	return func(n *Notifier) { n.minInterval = d }
}

// New creates a Notifier and makes sure its view exists on p.
func New(p *pop.Pop, opts ...Option) *Notifier {
	n := &Notifier{
		pop:            p,
		view:           DefaultView,
		logger:         slog.Default(),
		timeout:        DefaultTimeout,
		minInterval:    DefaultMinInterval,
		lastNotifyTime: make(map[string]time.Time),
		clock:          clock.System,
	}
	if p != nil {
		n.clock = p.Clock()
	}
	for _, opt := range opts {
		opt(n)
	}
	if p != nil {
		p.InitView(n.view)
	}
	return n
}

// View returns the name of the notification view.
func (n *Notifier) View() string {
	return n.view
}

// Timeout returns the current default time to live.
func (n *Notifier) Timeout() time.Duration {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.timeout
}

// SetTimeout changes the default time to live for later notifications.
func (n *Notifier) SetTimeout(d time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.timeout = d
}

// SetMinInterval changes the NotifyKeyed rate limit.
func (n *Notifier) SetMinInterval(d time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = d
}

// Push adds a notification on top of the view and returns its descriptor.
// The optional timeout overrides the default; zero keeps it until popped.
func (n *Notifier) Push(message string, level Level, timeout ...time.Duration) *pop.Descriptor {
	if n.pop == nil {
		return nil
	}
	ttl := n.Timeout()
	if len(timeout) > 0 {
		ttl = timeout[0]
	}

	d := &pop.Descriptor{
		Component: n.component,
		Props: map[string]any{
			PropMessage: message,
			PropLevel:   level,
		},
		Timeout: ttl,
	}
	n.pop.Push(d, n.view)

	n.logger.Debug("pushed notification", "view", n.view, "id", d.ID, "level", level, "timeout", ttl)
	return d
}

// PushError pushes err as an error notification.
func (n *Notifier) PushError(err error, timeout ...time.Duration) *pop.Descriptor {
	if err == nil {
		return nil
	}
	return n.Push(err.Error(), LevelError, timeout...)
}

// Pop removes the top notification.
func (n *Notifier) Pop() {
	if n.pop == nil {
		return
	}
	n.pop.Pop(n.view)
}

// Error pushes an error notification.
func (n *Notifier) Error(message string, timeout ...time.Duration) *pop.Descriptor {
	return n.Push(message, LevelError, timeout...)
}

// Done pushes a completion notification.
func (n *Notifier) Done(message string, timeout ...time.Duration) *pop.Descriptor {
	return n.Push(message, LevelDone, timeout...)
}

// Warn pushes a warning notification.
func (n *Notifier) Warn(message string, timeout ...time.Duration) *pop.Descriptor {
	return n.Push(message, LevelWarn, timeout...)
}

// Log pushes an informational notification.
func (n *Notifier) Log(message string, timeout ...time.Duration) *pop.Descriptor {
	return n.Push(message, LevelLog, timeout...)
}

// NotifyKeyed pushes a notification unless one with the same key was pushed
// within the minimum interval. It reports whether the notification was pushed.
func (n *Notifier) NotifyKeyed(key, message string, level Level) bool {
	n.mu.Lock()
	now := n.clock.Now()
	if last, ok := n.lastNotifyTime[key]; ok && now.Sub(last) < n.minInterval {
		n.mu.Unlock()
		n.logger.Debug("notification rate-limited", "key", key, "message", message)
		return false
	}
	n.lastNotifyTime[key] = now
	n.mu.Unlock()

	return n.Push(message, level) != nil
}

// NotifyConfigReloaded reports a successful configuration reload.
func (n *Notifier) NotifyConfigReloaded() {
	n.NotifyKeyed("config-reload", "Configuration reloaded", LevelDone)
}

// NotifyConfigError reports a configuration file that failed to load.
func (n *Notifier) NotifyConfigError(err error) {
	n.NotifyKeyed("config-error", "Failed to reload configuration: "+err.Error(), LevelWarn)
}
