package dbus

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/jmylchreest/popstack/internal/notif"
	"github.com/jmylchreest/popstack/internal/pop"
)

// Server exports a pop engine on the session bus.
type Server struct {
	conn     *dbus.Conn
	pop      *pop.Pop
	notifier *notif.Notifier
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	changes <-chan pop.ChangeEvent
	stopCh  chan struct{}
}

// NewServer creates a server for p. Notify calls go through n.
func NewServer(p *pop.Pop, n *notif.Notifier, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		pop:      p,
		notifier: n,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start connects to the session bus, exports the bridge object and starts
// forwarding engine changes as Changed signals.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.mu.Unlock()

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	s.conn = conn

	if err := conn.Export(s, Path, Interface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: Path,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    Interface,
				Methods: bridgeMethods(),
				Signals: bridgeSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), Path,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(BusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken", BusName)
	}

	s.mu.Lock()
	s.running = true
	s.stopCh = make(chan struct{})
	s.changes = s.pop.Subscribe()
	s.mu.Unlock()

	go s.forwardChanges(s.changes, s.stopCh)

	s.logger.Info("D-Bus bridge started", "interface", Interface, "path", Path)
	return nil
}

// Stop releases the bus name and stops forwarding changes.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	close(s.stopCh)
	s.running = false
	s.pop.Unsubscribe(s.changes)

	if s.conn != nil {
		if _, err := s.conn.ReleaseName(BusName); err != nil {
			s.logger.Warn("failed to release bus name", "error", err)
		}
		// The session bus connection is shared; leave it open.
	}

	s.logger.Info("D-Bus bridge stopped")
	return nil
}

// Notify pushes a notification and returns its descriptor ID.
// D-Bus method: Notify(ssi) -> s
func (s *Server) Notify(message, level string, timeoutMs int32) (string, *dbus.Error) {
	s.logger.Debug("Notify called", "message", message, "level", level, "timeout_ms", timeoutMs)

	lvl := notif.LevelLog
	if level != "" {
		var err error
		if lvl, err = notif.ParseLevel(level); err != nil {
			return "", dbusError(err)
		}
	}

	d := s.notifier.Push(message, lvl, timeoutFromMillis(timeoutMs, s.notifier.Timeout()))
	if d == nil {
		return "", dbusError(&BridgeError{Message: "notification was not pushed"})
	}
	return d.ID, nil
}

// Pop removes the top descriptor of a view.
// D-Bus method: Pop(s) -> nothing
func (s *Server) Pop(view string) *dbus.Error {
	s.logger.Debug("Pop called", "view", view)
	s.pop.Pop(view)
	return nil
}

// Clear empties a view.
// D-Bus method: Clear(s) -> nothing
func (s *Server) Clear(view string) *dbus.Error {
	s.logger.Debug("Clear called", "view", view)
	s.pop.Clear(view)
	return nil
}

// Depth returns the number of descriptors stacked on a view.
// D-Bus method: Depth(s) -> u
func (s *Server) Depth(view string) (uint32, *dbus.Error) {
	return uint32(s.pop.Len(view)), nil
}

// Views returns the names of all views.
// D-Bus method: Views() -> as
func (s *Server) Views() ([]string, *dbus.Error) {
	return s.pop.Views(), nil
}

// bridgeMethods returns the D-Bus method introspection data.
func bridgeMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "Notify",
			Args: []introspect.Arg{
				{Name: "message", Type: "s", Direction: "in"},
				{Name: "level", Type: "s", Direction: "in"},
				{Name: "timeout_ms", Type: "i", Direction: "in"},
				{Name: "id", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "Pop",
			Args: []introspect.Arg{
				{Name: "view", Type: "s", Direction: "in"},
			},
		},
		{
			Name: "Clear",
			Args: []introspect.Arg{
				{Name: "view", Type: "s", Direction: "in"},
			},
		},
		{
			Name: "Depth",
			Args: []introspect.Arg{
				{Name: "view", Type: "s", Direction: "in"},
				{Name: "depth", Type: "u", Direction: "out"},
			},
		},
		{
			Name: "Views",
			Args: []introspect.Arg{
				{Name: "views", Type: "as", Direction: "out"},
			},
		},
	}
}

// bridgeSignals returns the D-Bus signal introspection data.
func bridgeSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: "Changed",
			Args: []introspect.Arg{
				{Name: "view", Type: "s"},
				{Name: "depth", Type: "u"},
			},
		},
	}
}
