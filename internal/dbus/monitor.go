package dbus

import (
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/popstack/internal/notif"
)

const (
	freedesktopInterface = "org.freedesktop.Notifications"
	notifyMatchRule      = "type='method_call',interface='org.freedesktop.Notifications',member='Notify'"
)

// Monitor passively observes desktop notification traffic and mirrors each
// Notify call into a notification view. It never claims the notification
// bus name, so it runs alongside the real notification daemon.
type Monitor struct {
	conn     *dbus.Conn
	dial     func() (*dbus.Conn, error)
	notifier *notif.Notifier
	logger   *slog.Logger
}

// NewMonitor creates a monitor that pushes onto n.
func NewMonitor(n *notif.Notifier, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		dial:     dbus.ConnectSessionBus,
		notifier: n,
		logger:   logger,
	}
}

// Start connects to the session bus and begins mirroring Notify calls.
// It uses a private connection because a monitoring connection can no
// longer make ordinary calls.
func (m *Monitor) Start() error {
	conn, err := m.dial()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	m.conn = conn

	err = conn.BusObject().Call(
		"org.freedesktop.DBus.Monitoring.BecomeMonitor",
		0,
		[]string{notifyMatchRule},
		uint32(0),
	).Err
	if err != nil {
		m.logger.Warn("bus refused monitor mode, falling back to eavesdrop", "error", err)
		if err := m.startWithAddMatch(); err != nil {
			m.conn.Close()
			m.conn = nil
			return err
		}
		return nil
	}

	m.logger.Info("mirroring desktop notifications", "mode", "monitor")
	go m.processMessages()
	return nil
}

// startWithAddMatch uses the older eavesdrop match rule.
func (m *Monitor) startWithAddMatch() error {
	err := m.conn.BusObject().Call(
		"org.freedesktop.DBus.AddMatch",
		0,
		notifyMatchRule+",eavesdrop='true'",
	).Err
	if err != nil {
		return fmt.Errorf("failed to add match rule (eavesdrop may require permissions): %w", err)
	}

	m.logger.Info("mirroring desktop notifications", "mode", "eavesdrop")
	go m.processMessages()
	return nil
}

// processMessages reads observed messages until the connection closes.
func (m *Monitor) processMessages() {
	ch := make(chan *dbus.Message, 100)
	m.conn.Eavesdrop(ch)

	for msg := range ch {
		if n, ok := m.parseNotify(msg); ok {
			m.mirror(n)
		}
	}
}

// parseNotify decodes a Notify method call:
// Notify(app_name, replaces_id, app_icon, summary, body, actions, hints, expire_timeout)
func (m *Monitor) parseNotify(msg *dbus.Message) (*DBusNotification, bool) {
	if msg.Type != dbus.TypeMethodCall {
		return nil, false
	}
	if iface, ok := msg.Headers[dbus.FieldInterface]; !ok || iface.Value() != freedesktopInterface {
		return nil, false
	}
	if member, ok := msg.Headers[dbus.FieldMember]; !ok || member.Value() != "Notify" {
		return nil, false
	}
	if len(msg.Body) < 8 {
		m.logger.Warn("skipping Notify call with short body", "body_len", len(msg.Body))
		return nil, false
	}

	n := &DBusNotification{ExpireTimeout: -1}
	var ok bool
	if n.AppName, ok = msg.Body[0].(string); !ok {
		m.logger.Warn("invalid app_name type")
		return nil, false
	}
	if n.Summary, ok = msg.Body[3].(string); !ok {
		m.logger.Warn("invalid summary type")
		return nil, false
	}
	if n.Body, ok = msg.Body[4].(string); !ok {
		m.logger.Warn("invalid body type")
		return nil, false
	}
	if hints, ok := msg.Body[6].(map[string]dbus.Variant); ok {
		n.Hints = hints
	}
	if timeout, ok := msg.Body[7].(int32); ok {
		n.ExpireTimeout = timeout
	}
	return n, true
}

// mirror pushes an observed notification onto the notification view.
func (m *Monitor) mirror(n *DBusNotification) {
	d := m.notifier.Push(n.Message(), n.Level(), timeoutFromMillis(n.ExpireTimeout, m.notifier.Timeout()))
	if d == nil {
		return
	}
	m.logger.Debug("mirrored notification", "app", n.AppName, "summary", n.Summary, "id", d.ID)
}

// Stop disconnects from the session bus.
func (m *Monitor) Stop() error {
	if m.conn != nil {
		return m.conn.Close()
	}
	return nil
}
