package dbus

import (
	"errors"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/popstack/internal/notif"
)

const (
	// Interface is the bridge interface name.
	Interface = "io.github.jmylchreest.Popstack"
	// Path is the bridge object path.
	Path = "/io/github/jmylchreest/Popstack"
	// BusName is the bus name to claim.
	BusName = "io.github.jmylchreest.Popstack"

	// ErrorName is the D-Bus error name returned by failed bridge calls.
	ErrorName = Interface + ".Error"
)

// ErrNotRunning is returned when the server has no bus connection.
var ErrNotRunning = errors.New("not connected to D-Bus")

// BridgeError is a failure on either side of the bridge.
type BridgeError struct {
	Message string
	Cause   error
}

func (e *BridgeError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *BridgeError) Unwrap() error {
	return e.Cause
}

// dbusError converts err into the error returned to a D-Bus caller.
func dbusError(err error) *dbus.Error {
	return dbus.NewError(ErrorName, []any{err.Error()})
}

// timeoutFromMillis converts a wire timeout. As with
// org.freedesktop.Notifications, -1 means the server default and 0 means
// never expire.
func timeoutFromMillis(ms int32, def time.Duration) time.Duration {
	if ms < 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

// Urgency levels defined by the freedesktop.org notification specification.
const (
	UrgencyLow      = 0
	UrgencyNormal   = 1
	UrgencyCritical = 2
)

// DBusNotification is an observed org.freedesktop.Notifications.Notify call.
type DBusNotification struct {
	AppName       string
	Summary       string
	Body          string
	Hints         map[string]dbus.Variant
	ExpireTimeout int32 // -1 = server default, 0 = never expire
}

// Urgency extracts the urgency hint, defaulting to UrgencyNormal.
func (n *DBusNotification) Urgency() int {
	if v, ok := n.Hints["urgency"]; ok {
		if b, ok := v.Value().(byte); ok {
			return int(b)
		}
	}
	return UrgencyNormal
}

// Transient returns true if the transient hint is set.
func (n *DBusNotification) Transient() bool {
	if v, ok := n.Hints["transient"]; ok {
		if b, ok := v.Value().(bool); ok {
			return b
		}
	}
	return false
}

// Level maps the urgency onto a notification level.
func (n *DBusNotification) Level() notif.Level {
	if n.Urgency() >= UrgencyCritical {
		return notif.LevelError
	}
	return notif.LevelLog
}

// Message renders the notification as a single toast line.
func (n *DBusNotification) Message() string {
	msg := n.Summary
	if n.AppName != "" {
		msg = n.AppName + ": " + msg
	}
	if n.Body != "" {
		msg += " - " + n.Body
	}
	return msg
}
