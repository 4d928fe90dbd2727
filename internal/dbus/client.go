package dbus

import (
	"time"

	"github.com/godbus/dbus/v5"
)

// Client calls a running bridge over the session bus.
type Client struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// NewClient connects to the session bus.
func NewClient() (*Client, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, &BridgeError{Message: "failed to connect to session bus", Cause: err}
	}
	return &Client{conn: conn, obj: conn.Object(BusName, Path)}, nil
}

// Notify pushes a notification. A negative timeout uses the server default.
func (c *Client) Notify(message, level string, timeout time.Duration) (string, error) {
	ms := int32(-1)
	if timeout >= 0 {
		ms = int32(timeout.Milliseconds())
	}

	var id string
	if err := c.call("Notify", message, level, ms).Store(&id); err != nil {
		return "", &BridgeError{Message: "Notify failed", Cause: err}
	}
	return id, nil
}

// Pop removes the top descriptor of a view.
func (c *Client) Pop(view string) error {
	if err := c.call("Pop", view).Err; err != nil {
		return &BridgeError{Message: "Pop failed", Cause: err}
	}
	return nil
}

// Clear empties a view.
func (c *Client) Clear(view string) error {
	if err := c.call("Clear", view).Err; err != nil {
		return &BridgeError{Message: "Clear failed", Cause: err}
	}
	return nil
}

// Depth returns the number of descriptors stacked on a view.
func (c *Client) Depth(view string) (uint32, error) {
	var depth uint32
	if err := c.call("Depth", view).Store(&depth); err != nil {
		return 0, &BridgeError{Message: "Depth failed", Cause: err}
	}
	return depth, nil
}

// Views returns the names of all views.
func (c *Client) Views() ([]string, error) {
	var views []string
	if err := c.call("Views").Store(&views); err != nil {
		return nil, &BridgeError{Message: "Views failed", Cause: err}
	}
	return views, nil
}

func (c *Client) call(method string, args ...any) *dbus.Call {
	return c.obj.Call(Interface+"."+method, 0, args...)
}
