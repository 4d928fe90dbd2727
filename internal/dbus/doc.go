// Package dbus bridges a pop engine to the D-Bus session bus.
//
// Server exports the io.github.jmylchreest.Popstack interface so other
// processes can push notifications and inspect or pop views, and emits a
// Changed signal whenever a view's stack changes. Client calls that
// interface. Monitor passively mirrors org.freedesktop.Notifications
// traffic into a notification view.
package dbus
