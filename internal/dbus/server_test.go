package dbus

import (
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/popstack/internal/clock"
	"github.com/jmylchreest/popstack/internal/notif"
	"github.com/jmylchreest/popstack/internal/pop"
)

func newTestServer(t *testing.T) (*Server, *pop.Pop, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	p := pop.New(pop.WithClock(clk))
	t.Cleanup(p.Close)
	return NewServer(p, notif.New(p), nil), p, clk
}

func TestServer_Notify(t *testing.T) {
	s, p, clk := newTestServer(t)

	id, derr := s.Notify("hello", "warn", 1000)
	require.Nil(t, derr)

	top := p.Top(notif.DefaultView)
	require.NotNil(t, top)
	assert.Equal(t, id, top.ID)
	assert.Equal(t, "hello", top.Prop(notif.PropMessage))
	assert.Equal(t, notif.LevelWarn, top.Prop(notif.PropLevel))
	assert.Equal(t, time.Second, top.Timeout)

	clk.Advance(time.Second)
	assert.Equal(t, 0, p.Len(notif.DefaultView))
}

func TestServer_NotifyTimeouts(t *testing.T) {
	s, p, _ := newTestServer(t)

	_, derr := s.Notify("default", "", -1)
	require.Nil(t, derr)
	assert.Equal(t, notif.DefaultTimeout, p.Top(notif.DefaultView).Timeout)
	assert.Equal(t, notif.LevelLog, p.Top(notif.DefaultView).Prop(notif.PropLevel))

	_, derr = s.Notify("sticky", "log", 0)
	require.Nil(t, derr)
	assert.Equal(t, time.Duration(0), p.Top(notif.DefaultView).Timeout)
}

func TestServer_NotifyInvalidLevel(t *testing.T) {
	s, p, _ := newTestServer(t)

	_, derr := s.Notify("hello", "loud", -1)
	require.NotNil(t, derr)
	assert.Equal(t, ErrorName, derr.Name)
	assert.Contains(t, derr.Error(), "invalid level")
	assert.Equal(t, 0, p.Len(notif.DefaultView))
}

func TestServer_ViewMethods(t *testing.T) {
	s, p, _ := newTestServer(t)
	p.Push(&pop.Descriptor{ID: "a"}, "side")
	p.Push(&pop.Descriptor{ID: "b"}, "side")

	depth, derr := s.Depth("side")
	require.Nil(t, derr)
	assert.Equal(t, uint32(2), depth)

	views, derr := s.Views()
	require.Nil(t, derr)
	assert.Equal(t, []string{"default", "notif", "side"}, views)

	require.Nil(t, s.Pop("side"))
	assert.Equal(t, "a", p.Top("side").ID)

	require.Nil(t, s.Clear("side"))
	assert.Equal(t, 0, p.Len("side"))
}

func TestServer_EmitWithoutConnection(t *testing.T) {
	s, _, _ := newTestServer(t)
	assert.ErrorIs(t, s.EmitChanged("default", 0), ErrNotRunning)
	assert.NoError(t, s.Stop())
}

func TestServer_ForwardChangesStops(t *testing.T) {
	s, p, _ := newTestServer(t)
	ch := p.Subscribe()
	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		s.forwardChanges(ch, stop)
		close(done)
	}()

	// Without a connection each emit fails and is logged.
	p.Push(&pop.Descriptor{ID: "a"}, "")
	close(stop)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("forwardChanges did not stop")
	}
}

func TestIntrospection(t *testing.T) {
	var names []string
	for _, m := range bridgeMethods() {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"Notify", "Pop", "Clear", "Depth", "Views"}, names)

	signals := bridgeSignals()
	require.Len(t, signals, 1)
	assert.Equal(t, "Changed", signals[0].Name)
}

func notifyMessage(body ...any) *dbus.Message {
	return &dbus.Message{
		Type: dbus.TypeMethodCall,
		Headers: map[dbus.HeaderField]dbus.Variant{
			dbus.FieldInterface: dbus.MakeVariant(freedesktopInterface),
			dbus.FieldMember:    dbus.MakeVariant("Notify"),
		},
		Body: body,
	}
}

func TestMonitor_MirrorsNotify(t *testing.T) {
	_, p, _ := newTestServer(t)
	m := NewMonitor(notif.New(p), nil)

	msg := notifyMessage(
		"mail", uint32(0), "", "New mail", "from Sam",
		[]string{}, map[string]dbus.Variant{"urgency": dbus.MakeVariant(byte(2))}, int32(3000),
	)
	n, ok := m.parseNotify(msg)
	require.True(t, ok)
	m.mirror(n)

	top := p.Top(notif.DefaultView)
	require.NotNil(t, top)
	assert.Equal(t, "mail: New mail - from Sam", top.Prop(notif.PropMessage))
	assert.Equal(t, notif.LevelError, top.Prop(notif.PropLevel))
	assert.Equal(t, 3*time.Second, top.Timeout)
}

func TestMonitor_IgnoresOtherTraffic(t *testing.T) {
	_, p, _ := newTestServer(t)
	m := NewMonitor(notif.New(p), nil)

	tests := []struct {
		name string
		msg  *dbus.Message
	}{
		{"signal", &dbus.Message{Type: dbus.TypeSignal}},
		{"other member", &dbus.Message{
			Type: dbus.TypeMethodCall,
			Headers: map[dbus.HeaderField]dbus.Variant{
				dbus.FieldInterface: dbus.MakeVariant(freedesktopInterface),
				dbus.FieldMember:    dbus.MakeVariant("CloseNotification"),
			},
		}},
		{"short body", notifyMessage("app", uint32(0))},
		{"wrong types", notifyMessage(1, uint32(0), "", "s", "b", []string{}, map[string]dbus.Variant{}, int32(-1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := m.parseNotify(tt.msg)
			assert.False(t, ok)
		})
	}
}
