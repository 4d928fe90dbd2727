package notif

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/popstack/internal/clock"
	"github.com/jmylchreest/popstack/internal/pop"
)

func newTestNotifier(t *testing.T, opts ...Option) (*Notifier, *pop.Pop, *clock.Manual) {
	t.Helper()
	c := clock.NewManual(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	p := pop.New(pop.WithClock(c))
	t.Cleanup(p.Close)
	return New(p, opts...), p, c
}

func TestNew_EnsuresView(t *testing.T) {
	_, p, _ := newTestNotifier(t)
	assert.Contains(t, p.Views(), DefaultView)

	n := New(p, WithView("toasts"))
	assert.Equal(t, "toasts", n.View())
	assert.Contains(t, p.Views(), "toasts")
}

func TestPush_Shape(t *testing.T) {
	comp := struct{ name string }{"toast"}
	n, p, _ := newTestNotifier(t, WithComponent(comp))

	d := n.Push("saved", LevelDone)
	require.NotNil(t, d)
	assert.Same(t, d, p.Top(DefaultView))
	assert.Equal(t, comp, d.Component)
	assert.Equal(t, "saved", d.Props[PropMessage])
	assert.Equal(t, LevelDone, d.Props[PropLevel])
	assert.Equal(t, DefaultTimeout, d.Timeout)

	// the default view is untouched
	assert.Equal(t, 0, p.Len(pop.DefaultView))
}

func TestPush_DefaultTimeoutExpires(t *testing.T) {
	n, p, c := newTestNotifier(t)
	n.Log("hello")

	c.Advance(1999 * time.Millisecond)
	assert.Equal(t, 1, p.Len(DefaultView))
	c.Advance(time.Millisecond)
	assert.Equal(t, 0, p.Len(DefaultView))
}

func TestPush_TimeoutOverride(t *testing.T) {
	n, p, c := newTestNotifier(t)
	n.Warn("sticky", 0)
	c.Advance(time.Hour)
	assert.Equal(t, 1, p.Len(DefaultView))

	n.Pop()
	assert.Equal(t, 0, p.Len(DefaultView))
}

func TestLevelHelpers(t *testing.T) {
	n, _, _ := newTestNotifier(t)
	tests := []struct {
		push func(string, ...time.Duration) *pop.Descriptor
		want Level
	}{
		{n.Error, LevelError},
		{n.Done, LevelDone},
		{n.Warn, LevelWarn},
		{n.Log, LevelLog},
	}
	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			d := tt.push("msg")
			assert.Equal(t, tt.want, d.Props[PropLevel])
		})
	}
}

func TestPushError(t *testing.T) {
	n, _, _ := newTestNotifier(t)
	assert.Nil(t, n.PushError(nil))

	d := n.PushError(errors.New("disk full"))
	require.NotNil(t, d)
	assert.Equal(t, "disk full", d.Props[PropMessage])
	assert.Equal(t, LevelError, d.Props[PropLevel])
}

func TestSetTimeout(t *testing.T) {
	n, _, _ := newTestNotifier(t, WithTimeout(time.Second))
	assert.Equal(t, time.Second, n.Timeout())
	n.SetTimeout(3 * time.Second)
	assert.Equal(t, 3*time.Second, n.Push("x", LevelLog).Timeout)
}

func TestNotifyKeyed_RateLimits(t *testing.T) {
	n, p, c := newTestNotifier(t, WithMinInterval(5*time.Second), WithTimeout(0))

	assert.True(t, n.NotifyKeyed("k", "first", LevelLog))
	assert.False(t, n.NotifyKeyed("k", "again", LevelLog))
	assert.True(t, n.NotifyKeyed("other", "different key", LevelLog))

	c.Advance(4 * time.Second)
	assert.False(t, n.NotifyKeyed("k", "too soon", LevelLog))

	c.Advance(time.Second)
	assert.True(t, n.NotifyKeyed("k", "later", LevelLog))
	assert.Equal(t, 3, p.Len(DefaultView))
}

func TestNotifyKeyed_WithClock(t *testing.T) {
	own := clock.NewManual(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	n, _, engine := newTestNotifier(t, WithClock(own), WithMinInterval(time.Second), WithTimeout(0))

	assert.True(t, n.NotifyKeyed("k", "first", LevelLog))
	engine.Advance(time.Minute)
	assert.False(t, n.NotifyKeyed("k", "engine time does not count", LevelLog))

	own.Advance(time.Second)
	assert.True(t, n.NotifyKeyed("k", "own clock moved", LevelLog))
}

func TestNotifyConfigEvents(t *testing.T) {
	n, p, _ := newTestNotifier(t)
	n.NotifyConfigReloaded()
	n.NotifyConfigError(errors.New("bad position"))

	top := p.Top(DefaultView)
	require.NotNil(t, top)
	assert.Equal(t, LevelWarn, top.Props[PropLevel])
	assert.Contains(t, top.Props[PropMessage], "bad position")
	assert.Equal(t, 2, p.Len(DefaultView))
}

func TestNilEngine(t *testing.T) {
	n := New(nil)
	assert.Nil(t, n.Log("x"))
	assert.NotPanics(t, n.Pop)
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, LevelWarn, l)

	_, err = ParseLevel("fatal")
	assert.Error(t, err)
}
