package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/popstack/internal/config"
	"github.com/jmylchreest/popstack/internal/notif"
	"github.com/jmylchreest/popstack/internal/pop"
)

func newTestApp(t *testing.T) (App, *pop.Pop) {
	t.Helper()
	p, _ := newTestEngine(t)
	n := notif.New(p, notif.WithComponent(Notification{Width: 30}))

	cfg := config.DefaultConfig()
	cfg.Display.Position = string(config.PositionBottomRight)

	var m tea.Model = NewApp(cfg, p, n, nil)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m.(App), p
}

func send(t *testing.T, m App, msgs ...tea.Msg) App {
	t.Helper()
	var model tea.Model = m
	for _, msg := range msgs {
		model, _ = model.Update(msg)
	}
	return model.(App)
}

func TestApp_NotInitialised(t *testing.T) {
	p, _ := newTestEngine(t)
	m := NewApp(nil, p, notif.New(p), nil)
	assert.Equal(t, "Initializing...", m.View())
}

func TestApp_PushAndPopModals(t *testing.T) {
	m, p := newTestApp(t)

	m = send(t, m, runeKey("m"), runeKey("m"))
	require.Equal(t, 2, p.Len(pop.DefaultView))
	first := p.View(pop.DefaultView).Descriptors()[0]
	assert.Equal(t, pop.TimerPaused, p.TimerState(first))

	m = send(t, m, runeKey("r"))
	assert.Equal(t, 2, p.Len(pop.DefaultView))
	assert.Contains(t, p.Top(pop.DefaultView).Props[PropTitle], "Replaced")

	m = send(t, m, runeKey("R"))
	assert.Equal(t, 1, p.Len(pop.DefaultView))

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 0, p.Len(pop.DefaultView))

	view := ansi.Strip(m.View())
	assert.Contains(t, view, "popstack")
}

func TestApp_ConfirmModalPostsNotification(t *testing.T) {
	m, p := newTestApp(t)

	m = send(t, m, runeKey("m"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, 0, p.Len(pop.DefaultView))
	require.Equal(t, 1, p.Len(notif.DefaultView))
	assert.Contains(t, p.Top(notif.DefaultView).Props[notif.PropMessage], "confirmed")
	_ = m
}

func TestApp_NotificationsCycleLevels(t *testing.T) {
	m, p := newTestApp(t)

	m = send(t, m, runeKey("n"), runeKey("n"))
	require.Equal(t, 2, p.Len(notif.DefaultView))
	top := p.Top(notif.DefaultView)
	assert.Equal(t, notif.LevelDone, top.Props[notif.PropLevel])
	assert.Equal(t, "2nd notification", top.Props[notif.PropMessage])
	assert.Equal(t, notif.DefaultTimeout, top.Timeout)

	m = send(t, m, runeKey("N"))
	assert.Equal(t, 1, p.Len(notif.DefaultView))

	m = send(t, m, runeKey("m"), runeKey("c"))
	assert.Equal(t, 0, p.Len(notif.DefaultView))
	assert.Equal(t, 0, p.Len(pop.DefaultView))
}

func TestApp_ViewShowsPopups(t *testing.T) {
	m, _ := newTestApp(t)
	m = send(t, m, runeKey("n"), runeKey("m"))

	view := ansi.Strip(m.View())
	assert.Contains(t, view, "1st notification")
	assert.Contains(t, view, "Pushed modal #2")
	assert.Contains(t, view, "running")
}

func TestApp_ChangedMsgRecordsEvent(t *testing.T) {
	m, _ := newTestApp(t)
	m = send(t, m, ChangedMsg{ChangeEvent: pop.ChangeEvent{Type: pop.ChangeTypeExpire, View: "notif", Depth: 0}})

	require.NotNil(t, m.lastEvent)
	assert.Contains(t, ansi.Strip(m.View()), `last change: expire on "notif"`)
}

func TestApp_Quit(t *testing.T) {
	m, _ := newTestApp(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_ModalExpires(t *testing.T) {
	p, clk := newTestEngine(t)
	cfg := config.DefaultConfig()
	cfg.Modal.Timeout = config.Duration(time.Second)

	var model tea.Model = NewApp(cfg, p, notif.New(p), nil)
	model, _ = model.Update(runeKey("m"))
	require.Equal(t, 1, p.Len(pop.DefaultView))

	clk.Advance(time.Second)
	assert.Equal(t, 0, p.Len(pop.DefaultView))
}
