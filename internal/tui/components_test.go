package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/popstack/internal/notif"
	"github.com/jmylchreest/popstack/internal/pop"
)

func TestNotification_View(t *testing.T) {
	tests := []struct {
		name  string
		level any
		icon  string
	}{
		{"typed level", notif.LevelDone, "✓"},
		{"string level", "error", "✗"},
		{"unknown level", "shout", "i"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Notification{Width: 30}.View(RenderContext{Props: map[string]any{
				notif.PropMessage: "saved",
				notif.PropLevel:   tt.level,
			}})
			plain := ansi.Strip(out)
			assert.Contains(t, plain, tt.icon+" saved")
			assert.Equal(t, 30, lipgloss.Width(out))
		})
	}
}

func TestNotification_TruncatesLongMessages(t *testing.T) {
	out := Notification{Width: 20}.View(RenderContext{Props: map[string]any{
		notif.PropMessage: "this message is much longer than the toast",
	}})
	assert.Contains(t, ansi.Strip(out), "…")
	assert.Equal(t, 3, lipgloss.Height(out))
}

func TestDialog_View(t *testing.T) {
	out := ansi.Strip(NewDialog(30).View(RenderContext{Props: map[string]any{
		PropTitle: "Delete file?",
		PropBody:  "This cannot be undone.",
	}}))

	assert.Contains(t, out, "Delete file?")
	assert.Contains(t, out, "This cannot be undone.")
	assert.Contains(t, out, "enter confirm")
}

func TestDialog_ConfirmEmitsConfirmThenClose(t *testing.T) {
	var events []string
	emit := func(event string, _ ...any) { events = append(events, event) }

	d := NewDialog(30)
	_, handled := d.HandleKey(tea.KeyMsg{Type: tea.KeyEnter}, emit)
	assert.True(t, handled)
	assert.Equal(t, []string{EventConfirm, pop.EventClose}, events)

	_, handled = d.HandleKey(runeKey("x"), emit)
	assert.False(t, handled)
}

func TestDialog_ConfirmThroughPopView(t *testing.T) {
	p, _ := newTestEngine(t)
	v := NewPopView(p, "", WithWrap(true))
	confirmed := false
	p.Push(&pop.Descriptor{
		Component: NewDialog(30),
		Handlers:  map[string]pop.Handler{EventConfirm: func(...any) { confirmed = true }},
	}, "")

	_, handled := v.HandleKey(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, handled)
	assert.True(t, confirmed)
	assert.Equal(t, 0, p.Len(""))
}
