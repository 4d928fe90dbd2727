package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jmylchreest/popstack/internal/notif"
	"github.com/jmylchreest/popstack/internal/pop"
)

// Dialog prop keys.
const (
	PropTitle  = "title"
	PropBody   = "body"
	PropFooter = "footer"
)

// EventConfirm is emitted by Dialog when it is accepted.
const EventConfirm = "confirm"

// levelStyles holds the badge style for each notification level.
var levelStyles = map[notif.Level]lipgloss.Style{
	notif.LevelLog:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	notif.LevelDone:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	notif.LevelWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	notif.LevelError: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
}

var levelIcons = map[notif.Level]string{
	notif.LevelLog:   "i",
	notif.LevelDone:  "✓",
	notif.LevelWarn:  "!",
	notif.LevelError: "✗",
}

// Notification renders a one-message toast styled by its level.
type Notification struct {
	Width int
}

// View implements Component.
func (n Notification) View(ctx RenderContext) string {
	level, err := notif.ParseLevel(ctx.String(notif.PropLevel))
	if err != nil {
		level = notif.LevelLog
	}
	style := levelStyles[level]

	width := n.Width
	if width <= 0 {
		width = 40
	}
	inner := width - 4

	msg := strings.ReplaceAll(ctx.String(notif.PropMessage), "\n", " ")
	line := style.Render(levelIcons[level]) + " " + ansi.Truncate(msg, inner-2, "…")

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.GetForeground()).
		Padding(0, 1).
		Width(width - 2).
		Render(line)
}

// Dialog renders a title, body and footer. Enter emits "confirm" then
// "close".
type Dialog struct {
	Width   int
	Confirm key.Binding
}

// NewDialog creates a dialog of the given width.
func NewDialog(width int) Dialog {
	return Dialog{
		Width: width,
		Confirm: key.NewBinding(
			key.WithKeys("enter", "y"),
			key.WithHelp("enter", "confirm"),
		),
	}
}

var (
	dialogTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dialogFooterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// View implements Component.
func (d Dialog) View(ctx RenderContext) string {
	width := d.Width
	if width <= 0 {
		width = 40
	}

	var lines []string
	if title := ctx.String(PropTitle); title != "" {
		lines = append(lines, dialogTitleStyle.Render(ansi.Truncate(title, width, "…")), "")
	}
	if body := ctx.String(PropBody); body != "" {
		lines = append(lines, lipgloss.NewStyle().Width(width).Render(body))
	}

	footer := ctx.String(PropFooter)
	if footer == "" {
		footer = "enter confirm · esc close"
	}
	lines = append(lines, "", dialogFooterStyle.Render(footer))

	return strings.Join(lines, "\n")
}

// HandleKey implements Interactive.
func (d Dialog) HandleKey(msg tea.KeyMsg, emit Emitter) (tea.Cmd, bool) {
	if key.Matches(msg, d.Confirm) {
		emit(EventConfirm)
		emit(pop.EventClose)
		return nil, true
	}
	return nil, false
}
