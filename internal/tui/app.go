package tui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/popstack/internal/config"
	"github.com/jmylchreest/popstack/internal/notif"
	"github.com/jmylchreest/popstack/internal/pop"
)

// statusInterval is how often the remaining-time status line refreshes.
const statusInterval = 250 * time.Millisecond

// App is the demo model: a base screen with a modal view centred on top and
// a notification view in a corner.
type App struct {
	// Configuration
	cfg    *config.Config
	pop    *pop.Pop
	notif  *notif.Notifier
	logger *slog.Logger

	// Views
	modal  *PopView
	toasts *PopView
	dialog Dialog

	// Components
	help help.Model
	keys KeyMap

	// State
	width     int
	height    int
	ready     bool
	showHelp  bool
	pushed    int
	lastEvent *pop.ChangeEvent
	changes   <-chan pop.ChangeEvent
}

// NewApp creates the demo model. Pass the same notifier that the rest of the
// process uses so its notifications show up in the corner view.
func NewApp(cfg *config.Config, p *pop.Pop, n *notif.Notifier, logger *slog.Logger) App {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	keys := DefaultKeyMap()
	modal := NewPopView(p, pop.DefaultView, WithWrap(cfg.Display.Wrap), WithViewLogger(logger))
	modal.Back = keys.Back

	return App{
		cfg:     cfg,
		pop:     p,
		notif:   n,
		logger:  logger,
		modal:   modal,
		toasts:  NewPopView(p, n.View(), WithViewLogger(logger)),
		dialog:  NewDialog(cfg.Modal.Width),
		help:    help.New(),
		keys:    keys,
		changes: p.Subscribe(),
	}
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(statusInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model.
func (m App) Init() tea.Cmd {
	return tea.Batch(WatchChanges(m.changes), tick())
}

// Update implements tea.Model.
func (m App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.help.Width = msg.Width
		m.modal.SetSize(msg.Width, msg.Height)
		m.toasts.SetSize(msg.Width, msg.Height)
		return m, nil

	case ChangedMsg:
		ev := msg.ChangeEvent
		m.lastEvent = &ev
		return m, WatchChanges(m.changes)

	case tickMsg:
		return m, tick()

	case tea.MouseMsg:
		m.modal.HandleMouse(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleKey handles key presses. The modal view sees keys first.
func (m App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.pop.Unsubscribe(m.changes)
		return m, tea.Quit
	}
	if cmd, handled := m.modal.HandleKey(msg); handled {
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp

	case key.Matches(msg, m.keys.PushNotif):
		levels := notif.Levels()
		level := levels[m.pushed%len(levels)]
		m.pushed++
		m.notif.Push(fmt.Sprintf("%s notification", humanize.Ordinal(m.pushed)), level)

	case key.Matches(msg, m.keys.PopNotif):
		m.notif.Pop()

	case key.Matches(msg, m.keys.PushModal):
		m.pop.Push(m.newModal("Pushed"), pop.DefaultView)

	case key.Matches(msg, m.keys.Replace):
		m.pop.Replace(m.newModal("Replaced"), pop.DefaultView)

	case key.Matches(msg, m.keys.ReplaceAll):
		m.pop.ReplaceAll(m.newModal("Replaced all"), pop.DefaultView)

	case key.Matches(msg, m.keys.Pop):
		m.pop.Pop(pop.DefaultView)

	case key.Matches(msg, m.keys.Clear):
		m.pop.Clear(pop.DefaultView)
		m.pop.Clear(m.notif.View())
	}

	return m, nil
}

// newModal builds a dialog descriptor. Confirming it posts a notification.
func (m *App) newModal(verb string) *pop.Descriptor {
	m.pushed++
	n := m.notif
	title := fmt.Sprintf("%s modal #%d", verb, m.pushed)
	return &pop.Descriptor{
		Component: m.dialog,
		Props: map[string]any{
			PropTitle: title,
			PropBody:  "Covering this modal pauses its countdown; exposing it again resumes it.",
		},
		Handlers: map[string]pop.Handler{
			EventConfirm: func(...any) { n.Done(title + " confirmed") },
		},
		Timeout: m.cfg.Modal.Timeout.Duration(),
	}
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
)

// View implements tea.Model.
func (m App) View() string {
	if !m.ready {
		return "Initializing..."
	}

	screen := m.baseView()
	screen = Compose(screen, Corner(m.toasts.View(), m.width, m.height, m.cfg.Display.Position, m.cfg.Display.Margin), m.width)
	screen = Compose(screen, m.modal.View(), m.width)
	return screen
}

// baseView draws the status screen under the popups.
func (m App) baseView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("popstack"))
	b.WriteString("\n")

	now := time.Now()
	for _, name := range m.pop.Views() {
		snap := m.pop.Snapshot(name)
		line := labelStyle.Render(fmt.Sprintf("%-10s", name)) + " depth " + valueStyle.Render(fmt.Sprint(snap.Depth))
		if top, ok := snap.Top(); ok {
			line += "  top " + top.ID
			if top.Timer != pop.TimerAbsent.String() {
				line += "  " + top.Timer + " " + humanize.RelTime(now, now.Add(top.Remaining), "left", "ago")
			}
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	if m.lastEvent != nil {
		ev := m.lastEvent
		b.WriteString(statusStyle.Render(fmt.Sprintf("last change: %s on %q (depth %d)", ev.Type, ev.View, ev.Depth)))
	}

	content := b.String()
	footer := m.help.View(m.keys)

	gap := m.height - lipgloss.Height(content) - lipgloss.Height(footer)
	if gap > 0 {
		content += strings.Repeat("\n", gap)
	}
	return content + "\n" + footer
}

// RunOptions configures the TUI.
type RunOptions struct {
	Config   *config.Config
	Pop      *pop.Pop
	Notifier *notif.Notifier
	Logger   *slog.Logger
}

// Run starts the TUI and blocks until it exits.
func Run(opts RunOptions) error {
	m := NewApp(opts.Config, opts.Pop, opts.Notifier, opts.Logger)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
