package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the key bindings for the demo app.
type KeyMap struct {
	// Stack operations
	PushNotif  key.Binding
	PushModal  key.Binding
	Replace    key.Binding
	ReplaceAll key.Binding
	Pop        key.Binding
	PopNotif   key.Binding
	Clear      key.Binding

	// Popups
	Back key.Binding

	// Global
	Quit key.Binding
	Help key.Binding
}

// ShortHelp returns a short help message.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PushNotif, k.PushModal, k.Pop, k.Help, k.Quit}
}

// FullHelp returns a full help message.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PushNotif, k.PopNotif, k.PushModal, k.Replace},
		{k.ReplaceAll, k.Pop, k.Clear, k.Back},
		{k.Help, k.Quit},
	}
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		PushNotif: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "notify"),
		),
		PushModal: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "push modal"),
		),
		Replace: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "replace top"),
		),
		ReplaceAll: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "replace all"),
		),
		Pop: key.NewBinding(
			key.WithKeys("p", "backspace"),
			key.WithHelp("p", "pop modal"),
		),
		PopNotif: key.NewBinding(
			key.WithKeys("N"),
			key.WithHelp("N", "pop notification"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear all"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close popup"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}
