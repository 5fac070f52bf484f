package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap lists the dashboard bindings. Navigation and actions are handled
// by the widget; the bindings here drive the help footer and the host-only
// keys (help, quit).
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Refresh key.Binding
	Edit    key.Binding
	Copy    key.Binding
	View    key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit context")),
		Copy:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy id")),
		View:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "view context")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.View, k.Edit, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.View, k.Edit, k.Copy},
		{k.Refresh, k.Help, k.Quit},
	}
}
