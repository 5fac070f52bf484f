package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// StoreChangedMsg is sent when the store watcher sees an edit.
type StoreChangedMsg struct{}

// Model is the bubbletea program around a Widget. It owns the terminal,
// converts key presses into widget events and adds a header and help
// footer.
type Model struct {
	widget *Widget
	host   *TerminalHost
	theme  Theme
	keys   KeyMap
	help   help.Model

	changes <-chan struct{} // nil when watching is off
	width   int
	height  int
	ready   bool
}

// NewModel wires a loaded widget to the program. changes may be nil.
func NewModel(widget *Widget, host *TerminalHost, theme Theme, changes <-chan struct{}) Model {
	h := help.New()
	h.ShortSeparator = " · "
	return Model{
		widget:  widget,
		host:    host,
		theme:   theme,
		keys:    DefaultKeyMap(),
		help:    h,
		changes: changes,
	}
}

// Init flushes whatever the widget queued while loading (the first timer)
// and starts listening for store changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.host.Drain(), m.waitForChange())
}

func (m Model) waitForChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	changes := m.changes
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return StoreChangedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case TimerMsg:
		m.widget.Update(TimerEvent{})
		return m, m.host.Drain()

	case StoreChangedMsg:
		m.widget.Update(RefreshEvent{})
		return m, tea.Batch(m.host.Drain(), m.waitForChange())

	case PaneClosedMsg:
		if msg.Err != nil {
			log.Error("pane exited with error", "command", msg.Command, "err", msg.Err)
		}
		// The user may have edited the store from the pane.
		m.widget.Update(RefreshEvent{})
		return m, m.host.Drain()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		m.widget.Update(KeyEventFromTea(msg))
		return m, m.host.Drain()
	}
	return m, nil
}

func (m Model) View() string {
	if !m.ready {
		return "Loading yaks..."
	}

	header := m.theme.HeaderStyle().Render("yaks") + " " +
		m.theme.SubtleStyle().Render(m.widget.store.Root())
	footer := m.help.View(m.keys)

	// The widget budgets three rows of chrome: header, spacer, footer.
	// Extra footer lines from the full help come out of the list.
	rows := m.height - (lipgloss.Height(footer) - 1)
	frame := strings.TrimSuffix(m.widget.Render(rows, m.width), "\n")

	return lipgloss.JoinVertical(lipgloss.Left, header, frame, "", footer)
}

// Widget returns the wrapped widget.
func (m Model) Widget() *Widget {
	return m.widget
}

// KeyEventFromTea converts a bubbletea key into a widget key event.
func KeyEventFromTea(msg tea.KeyMsg) KeyEvent {
	ev := KeyEvent{Key: KeyOther, Modifiers: msg.Alt}
	switch msg.Type {
	case tea.KeyUp:
		ev.Key = KeyUp
	case tea.KeyDown:
		ev.Key = KeyDown
	case tea.KeyEnter:
		ev.Key = KeyEnter
	case tea.KeyRunes:
		if len(msg.Runes) == 1 {
			ev.Key = KeyRune
			ev.Rune = msg.Runes[0]
		}
	case tea.KeyShiftUp, tea.KeyShiftDown, tea.KeyCtrlUp, tea.KeyCtrlDown,
		tea.KeyCtrlShiftUp, tea.KeyCtrlShiftDown:
		ev.Modifiers = true
	}
	return ev
}
