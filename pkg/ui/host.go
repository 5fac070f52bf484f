// host.go - Terminal implementation of the widget Host
package ui

import (
	"errors"
	"os/exec"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vanderheijden86/yakboard/pkg/tmux"
)

var errNoClipboard = errors.New("no clipboard tool (pbcopy/xclip/xsel/wl-copy) found")

// TimerMsg is delivered when a timeout set through the host elapses.
type TimerMsg struct {
	At time.Time
}

// PaneClosedMsg reports that a floating pane (popup or suspended program)
// has exited.
type PaneClosedMsg struct {
	Command string
	Err     error
}

// HostOptions configures a TerminalHost.
type HostOptions struct {
	Editor string
	// UseTmux opens panes as tmux popups instead of suspending the TUI.
	UseTmux bool
	Runner  tmux.Runner
	// Clipboard overrides the system clipboard writer.
	Clipboard func(string) error
}

// TerminalHost turns widget side requests into bubbletea commands. Requests
// made during one Update are queued and handed to bubbletea by Drain.
type TerminalHost struct {
	editor    string
	useTmux   bool
	runner    tmux.Runner
	clipboard func(string) error

	subscribed map[EventKind]bool
	granted    map[Permission]bool
	pending    []tea.Cmd
}

// NewTerminalHost creates a host. Zero options give vi, no tmux, and the
// system clipboard.
func NewTerminalHost(opts HostOptions) *TerminalHost {
	if opts.Editor == "" {
		opts.Editor = "vi"
	}
	if opts.Runner == nil {
		opts.Runner = tmux.ExecRunner{}
	}
	if opts.Clipboard == nil {
		opts.Clipboard = writeSystemClipboard
	}
	return &TerminalHost{
		editor:     opts.Editor,
		useTmux:    opts.UseTmux,
		runner:     opts.Runner,
		clipboard:  opts.Clipboard,
		subscribed: make(map[EventKind]bool),
		granted:    make(map[Permission]bool),
	}
}

func (h *TerminalHost) Subscribe(kinds ...EventKind) {
	for _, k := range kinds {
		h.subscribed[k] = true
	}
}

// RequestPermission grants every request.
func (h *TerminalHost) RequestPermission(perms ...Permission) {
	for _, p := range perms {
		h.granted[p] = true
	}
}

// Subscribed reports whether the widget asked for kind.
func (h *TerminalHost) Subscribed(kind EventKind) bool {
	return h.subscribed[kind]
}

func (h *TerminalHost) SetTimeout(d time.Duration) {
	if !h.Subscribed(EventTimer) {
		return
	}
	h.pending = append(h.pending, tea.Tick(d, func(t time.Time) tea.Msg {
		return TimerMsg{At: t}
	}))
}

func (h *TerminalHost) OpenFile(path string) {
	if !h.granted[PermissionOpenFiles] {
		log.Warn("open file denied", "path", path)
		return
	}
	h.openPane(tmux.Popup{Title: "context", Command: h.editor, Args: []string{path}})
}

func (h *TerminalHost) OpenCommand(name string, args ...string) {
	if !h.granted[PermissionRunCommands] {
		log.Warn("run command denied", "command", name)
		return
	}
	h.openPane(tmux.Popup{Command: name, Args: args})
}

func (h *TerminalHost) openPane(p tmux.Popup) {
	p.Width, p.Height = "80%", "80%"
	shell := p.ShellCommand()

	if h.useTmux {
		// Cmds run on their own goroutine, so the blocking popup does not
		// stall the event loop.
		h.pending = append(h.pending, func() tea.Msg {
			err := tmux.Open(h.runner, p)
			return PaneClosedMsg{Command: shell, Err: err}
		})
		return
	}

	c := exec.Command("sh", "-c", shell)
	h.pending = append(h.pending, tea.ExecProcess(c, func(err error) tea.Msg {
		return PaneClosedMsg{Command: shell, Err: err}
	}))
}

func (h *TerminalHost) CopyToClipboard(text string) {
	write := h.clipboard
	h.pending = append(h.pending, func() tea.Msg {
		if err := write(text); err != nil {
			log.Error("clipboard copy failed", "err", err)
		}
		return nil
	})
}

// Drain returns the queued commands as one batch and clears the queue.
func (h *TerminalHost) Drain() tea.Cmd {
	if len(h.pending) == 0 {
		return nil
	}
	cmds := h.pending
	h.pending = nil
	return tea.Batch(cmds...)
}

// Pending returns how many commands are queued.
func (h *TerminalHost) Pending() int {
	return len(h.pending)
}

func writeSystemClipboard(text string) error {
	if clipboard.Unsupported {
		return errNoClipboard
	}
	return clipboard.WriteAll(text)
}
