package ui_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/yakboard/pkg/loader"
	"github.com/vanderheijden86/yakboard/pkg/tmux"
	"github.com/vanderheijden86/yakboard/pkg/ui"
)

// Helper to create a KeyMsg for a string key
func integrationKeyMsg(key string) tea.KeyMsg {
	return tea.KeyMsg{
		Type:  tea.KeyRunes,
		Runes: []rune(key),
	}
}

// Helper to create special key messages
func integrationSpecialKey(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

type recordingRunner struct {
	cmds [][]string
}

func (r *recordingRunner) Run(name string, args ...string) (string, string, error) {
	r.cmds = append(r.cmds, append([]string{name}, args...))
	return "", "", nil
}

// runCmd executes cmd and any batched children, collecting the messages.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

type harness struct {
	root   string
	copied []string
	runner *recordingRunner
	host   *ui.TerminalHost
	model  ui.Model
}

func newHarness(t *testing.T, paths ...string) *harness {
	t.Helper()
	root := filepath.Join(t.TempDir(), ".yaks")
	for _, p := range append([]string{""}, paths...) {
		if err := os.MkdirAll(filepath.Join(root, filepath.FromSlash(p)), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	h := &harness{root: root, runner: &recordingRunner{}}
	h.host = ui.NewTerminalHost(ui.HostOptions{
		Editor:  "nvim",
		UseTmux: true,
		Runner:  h.runner,
		Clipboard: func(s string) error {
			h.copied = append(h.copied, s)
			return nil
		},
	})
	widget := ui.NewWidget(loader.NewStore(root), h.host, ui.WidgetOptions{Pager: "less", HighlightColor: 237})
	widget.Load()
	h.model = ui.NewModel(widget, h.host, ui.DefaultTheme(lipgloss.NewRenderer(io.Discard)), nil)

	newM, _ := h.model.Update(tea.WindowSizeMsg{Width: 120, Height: 20})
	h.model = newM.(ui.Model)
	return h
}

func (h *harness) send(msg tea.Msg) []tea.Msg {
	newM, cmd := h.model.Update(msg)
	h.model = newM.(ui.Model)
	return runCmd(cmd)
}

// TestModelNavigation verifies j/k and arrows move the widget cursor
func TestModelNavigation(t *testing.T) {
	h := newHarness(t, "a", "b", "c")

	h.send(integrationKeyMsg("j"))
	h.send(integrationSpecialKey(tea.KeyDown))
	if got := h.model.Widget().Tree().Cursor(); got != 2 {
		t.Errorf("expected cursor 2, got %d", got)
	}
	h.send(integrationKeyMsg("k"))
	if got := h.model.Widget().Tree().Cursor(); got != 1 {
		t.Errorf("expected cursor 1, got %d", got)
	}
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j"), Alt: true})
	if got := h.model.Widget().Tree().Cursor(); got != 1 {
		t.Errorf("alt+j must be ignored, cursor moved to %d", got)
	}
}

// TestModelInitSchedulesTimer verifies the first tick is queued by Load
func TestModelInitSchedulesTimer(t *testing.T) {
	root := filepath.Join(t.TempDir(), ".yaks")
	host := ui.NewTerminalHost(ui.HostOptions{})
	widget := ui.NewWidget(loader.NewStore(root), host, ui.WidgetOptions{})
	widget.Load()
	if host.Pending() != 1 {
		t.Fatalf("expected one pending tick, got %d", host.Pending())
	}
	m := ui.NewModel(widget, host, ui.DefaultTheme(lipgloss.NewRenderer(io.Discard)), nil)
	if m.Init() == nil {
		t.Error("expected Init to return the tick command")
	}
	if host.Pending() != 0 {
		t.Errorf("expected queue drained, got %d", host.Pending())
	}
}

// TestHostTimerNeedsSubscription verifies timeouts are dropped until the
// widget subscribes to timer events
func TestHostTimerNeedsSubscription(t *testing.T) {
	host := ui.NewTerminalHost(ui.HostOptions{})
	if host.Subscribed(ui.EventTimer) {
		t.Fatal("fresh host must not be subscribed")
	}
	host.SetTimeout(time.Second)
	if host.Pending() != 0 {
		t.Errorf("unsubscribed timeout queued %d commands", host.Pending())
	}

	host.Subscribe(ui.EventTimer)
	if !host.Subscribed(ui.EventTimer) {
		t.Fatal("expected timer subscription")
	}
	host.SetTimeout(time.Second)
	if host.Pending() != 1 {
		t.Errorf("expected one pending tick, got %d", host.Pending())
	}
}

// TestModelQuit verifies q quits
func TestModelQuit(t *testing.T) {
	h := newHarness(t, "a")
	_, cmd := h.model.Update(integrationKeyMsg("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

// TestModelCopyAndToast verifies y copies the id and the toast clears on
// the next tick
func TestModelCopyAndToast(t *testing.T) {
	h := newHarness(t, "fix-bug")

	h.send(integrationKeyMsg("y"))
	if len(h.copied) != 1 || h.copied[0] != "fix-bug" {
		t.Errorf("expected fix-bug copied, got %v", h.copied)
	}
	if !strings.Contains(h.model.View(), "Copied: fix-bug") {
		t.Error("expected toast in view")
	}

	// The returned cmd is the next tick; running it would sleep.
	newM, _ := h.model.Update(ui.TimerMsg{})
	h.model = newM.(ui.Model)
	if strings.Contains(h.model.View(), "Copied: fix-bug") {
		t.Error("expected toast gone after tick")
	}
}

// TestModelEditOpensTmuxPopup verifies e opens the editor popup on the
// context file and refreshes when the pane closes
func TestModelEditOpensTmuxPopup(t *testing.T) {
	h := newHarness(t, "task")

	msgs := h.send(integrationKeyMsg("e"))
	if len(h.runner.cmds) != 1 {
		t.Fatalf("expected one tmux command, got %v", h.runner.cmds)
	}
	cmd := h.runner.cmds[0]
	last := cmd[len(cmd)-1]
	want := "nvim " + tmux.EscapeSingleQuoted(filepath.Join(h.root, "task", "context.md"))
	if last != want {
		t.Errorf("popup command = %q, want %q", last, want)
	}

	var closed *ui.PaneClosedMsg
	for _, m := range msgs {
		if pc, ok := m.(ui.PaneClosedMsg); ok {
			closed = &pc
		}
	}
	if closed == nil || closed.Err != nil {
		t.Fatalf("expected clean PaneClosedMsg, got %v", msgs)
	}

	// A task added from the pane shows up once it closes.
	if err := os.MkdirAll(filepath.Join(h.root, "other"), 0o755); err != nil {
		t.Fatal(err)
	}
	h.send(*closed)
	if got := h.model.Widget().Tree().Len(); got != 2 {
		t.Errorf("expected refresh after pane closed, got %d tasks", got)
	}
}

// TestModelPaneErrorIsNotFatal verifies a failed pane only gets logged
func TestModelPaneErrorIsNotFatal(t *testing.T) {
	h := newHarness(t, "a")
	h.send(ui.PaneClosedMsg{Command: "less x", Err: errors.New("exit status 1")})
	if h.model.Widget().Err() != "" {
		t.Errorf("pane errors must not surface as widget errors, got %q", h.model.Widget().Err())
	}
}

// TestModelStoreChanged verifies watcher signals refresh the list
func TestModelStoreChanged(t *testing.T) {
	h := newHarness(t, "a")
	if err := os.MkdirAll(filepath.Join(h.root, "b"), 0o755); err != nil {
		t.Fatal(err)
	}
	h.send(ui.StoreChangedMsg{})
	if got := h.model.Widget().Tree().Len(); got != 2 {
		t.Errorf("expected 2 tasks, got %d", got)
	}
}

// TestModelViewLayout verifies header, rows and help fit the window
func TestModelViewLayout(t *testing.T) {
	h := newHarness(t, "a", "a/b", "c")
	view := h.model.View()

	if !strings.Contains(view, "yaks") {
		t.Error("expected header")
	}
	if !strings.Contains(view, "quit") {
		t.Error("expected help footer")
	}
	if lines := strings.Count(view, "\n") + 1; lines > 20 {
		t.Errorf("view has %d lines, window is 20", lines)
	}

	h.send(integrationKeyMsg("?"))
	if lines := strings.Count(h.model.View(), "\n") + 1; lines > 20 {
		t.Errorf("full help view has %d lines, window is 20", lines)
	}
}

// TestKeyEventFromTea verifies key conversion
func TestKeyEventFromTea(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want ui.KeyEvent
	}{
		{"rune", integrationKeyMsg("j"), ui.KeyEvent{Key: ui.KeyRune, Rune: 'j'}},
		{"up", integrationSpecialKey(tea.KeyUp), ui.KeyEvent{Key: ui.KeyUp}},
		{"down", integrationSpecialKey(tea.KeyDown), ui.KeyEvent{Key: ui.KeyDown}},
		{"enter", integrationSpecialKey(tea.KeyEnter), ui.KeyEvent{Key: ui.KeyEnter}},
		{"alt rune", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k"), Alt: true}, ui.KeyEvent{Key: ui.KeyRune, Rune: 'k', Modifiers: true}},
		{"shift up", integrationSpecialKey(tea.KeyShiftUp), ui.KeyEvent{Key: ui.KeyOther, Modifiers: true}},
		{"tab", integrationSpecialKey(tea.KeyTab), ui.KeyEvent{Key: ui.KeyOther}},
		{"paste", integrationKeyMsg("jj"), ui.KeyEvent{Key: ui.KeyOther}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ui.KeyEventFromTea(tt.msg); got != tt.want {
				t.Errorf("KeyEventFromTea() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
