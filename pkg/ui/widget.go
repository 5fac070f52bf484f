// widget.go - The dashboard widget: events in, frames out
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vanderheijden86/yakboard/pkg/loader"
)

// chromeRows is the number of frame rows the host reserves around the list.
const chromeRows = 3

// toastRows is the space a visible toast takes: a blank line and the message.
const toastRows = 2

// EventKind names an event stream a widget can subscribe to.
type EventKind int

const (
	EventTimer EventKind = iota
	EventKey
)

// Permission is a capability the widget asks the host for.
type Permission int

const (
	PermissionOpenFiles Permission = iota
	PermissionRunCommands
)

// Event is anything delivered to Widget.Update.
type Event interface {
	isEvent()
}

// TimerEvent fires when the timeout requested via Host.SetTimeout elapses.
type TimerEvent struct {
	Elapsed time.Duration
}

// RefreshEvent asks for an immediate rescan, e.g. after the store changed on
// disk.
type RefreshEvent struct{}

// Key identifies a key without its modifiers.
type Key int

const (
	KeyRune Key = iota
	KeyUp
	KeyDown
	KeyEnter
	KeyOther
)

// KeyEvent is a key press. Rune is set when Key is KeyRune.
type KeyEvent struct {
	Key       Key
	Rune      rune
	Modifiers bool // any of ctrl/alt/shift/super held
}

func (TimerEvent) isEvent()   {}
func (RefreshEvent) isEvent() {}
func (KeyEvent) isEvent()     {}

// Host is the environment the widget runs in. Every side request is fire and
// forget: failures are the host's to log.
type Host interface {
	Subscribe(kinds ...EventKind)
	RequestPermission(perms ...Permission)
	SetTimeout(d time.Duration)
	// OpenFile opens path for editing in a floating pane.
	OpenFile(path string)
	// OpenCommand runs a command in a floating pane.
	OpenCommand(name string, args ...string)
	CopyToClipboard(text string)
}

// WidgetOptions tunes a Widget.
type WidgetOptions struct {
	RefreshInterval time.Duration
	Pager           string
	HighlightColor  int
}

// Widget renders the yak tree of one store. It is not safe for concurrent
// use; the host delivers events one at a time.
type Widget struct {
	store     *loader.Store
	host      Host
	tree      TreeModel
	highlight Highlighter
	interval  time.Duration
	pager     string

	err        string // persistent; set once when the store is missing
	toast      string
	toastTicks int
}

// NewWidget creates a widget over store. Call Load before the first event.
func NewWidget(store *loader.Store, host Host, opts WidgetOptions) *Widget {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = 2 * time.Second
	}
	if opts.Pager == "" {
		opts.Pager = "less"
	}
	return &Widget{
		store:     store,
		host:      host,
		tree:      NewTreeModel(),
		highlight: NewHighlighter(opts.HighlightColor),
		interval:  opts.RefreshInterval,
		pager:     opts.Pager,
	}
}

// Load subscribes to events, asks for permissions, arms the timer and does
// the first scan. A missing store puts the widget in a permanent error state.
func (w *Widget) Load() {
	w.host.Subscribe(EventTimer, EventKey)
	w.host.SetTimeout(w.interval)
	w.host.RequestPermission(PermissionOpenFiles, PermissionRunCommands)

	if !w.store.Exists() {
		w.err = fmt.Sprintf("Yaks directory not found: %s\nRun `yx add <name>` to create a task.", w.store.Root())
		log.Warn("store missing", "root", w.store.Root())
		return
	}
	w.Refresh()
}

// Refresh rescans the store and rebuilds the tree. It does nothing once the
// widget is in the error state.
func (w *Widget) Refresh() {
	if w.err != "" {
		return
	}
	w.tree.SetTasks(w.store.LoadAll())
	log.Debug("refreshed", "tasks", w.tree.Len(), "cursor", w.tree.Cursor())
}

// Update applies one event and reports whether the frame needs redrawing.
func (w *Widget) Update(ev Event) bool {
	switch ev := ev.(type) {
	case TimerEvent:
		w.host.SetTimeout(w.interval)
		w.Refresh()
		if w.toastTicks > 0 {
			w.toastTicks--
			if w.toastTicks == 0 {
				w.toast = ""
			}
		}
		return true
	case RefreshEvent:
		w.Refresh()
		return true
	case KeyEvent:
		return w.handleKey(ev)
	}
	return false
}

func (w *Widget) handleKey(ev KeyEvent) bool {
	if ev.Modifiers {
		return false
	}
	switch {
	case ev.Key == KeyUp || ev.Key == KeyRune && ev.Rune == 'k':
		w.tree.MoveUp()
	case ev.Key == KeyDown || ev.Key == KeyRune && ev.Rune == 'j':
		w.tree.MoveDown()
	case ev.Key == KeyRune && ev.Rune == 'r':
		w.Refresh()
	case ev.Key == KeyRune && ev.Rune == 'e':
		w.editSelected()
	case ev.Key == KeyRune && ev.Rune == 'y':
		w.copySelected()
	case ev.Key == KeyEnter:
		w.viewSelected()
	default:
		return false
	}
	return true
}

// editSelected opens the selected task's context.md in an editor pane,
// creating the file first.
func (w *Widget) editSelected() {
	task, ok := w.tree.SelectedTask()
	if !ok {
		return
	}
	path, err := w.store.EnsureContextFile(task.Path)
	if err != nil {
		log.Error("prepare context file", "task", task.Path, "err", err)
		return
	}
	w.host.OpenFile(path)
}

// copySelected puts the selected task's id on the clipboard and shows a
// toast until the next timer tick.
func (w *Widget) copySelected() {
	task, ok := w.tree.SelectedTask()
	if !ok {
		return
	}
	w.host.CopyToClipboard(task.ID)
	w.toast = "Copied: " + task.ID
	w.toastTicks = 1
}

// viewSelected pages the selected task's context.md, if it has one.
func (w *Widget) viewSelected() {
	task, ok := w.tree.SelectedTask()
	if !ok || !w.store.ContextExists(task.Path) {
		return
	}
	w.host.OpenCommand(w.pager, w.store.ContextPath(task.Path))
}

// Render draws a frame of at most rows by cols cells. Every line, including
// the last, ends with a newline.
func (w *Widget) Render(rows, cols int) string {
	var sb strings.Builder
	writeLine := func(s string) {
		sb.WriteString(s)
		sb.WriteByte('\n')
	}

	if w.err != "" {
		writeLine(RenderError(w.err))
		return sb.String()
	}

	if w.tree.Len() == 0 {
		writeLine("No tasks. Run `yx add <name>` to create one.")
		writeLine(fmt.Sprintf("(Refresh interval: %s)", w.interval))
		return sb.String()
	}

	reserved := chromeRows
	if w.toast != "" {
		reserved += toastRows
	}
	visibleRows := rows - reserved
	if visibleRows < 0 {
		visibleRows = 0
	}

	w.tree.EnsureVisible(visibleRows)
	start, end := w.tree.VisibleRange(visibleRows)
	tasks := w.tree.Tasks()
	for i := start; i < end; i++ {
		line := RenderTask(tasks[i])
		if i == w.tree.Cursor() {
			line = w.highlight.Highlight(line, cols)
		}
		writeLine(line)
	}

	if w.toast != "" {
		writeLine("")
		writeLine(RenderToast(w.toast, cols))
	}
	return sb.String()
}

// Tree exposes the tree model.
func (w *Widget) Tree() *TreeModel {
	return &w.tree
}

// Err returns the persistent error message, if any.
func (w *Widget) Err() string {
	return w.err
}

// Toast returns the message currently shown under the list.
func (w *Widget) Toast() string {
	return w.toast
}

// Interval returns the refresh period.
func (w *Widget) Interval() time.Duration {
	return w.interval
}
