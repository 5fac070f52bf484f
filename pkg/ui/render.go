// render.go - Raw ANSI rendering of task rows
//
// Rows use fixed SGR sequences, independent of the terminal colour profile.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/yakboard/pkg/model"
)

// SGR sequences used in task rows.
const (
	sgrReset         = "\x1b[0m"
	sgrStrikethrough = "\x1b[9m"
	sgrRed           = "\x1b[31m"
	sgrGreen         = "\x1b[32m"
	sgrYellow        = "\x1b[33m"
	sgrWhite         = "\x1b[37m"
	sgrCyan          = "\x1b[36m"
	sgrGray          = "\x1b[90m"
	sgrReverseBold   = "\x1b[7m\x1b[1m"

	treeLineColor = sgrGray
)

// Status glyphs.
const (
	glyphFilled = "●"
	glyphOpen   = "○"
)

// Connector pieces. Each column is two cells wide.
var (
	connectorContinue = treeLineColor + "│ " + sgrReset
	connectorBlank    = "  "
	connectorMid      = treeLineColor + "├─" + sgrReset
	connectorLast     = treeLineColor + "╰─" + sgrReset
)

// TaskColor picks the row colour. A structured agent-status prefix wins over
// the lifecycle state.
func TaskColor(task model.Task) string {
	switch task.Signal() {
	case model.SignalBlocked:
		return sgrRed
	case model.SignalDone:
		return sgrGreen
	case model.SignalWip:
		return sgrYellow
	}
	switch task.State {
	case model.StateWip:
		return sgrYellow
	case model.StateDone:
		return sgrGray
	default:
		return sgrWhite
	}
}

// StatusSymbol is filled for anything in motion or finished, open otherwise.
func StatusSymbol(task model.Task) string {
	if task.Signal() != model.SignalNone {
		return glyphFilled
	}
	switch task.State {
	case model.StateWip, model.StateDone:
		return glyphFilled
	default:
		return glyphOpen
	}
}

// TreePrefix builds the connector columns in front of a task. Root tasks get
// no prefix. For depth d, the first d-1 continuation flags (parent first) are
// drawn root-most first, then the task's own branch connector.
func TreePrefix(task model.Task) string {
	if task.Depth == 0 {
		return ""
	}

	cols := task.Depth - 1
	if cols > len(task.AncestorContinuations) {
		cols = len(task.AncestorContinuations)
	}

	var sb strings.Builder
	for i := cols - 1; i >= 0; i-- {
		if task.AncestorContinuations[i] {
			sb.WriteString(connectorContinue)
		} else {
			sb.WriteString(connectorBlank)
		}
	}
	if task.IsLastSibling {
		sb.WriteString(connectorLast)
	} else {
		sb.WriteString(connectorMid)
	}
	return sb.String()
}

// RenderTask formats one unselected row:
// prefix, colour, glyph, name, optional assignee, reset.
func RenderTask(task model.Task) string {
	color := TaskColor(task)
	name := task.Name
	if task.State == model.StateDone {
		// Finished work is always gray, whatever the agent said.
		color = sgrGray
		name = sgrStrikethrough + name + sgrReset
	}

	assignment := ""
	if task.IsAssigned() {
		assignment = fmt.Sprintf(" [%s%s%s]", sgrCyan, task.AssignedTo, sgrReset)
	}

	return TreePrefix(task) + color + StatusSymbol(task) + " " + name + assignment + sgrReset
}

// Highlighter paints the selected row with a 256-colour background.
type Highlighter struct {
	bg string
}

// NewHighlighter returns a Highlighter for a 256-colour palette index.
func NewHighlighter(color int) Highlighter {
	return Highlighter{bg: fmt.Sprintf("\x1b[48;5;%dm", color)}
}

// Background returns the SGR sequence that sets the highlight colour.
func (h Highlighter) Background() string {
	return h.bg
}

// Highlight pads line to cols visible cells and wraps it in the background.
// Every interior reset is followed by the background again so the colour
// runs the full width of the row.
func (h Highlighter) Highlight(line string, cols int) string {
	padding := cols - VisibleWidth(line)
	if padding < 0 {
		padding = 0
	}
	body := strings.ReplaceAll(line, sgrReset, sgrReset+h.bg)
	return h.bg + body + strings.Repeat(" ", padding) + sgrReset
}

// VisibleWidth returns the number of terminal cells line occupies, ignoring
// escape sequences.
func VisibleWidth(line string) int {
	// Use lipgloss.Width for proper display width (handles ANSI codes + Unicode)
	return lipgloss.Width(line)
}

// RenderToast formats the transient status message shown under the list,
// trimmed so it never wraps.
func RenderToast(msg string, cols int) string {
	text := " " + msg + " "
	if cols > 0 && runewidth.StringWidth(text) > cols {
		text = runewidth.Truncate(text, cols, "…")
	}
	return sgrReverseBold + text + sgrReset
}

// RenderError formats the persistent error line.
func RenderError(msg string) string {
	return sgrRed + "Error: " + msg + sgrReset
}
