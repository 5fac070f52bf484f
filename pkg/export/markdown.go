package export

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vanderheijden86/yakboard/pkg/model"
)

// now is swapped in tests.
var now = time.Now

// stateMarker returns the checkbox used for a task in the outline.
func stateMarker(state model.LifecycleState) string {
	switch state {
	case model.StateWip:
		return "[~]"
	case model.StateDone:
		return "[x]"
	default:
		return "[ ]"
	}
}

// GenerateMarkdown renders tasks (in listing order) as a nested bullet
// outline preceded by a summary.
func GenerateMarkdown(tasks []model.Task, title string) (string, error) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now().Format(time.RFC1123)))

	todo, wip, done, blocked := 0, 0, 0, 0
	for _, t := range tasks {
		switch t.State {
		case model.StateWip:
			wip++
		case model.StateDone:
			done++
		default:
			todo++
		}
		if t.Signal() == model.SignalBlocked {
			blocked++
		}
	}

	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Total**: %d\n", len(tasks)))
	sb.WriteString(fmt.Sprintf("- **Todo**: %d\n", todo))
	sb.WriteString(fmt.Sprintf("- **In progress**: %d\n", wip))
	sb.WriteString(fmt.Sprintf("- **Done**: %d\n", done))
	sb.WriteString(fmt.Sprintf("- **Blocked**: %d\n\n", blocked))

	sb.WriteString("## Tasks\n\n")
	if len(tasks) == 0 {
		sb.WriteString("_No tasks._\n")
		return sb.String(), nil
	}
	for _, t := range tasks {
		sb.WriteString(strings.Repeat("  ", t.Depth))
		sb.WriteString("- " + stateMarker(t.State) + " " + t.Name)
		if t.ID != "" && t.ID != t.Name {
			sb.WriteString(" `" + t.ID + "`")
		}
		if t.AssignedTo != "" {
			sb.WriteString(" (@" + t.AssignedTo + ")")
		}
		if t.AgentStatus != "" {
			sb.WriteString(" _" + strings.ReplaceAll(t.AgentStatus, "\n", " ") + "_")
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// SaveMarkdownToFile writes the outline for tasks to filename.
func SaveMarkdownToFile(tasks []model.Task, filename string) error {
	content, err := GenerateMarkdown(tasks, "Yaks")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return nil
}
