// Package export writes the task tree in machine and document formats.
package export

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/yakboard/pkg/model"
)

// TreeDocument is the JSON shape emitted by `yb tree --json`.
type TreeDocument struct {
	GeneratedAt string       `json:"generated_at"`
	Root        string       `json:"root"`
	Count       int          `json:"count"`
	Tasks       []model.Task `json:"tasks"`
}

// TreeJSON builds the document for a laid-out task list.
func TreeJSON(root string, tasks []model.Task) TreeDocument {
	if tasks == nil {
		tasks = []model.Task{}
	}
	return TreeDocument{
		GeneratedAt: now().UTC().Format("2006-01-02T15:04:05Z"),
		Root:        root,
		Count:       len(tasks),
		Tasks:       tasks,
	}
}

// WriteTreeJSON encodes the document for tasks to w, indented.
func WriteTreeJSON(w io.Writer, root string, tasks []model.Task) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(TreeJSON(root, tasks)); err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}
	return nil
}
