// tree.go - Yak tree layout and the scrolling selection over it
package ui

import (
	"github.com/vanderheijden86/yakboard/pkg/model"
)

// BuildLayout fills in the layout metadata of tasks in place and returns the
// same slice. tasks must be in store listing order (depth-first, sorted per
// level); the order is not changed.
//
// Siblings are found by grouping on parent path, so the layout only depends
// on the path strings. A task whose ancestor is missing from the list gets a
// shorter AncestorContinuations slice; nothing else is affected.
func BuildLayout(tasks []model.Task) []model.Task {
	// Arena of indices: parent path -> child indices in listing order.
	byParent := make(map[string][]int)
	index := make(map[string]int, len(tasks))
	for i := range tasks {
		parent := tasks[i].ParentPath()
		byParent[parent] = append(byParent[parent], i)
		index[tasks[i].Path] = i
	}

	// hasLater[i] is true when task i has a later sibling in its group.
	hasLater := make([]bool, len(tasks))
	for _, group := range byParent {
		for pos, i := range group {
			last := pos == len(group)-1
			tasks[i].IsLastSibling = last
			hasLater[i] = !last
		}
	}

	for i := range tasks {
		tasks[i].HasChildren = false
	}
	for i := range tasks {
		// Every proper prefix of a path that is itself a task has children.
		for anc := model.ParentOf(tasks[i].Path); anc != ""; anc = model.ParentOf(anc) {
			if j, ok := index[anc]; ok {
				tasks[j].HasChildren = true
			}
		}
	}

	for i := range tasks {
		conts := make([]bool, 0, tasks[i].Depth)
		for anc := tasks[i].ParentPath(); anc != ""; anc = model.ParentOf(anc) {
			j, ok := index[anc]
			if !ok {
				continue
			}
			conts = append(conts, hasLater[j])
		}
		tasks[i].AncestorContinuations = conts
	}

	return tasks
}

// TreeModel holds the laid-out task list plus the selection and scroll
// position. Selection survives refreshes by position, not by identity.
type TreeModel struct {
	tasks        []model.Task
	cursor       int // Selected index into tasks
	scrollOffset int // Index of first visible task
}

// NewTreeModel creates an empty tree model
func NewTreeModel() TreeModel {
	return TreeModel{}
}

// SetTasks replaces the task list after a rescan, lays it out and clamps the
// cursor. The scroll offset is left alone; EnsureVisible fixes it at render
// time.
func (t *TreeModel) SetTasks(tasks []model.Task) {
	t.tasks = BuildLayout(tasks)
	if t.cursor >= len(t.tasks) {
		t.cursor = len(t.tasks) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
}

// Tasks returns the current laid-out tasks.
func (t *TreeModel) Tasks() []model.Task {
	return t.tasks
}

// Len returns the number of tasks.
func (t *TreeModel) Len() int {
	return len(t.tasks)
}

// Cursor returns the selected index.
func (t *TreeModel) Cursor() int {
	return t.cursor
}

// ScrollOffset returns the index of the first visible row.
func (t *TreeModel) ScrollOffset() int {
	return t.scrollOffset
}

// SelectedTask returns the task under the cursor.
func (t *TreeModel) SelectedTask() (model.Task, bool) {
	if t.cursor >= 0 && t.cursor < len(t.tasks) {
		return t.tasks[t.cursor], true
	}
	return model.Task{}, false
}

// MoveDown moves the cursor down, stopping at the last task.
func (t *TreeModel) MoveDown() {
	if t.cursor < len(t.tasks)-1 {
		t.cursor++
	}
}

// MoveUp moves the cursor up, stopping at the first task.
func (t *TreeModel) MoveUp() {
	if t.cursor > 0 {
		t.cursor--
	}
}

// EnsureVisible scrolls by the minimum amount that keeps the cursor inside a
// window of visibleRows rows. With no room to show anything only the
// upward correction applies.
func (t *TreeModel) EnsureVisible(visibleRows int) {
	if t.cursor < t.scrollOffset {
		t.scrollOffset = t.cursor
	} else if visibleRows > 0 && t.cursor >= t.scrollOffset+visibleRows {
		t.scrollOffset = t.cursor - visibleRows + 1
	}
}

// VisibleRange returns the half-open range [start, end) of tasks that fit in
// visibleRows rows from the current scroll offset.
func (t *TreeModel) VisibleRange(visibleRows int) (start, end int) {
	start = t.scrollOffset
	if start > len(t.tasks) {
		start = len(t.tasks)
	}
	if visibleRows <= 0 {
		return start, start
	}
	end = start + visibleRows
	if end > len(t.tasks) {
		end = len(t.tasks)
	}
	return start, end
}

// SelectByPath moves the cursor to the task with the given path.
// Returns true if found, false otherwise.
func (t *TreeModel) SelectByPath(path string) bool {
	for i := range t.tasks {
		if t.tasks[i].Path == path {
			t.cursor = i
			return true
		}
	}
	return false
}
