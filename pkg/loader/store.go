// Package loader reads tasks out of a .yaks directory store.
//
// Every task is a directory. Its fields are small text files inside that
// directory (state, name, id, assigned-to, agent-status) and nested
// directories are child tasks. Nothing is cached: the store may be edited by
// other tools at any moment, so each call goes back to the filesystem.
package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/vanderheijden86/yakboard/pkg/model"
)

// ErrStoreNotFound is returned when the store root does not exist.
var ErrStoreNotFound = errors.New("yaks directory not found")

// TaskRef is a discovered task directory before its fields are read.
type TaskRef struct {
	Path  string
	Depth int
}

// Store is a read-mostly view over a .yaks directory.
type Store struct {
	root string
}

// NewStore returns a Store rooted at root. The directory does not need to
// exist yet.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the store directory.
func (s *Store) Root() string {
	return s.root
}

// Exists reports whether the store root is an existing directory.
func (s *Store) Exists() bool {
	info, err := os.Stat(s.root)
	return err == nil && info.IsDir()
}

// Check returns ErrStoreNotFound (wrapped with the root) when the store is
// missing.
func (s *Store) Check() error {
	if !s.Exists() {
		return fmt.Errorf("%w: %s", ErrStoreNotFound, s.root)
	}
	return nil
}

// ListTasks walks the store depth-first and returns every task directory in
// lexicographic order at each level. Directories whose name starts with "."
// are skipped along with everything under them. A missing root yields an
// empty list.
func (s *Store) ListTasks() []TaskRef {
	var refs []TaskRef
	if !s.Exists() {
		return refs
	}
	rootInfo, err := os.Stat(s.root)
	if err != nil {
		return refs
	}
	s.walk(s.root, "", 0, []os.FileInfo{rootInfo}, &refs)
	return refs
}

// walk lists dir. ancestors holds the directories on the current branch,
// root first; a symlink resolving to one of them is a cycle and is skipped.
func (s *Store) walk(dir, prefix string, depth int, ancestors []os.FileInfo, refs *[]TaskRef) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Warn("skipping unreadable task directory", "dir", dir, "err", err)
		return
	}
	// os.ReadDir already sorts by filename; keep the guarantee explicit.
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		full := filepath.Join(dir, name)
		info, ok := dirInfo(entry, full)
		if !ok {
			continue
		}
		path := name
		if prefix != "" {
			path = prefix + "/" + name
		}
		if isAncestor(info, ancestors) {
			log.Debug("skipping symlink cycle", "task", path)
			continue
		}
		*refs = append(*refs, TaskRef{Path: path, Depth: depth})
		s.walk(full, path, depth+1, append(ancestors[:len(ancestors):len(ancestors)], info), refs)
	}
}

// dirInfo stats full, following symlinks so a linked task directory is
// still a task. ok is false for anything that is not a directory.
func dirInfo(entry os.DirEntry, full string) (os.FileInfo, bool) {
	if !entry.IsDir() && entry.Type()&os.ModeSymlink == 0 {
		return nil, false
	}
	info, err := os.Stat(full)
	if err != nil || !info.IsDir() {
		return nil, false
	}
	return info, true
}

func isAncestor(info os.FileInfo, ancestors []os.FileInfo) bool {
	for _, anc := range ancestors {
		if os.SameFile(info, anc) {
			return true
		}
	}
	return false
}

// GetField reads root/path/field. The second return is false when the file
// is missing, unreadable, or blank after trimming whitespace.
func (s *Store) GetField(path, field string) (string, bool) {
	data, err := os.ReadFile(s.fieldPath(path, field))
	if err != nil {
		if !os.IsNotExist(err) {
			log.Debug("field read failed", "task", path, "field", field, "err", err)
		}
		return "", false
	}
	value := strings.TrimSpace(string(data))
	if value == "" {
		return "", false
	}
	return value, true
}

// LoadTask resolves every field of one task. Layout metadata is left zero.
func (s *Store) LoadTask(ref TaskRef) model.Task {
	leaf := model.LeafOf(ref.Path)

	task := model.Task{
		Path:  ref.Path,
		Depth: ref.Depth,
		Name:  leaf,
		ID:    leaf,
	}
	if name, ok := s.GetField(ref.Path, model.FieldName); ok {
		task.Name = name
	}
	if id, ok := s.GetField(ref.Path, model.FieldID); ok {
		task.ID = id
	}
	state, _ := s.GetField(ref.Path, model.FieldState)
	task.State = model.ParseLifecycleState(state)
	task.AssignedTo, _ = s.GetField(ref.Path, model.FieldAssignedTo)
	task.AgentStatus, _ = s.GetField(ref.Path, model.FieldAgentStatus)
	return task
}

// LoadAll lists the store and loads every task in listing order.
func (s *Store) LoadAll() []model.Task {
	refs := s.ListTasks()
	tasks := make([]model.Task, 0, len(refs))
	for _, ref := range refs {
		task := s.LoadTask(ref)
		if err := task.Validate(); err != nil {
			log.Debug("loaded malformed task", "err", err)
		}
		tasks = append(tasks, task)
	}
	return tasks
}

// TaskDir returns the directory backing a task path.
func (s *Store) TaskDir(path string) string {
	return filepath.Join(s.root, filepath.FromSlash(path))
}

// ContextPath returns where the task's context.md lives. The file may not
// exist yet.
func (s *Store) ContextPath(path string) string {
	return filepath.Join(s.TaskDir(path), model.ContextFile)
}

// ContextExists reports whether the task has a context.md file.
func (s *Store) ContextExists(path string) bool {
	info, err := os.Stat(s.ContextPath(path))
	return err == nil && !info.IsDir()
}

func (s *Store) fieldPath(path, field string) string {
	return filepath.Join(s.TaskDir(path), field)
}
