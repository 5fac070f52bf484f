package loader

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureContextFile makes sure the task's context.md exists so an editor can
// open it, and returns its path.
//
// The function is idempotent and safe to call multiple times.
// It will:
//   - Create the task directory if it doesn't exist
//   - Create an empty context.md if it doesn't exist
//   - Leave an existing context.md untouched
func (s *Store) EnsureContextFile(path string) (string, error) {
	contextPath := s.ContextPath(path)

	if err := os.MkdirAll(filepath.Dir(contextPath), 0o755); err != nil {
		return "", fmt.Errorf("create task dir: %w", err)
	}

	// O_EXCL so an existing file is never truncated.
	file, err := os.OpenFile(contextPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return contextPath, nil
		}
		return "", fmt.Errorf("create context file: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close context file: %w", err)
	}
	return contextPath, nil
}

// Init creates the store root. It is a no-op when the root already exists.
func (s *Store) Init() error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("create yaks dir: %w", err)
	}
	return nil
}
