package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DiscoverStores scans the configured paths for directories holding a .yaks
// store and returns the project directories found, sorted and deduplicated.
func DiscoverStores(cfg Config, extra ...string) []string {
	seen := make(map[string]bool)
	var result []string

	maxDepth := cfg.Discovery.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 3
	}
	paths := append(append([]string(nil), cfg.Discovery.ScanPaths...), extra...)
	for _, scanPath := range paths {
		for _, found := range scanForYaks(scanPath, maxDepth) {
			if !seen[found] {
				seen[found] = true
				result = append(result, found)
			}
		}
	}

	sort.Strings(result)
	return result
}

// scanForYaks walks a directory tree up to maxDepth levels deep,
// looking for directories that contain a .yaks/ subdirectory.
func scanForYaks(root string, maxDepth int) []string {
	root = filepath.Clean(expandHome(root))
	var results []string

	rootDepth := strings.Count(root, string(filepath.Separator))

	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return filepath.SkipDir
		}
		if !d.IsDir() {
			return nil
		}

		currentDepth := strings.Count(filepath.Clean(path), string(filepath.Separator)) - rootDepth
		if currentDepth > maxDepth {
			return filepath.SkipDir
		}

		// Hidden directories never hold projects, and a .yaks dir is only
		// interesting from its parent.
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}

		if isDir(filepath.Join(path, StoreDirName)) {
			results = append(results, path)
			return filepath.SkipDir // Don't recurse into projects
		}

		return nil
	})

	return results
}

// findYaksRoot walks up from dir looking for a .yaks/ directory. It stops
// at the home directory or the filesystem root.
func findYaksRoot(dir string) (string, bool) {
	home, _ := os.UserHomeDir()

	for {
		if isDir(filepath.Join(dir, StoreDirName)) {
			return dir, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		if home != "" && dir == home {
			break
		}
		dir = parent
	}
	return "", false
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
