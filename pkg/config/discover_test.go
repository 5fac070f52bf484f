package config

import (
	"os"
	"path/filepath"
	"testing"
)

func mkdirs(t *testing.T, dirs ...string) {
	t.Helper()
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
}

func TestScanForYaks(t *testing.T) {
	root := t.TempDir()

	proj1 := filepath.Join(root, "project1")
	proj2 := filepath.Join(root, "subdir", "project2")
	noYaks := filepath.Join(root, "noyaks")
	hidden := filepath.Join(root, ".cache", "project3")

	mkdirs(t,
		filepath.Join(proj1, ".yaks"),
		filepath.Join(proj2, ".yaks"),
		filepath.Join(hidden, ".yaks"),
		noYaks,
	)

	results := scanForYaks(root, 3)

	if len(results) != 2 {
		t.Fatalf("expected 2 projects, got %d: %v", len(results), results)
	}

	found := make(map[string]bool)
	for _, r := range results {
		found[r] = true
	}
	if !found[proj1] {
		t.Error("expected to find project1")
	}
	if !found[proj2] {
		t.Error("expected to find project2")
	}
}

func TestScanForYaks_DepthLimit(t *testing.T) {
	root := t.TempDir()

	deep := filepath.Join(root, "a", "b", "c", "d", "deep")
	shallow := filepath.Join(root, "shallow")
	mkdirs(t, filepath.Join(deep, ".yaks"), filepath.Join(shallow, ".yaks"))

	results := scanForYaks(root, 2)
	if len(results) != 1 || results[0] != shallow {
		t.Errorf("expected only shallow project, got %v", results)
	}
}

func TestDiscoverStores_Dedup(t *testing.T) {
	root := t.TempDir()
	proj := filepath.Join(root, "p")
	mkdirs(t, filepath.Join(proj, ".yaks"))

	cfg := Default()
	cfg.Discovery.ScanPaths = []string{root}
	got := DiscoverStores(cfg, root)
	if len(got) != 1 || got[0] != proj {
		t.Errorf("expected [%s], got %v", proj, got)
	}
}

func TestFindYaksRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "src", "pkg", "deep")
	mkdirs(t, filepath.Join(root, ".yaks"), nested)

	got, ok := findYaksRoot(nested)
	if !ok {
		t.Fatal("expected to find yaks root")
	}
	if got != root {
		t.Errorf("findYaksRoot() = %q, want %q", got, root)
	}
}

func TestFindYaksRoot_IgnoresFile(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".yaks"), []byte("not a dir"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got, ok := findYaksRoot(root); ok && got == root {
		t.Errorf("a plain .yaks file must not count as a store")
	}
}
