package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitChanged(t *testing.T, w *StoreWatcher) {
	t.Helper()
	select {
	case <-w.Changed():
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for change signal")
	}
}

func TestStoreWatcher_SignalsOnFieldWrite(t *testing.T) {
	root := filepath.Join(t.TempDir(), ".yaks")
	if err := os.MkdirAll(filepath.Join(root, "task"), 0o755); err != nil {
		t.Fatal(err)
	}

	w, err := New(root, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(root, "task", "state"), []byte("wip"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitChanged(t, w)
}

func TestStoreWatcher_FollowsNewDirectories(t *testing.T) {
	root := filepath.Join(t.TempDir(), ".yaks")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}

	w, err := New(root, 20*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	newDir := filepath.Join(root, "fresh")
	if err := os.Mkdir(newDir, 0o755); err != nil {
		t.Fatal(err)
	}
	waitChanged(t, w)

	deadline := time.Now().Add(2 * time.Second)
	for {
		found := false
		for _, dir := range w.WatchedDirs() {
			if dir == newDir {
				found = true
			}
		}
		if found {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected %s to be watched, have %v", newDir, w.WatchedDirs())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestStoreWatcher_SkipsHiddenDirs(t *testing.T) {
	root := filepath.Join(t.TempDir(), ".yaks")
	if err := os.MkdirAll(filepath.Join(root, ".git", "objects"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "a"), 0o755); err != nil {
		t.Fatal(err)
	}

	w, err := New(root, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	for _, dir := range w.WatchedDirs() {
		if filepath.Base(dir) == ".git" || filepath.Base(dir) == "objects" {
			t.Errorf("hidden directory watched: %s", dir)
		}
	}
	if len(w.WatchedDirs()) != 2 {
		t.Errorf("expected root and a to be watched, got %v", w.WatchedDirs())
	}
}

func TestStoreWatcher_MissingRoot(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "missing"), 0)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	if err := w.Start(context.Background()); err == nil {
		t.Fatal("expected error for missing root")
	}
}
