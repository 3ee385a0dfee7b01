package watcher

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func newTestWatcher(t *testing.T, dir string, onChange func([]Event)) *Watcher {
	t.Helper()
	w, err := New([]string{dir}, []string{".ts", ".tsx"}, 150*time.Millisecond, onChange, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { w.Close() })
	return w
}

func TestWatcher_Matches(t *testing.T) {
	w := newTestWatcher(t, t.TempDir(), nil)
	config := filepath.Join(t.TempDir(), "dtsresolve.yaml")
	if err := w.AddFile(config); err != nil {
		t.Fatalf("AddFile failed: %v", err)
	}

	tests := map[string]bool{
		"/p/a.ts":    true,
		"/p/b.tsx":   true,
		"/p/c.js":    false,
		"/p/d.d.ts":  true,
		"/p/e.ts.sw": false,
		config:       true,
	}
	for path, want := range tests {
		if got := w.matches(path); got != want {
			t.Errorf("matches(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestWatcher_Ignore(t *testing.T) {
	w := newTestWatcher(t, t.TempDir(), nil)
	w.Ignore("/p/dist")

	tests := map[string]bool{
		"/p/dist/a.d.ts":      false,
		"/p/dist/sub/b.d.ts":  false,
		"/p/distant/c.d.ts":   true,
		"/p/src/d.ts":         true,
		"/p/dist/../src/e.ts": true,
	}
	for path, want := range tests {
		if got := w.matches(path); got != want {
			t.Errorf("matches(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestCoalesce(t *testing.T) {
	events := []Event{
		{Path: "/a.ts", Op: "create"},
		{Path: "/b.ts", Op: "write"},
		{Path: "/a.ts", Op: "write"},
		{Path: "/b.ts", Op: "remove"},
		{Path: "/c.ts", Op: "remove"},
		{Path: "/c.ts", Op: "create"},
	}
	want := []Event{
		{Path: "/a.ts", Op: "create"},
		{Path: "/b.ts", Op: "remove"},
		{Path: "/c.ts", Op: "create"},
	}
	if got := coalesce(events); !reflect.DeepEqual(got, want) {
		t.Errorf("coalesce = %v, want %v", got, want)
	}
}

func TestCoalesce_Empty(t *testing.T) {
	if got := coalesce(nil); len(got) != 0 {
		t.Errorf("expected no events, got %v", got)
	}
}

func TestWatcher_DebouncesBatch(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	os.MkdirAll(sub, 0o755)

	batches := make(chan []Event, 4)
	w := newTestWatcher(t, dir, func(events []Event) { batches <- events })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()

	os.WriteFile(filepath.Join(dir, "a.ts"), []byte("export type A = string;"), 0o644)
	os.WriteFile(filepath.Join(sub, "b.ts"), []byte("export type B = string;"), 0o644)
	os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644)

	select {
	case events := <-batches:
		paths := map[string]bool{}
		for _, e := range events {
			paths[e.Path] = true
		}
		if !paths[filepath.Join(dir, "a.ts")] || !paths[filepath.Join(sub, "b.ts")] {
			t.Errorf("expected both .ts files in one batch, got %v", events)
		}
		if paths[filepath.Join(dir, "ignored.txt")] {
			t.Errorf("non-matching file reported: %v", events)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change batch delivered")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestNew_MissingDirectory(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "missing")}, []string{".ts"}, 0, nil, nil)
	if err == nil {
		t.Fatal("expected error for a missing directory")
	}
}
