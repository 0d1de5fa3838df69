package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatchTriggersRebuildOnWrite(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var rebuilds [][]string

	cfg := Config{
		Dirs:       []string{dir},
		Extensions: []string{".md"},
		Debounce:   50 * time.Millisecond,
	}
	go Watch(ctx, cfg, nil, func(_ context.Context, paths []string) error {
		mu.Lock()
		rebuilds = append(rebuilds, paths)
		mu.Unlock()
		return nil
	})

	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(dir, "post.md"), []byte("# hi"), 0o644)

	eventually(t, 5*time.Second, 25*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(rebuilds) > 0
	}, "rebuild never triggered")
}

func TestWatchIgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	rebuilt := false

	cfg := Config{
		Dirs:       []string{dir},
		Extensions: []string{".md"},
		Debounce:   50 * time.Millisecond,
	}
	go Watch(ctx, cfg, nil, func(context.Context, []string) error {
		mu.Lock()
		rebuilt = true
		mu.Unlock()
		return nil
	})

	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644)

	time.Sleep(300 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if rebuilt {
		t.Error("rebuild triggered for ignored extension")
	}
}

func TestWatchRequiresCallback(t *testing.T) {
	err := Watch(context.Background(), Config{Dirs: []string{t.TempDir()}}, nil, nil)
	if err == nil {
		t.Fatal("expected error for nil callback")
	}
}

func TestWatchRequiresDirectories(t *testing.T) {
	err := Watch(context.Background(), Config{}, nil, func(context.Context, []string) error { return nil })
	if err == nil {
		t.Fatal("expected error for empty directory list")
	}
}
