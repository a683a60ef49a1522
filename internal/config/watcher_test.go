package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"figmamcp/internal/logging"
)

func TestDebouncer_CoalescesTriggers(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	for i := 0; i < 5; i++ {
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("expected 1 call after burst, got %d", got)
	}
}

func TestDebouncer_Stop(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()

	time.Sleep(80 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("stopped debouncer should not fire, got %d calls", got)
	}
}

func TestNewWatcher_EmptyPath(t *testing.T) {
	if _, err := NewWatcher("", NewKeyStore("", SourceNone), logging.Discard()); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestWatcher_ReloadsKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")
	if err := os.WriteFile(path, []byte("figma-api-key old\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	store := NewKeyStore("old", SourceConfigFile)
	w, err := NewWatcher(path, store, logging.Discard())
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	w.SetDebounce(20 * time.Millisecond)

	reloaded := make(chan bool, 4)
	w.OnReload = func(changed bool, err error) {
		if err != nil {
			t.Errorf("reload error: %v", err)
		}
		reloaded <- changed
	}

	go func() { _ = w.Run() }()
	defer w.Close()

	if err := os.WriteFile(path, []byte("figma-api-key new\n"), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case changed := <-reloaded:
		if !changed {
			t.Error("expected key change to be reported")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not reload within 2s")
	}

	if got := store.APIKey(); got != "new" {
		t.Errorf("expected rotated key %q, got %q", "new", got)
	}
}

func TestWatcher_KeepsKeyWhenEntryRemoved(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")
	if err := os.WriteFile(path, []byte("figma-api-key keep\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	store := NewKeyStore("keep", SourceConfigFile)
	w, err := NewWatcher(path, store, logging.Discard())
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	w.SetDebounce(20 * time.Millisecond)

	reloaded := make(chan struct{}, 4)
	w.OnReload = func(bool, error) { reloaded <- struct{}{} }

	go func() { _ = w.Run() }()
	defer w.Close()

	if err := os.WriteFile(path, []byte("log-level debug\n"), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case <-reloaded:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not reload within 2s")
	}

	if got := store.APIKey(); got != "keep" {
		t.Errorf("key should be unchanged, got %q", got)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")

	w, err := NewWatcher(path, NewKeyStore("k", SourceFlag), logging.Discard())
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	var calls atomic.Int32
	w.SetDebounce(10 * time.Millisecond)
	w.OnReload = func(bool, error) { calls.Add(1) }
	go func() { _ = w.Run() }()

	if err := os.WriteFile(filepath.Join(dir, "other"), []byte("x"), 0o600); err != nil {
		t.Fatalf("write other: %v", err)
	}

	time.Sleep(200 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("unrelated file should not trigger reload, got %d", got)
	}
}

func TestWatcher_CloseIsIdempotent(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "config"), NewKeyStore("", SourceNone), logging.Discard())
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	done := make(chan struct{})
	go func() {
		_ = w.Run()
		close(done)
	}()

	if err := w.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	_ = w.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("Run should return after Close")
	}
}
