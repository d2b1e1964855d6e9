package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"metv/internal/domain"
)

func TestParseAdapterName(t *testing.T) {
	tests := []struct {
		input string
		id    uint16
		ok    bool
	}{
		{"adapter0", 0, true},
		{"adapter7", 7, true},
		{"adapter65535", 65535, true},
		{"adapter65536", 0, false},
		{"adapter", 0, false},
		{"adapter01", 0, false},
		{"adapter-1", 0, false},
		{"adapter+1", 0, false},
		{"adapter1x", 0, false},
		{"frontend0", 0, false},
		{"Adapter0", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		id, ok := ParseAdapterName(tt.input)
		if id != tt.id || ok != tt.ok {
			t.Errorf("ParseAdapterName(%q) = (%d, %v), want (%d, %v)", tt.input, id, ok, tt.id, tt.ok)
		}
	}
}

// startWatcher runs a watcher on base and waits until it is ready
func startWatcher(t *testing.T, base string) (*Watcher, context.CancelFunc, <-chan error) {
	t.Helper()
	w := New(base)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()

	select {
	case <-w.Ready():
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("watcher never became ready")
	}
	t.Cleanup(cancel)
	return w, cancel, done
}

func nextEvent(t *testing.T, w *Watcher) domain.HotplugEvent {
	t.Helper()
	select {
	case ev, ok := <-w.Events():
		if !ok {
			t.Fatal("events channel closed unexpectedly")
		}
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for hotplug event")
	}
	return nil
}

func assertNoEvent(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case ev := <-w.Events():
		t.Fatalf("expected no event, got %#v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatchAdapterLifecycle(t *testing.T) {
	base := filepath.Join(t.TempDir(), "dvb")
	if err := os.Mkdir(base, 0o755); err != nil {
		t.Fatal(err)
	}
	w, _, _ := startWatcher(t, base)

	if err := os.Mkdir(filepath.Join(base, "adapter3"), 0o755); err != nil {
		t.Fatal(err)
	}
	if ev := nextEvent(t, w); ev != (domain.AdapterAppeared{ID: 3}) {
		t.Fatalf("expected AdapterAppeared{3}, got %#v", ev)
	}

	if err := os.Remove(filepath.Join(base, "adapter3")); err != nil {
		t.Fatal(err)
	}
	if ev := nextEvent(t, w); ev != (domain.AdapterDisappeared{ID: 3}) {
		t.Fatalf("expected AdapterDisappeared{3}, got %#v", ev)
	}
}

func TestWatchIgnoresOtherEntries(t *testing.T) {
	base := filepath.Join(t.TempDir(), "dvb")
	if err := os.Mkdir(base, 0o755); err != nil {
		t.Fatal(err)
	}
	w, _, _ := startWatcher(t, base)

	if err := os.WriteFile(filepath.Join(base, "README"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(filepath.Dir(base), "adapter9"), 0o755); err != nil {
		t.Fatal(err)
	}
	assertNoEvent(t, w)
}

func TestWatchDoesNotReportPreexistingAdapters(t *testing.T) {
	base := filepath.Join(t.TempDir(), "dvb")
	if err := os.MkdirAll(filepath.Join(base, "adapter0"), 0o755); err != nil {
		t.Fatal(err)
	}
	w, _, _ := startWatcher(t, base)

	assertNoEvent(t, w)
}

func TestWatchBaseAppearsLater(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "dvb")
	w, _, _ := startWatcher(t, base)

	// build the tree beside base and move it into place in one step
	staging := filepath.Join(root, "staging")
	for _, name := range []string{"adapter1", "adapter0", "frontend0"} {
		if err := os.MkdirAll(filepath.Join(staging, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Rename(staging, base); err != nil {
		t.Fatal(err)
	}

	if ev := nextEvent(t, w); ev != (domain.AdapterAppeared{ID: 0}) {
		t.Fatalf("expected AdapterAppeared{0}, got %#v", ev)
	}
	if ev := nextEvent(t, w); ev != (domain.AdapterAppeared{ID: 1}) {
		t.Fatalf("expected AdapterAppeared{1}, got %#v", ev)
	}

	// base is now watched directly
	if err := os.Mkdir(filepath.Join(base, "adapter2"), 0o755); err != nil {
		t.Fatal(err)
	}
	if ev := nextEvent(t, w); ev != (domain.AdapterAppeared{ID: 2}) {
		t.Fatalf("expected AdapterAppeared{2}, got %#v", ev)
	}
}

func TestWatchBaseRemovedReportsKnownAdapters(t *testing.T) {
	base := filepath.Join(t.TempDir(), "dvb")
	for _, name := range []string{"adapter0", "adapter1"} {
		if err := os.MkdirAll(filepath.Join(base, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	w, _, _ := startWatcher(t, base)

	if err := os.RemoveAll(base); err != nil {
		t.Fatal(err)
	}

	// adapters may be reported individually before the base removal
	seen := map[uint16]int{}
	deadline := time.After(5 * time.Second)
	for len(seen) < 2 {
		select {
		case ev := <-w.Events():
			gone, ok := ev.(domain.AdapterDisappeared)
			if !ok {
				t.Fatalf("expected only AdapterDisappeared, got %#v", ev)
			}
			seen[gone.ID]++
		case <-deadline:
			t.Fatalf("expected both adapters to disappear, saw %v", seen)
		}
	}
}

func TestWatchClosesEventsOnCancel(t *testing.T) {
	base := filepath.Join(t.TempDir(), "dvb")
	if err := os.Mkdir(base, 0o755); err != nil {
		t.Fatal(err)
	}
	w, cancel, done := startWatcher(t, base)

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not return after cancel")
	}

	if _, ok := <-w.Events(); ok {
		t.Error("expected events channel to be closed")
	}
}

func TestWatchMissingParent(t *testing.T) {
	base := filepath.Join(t.TempDir(), "no", "such", "dvb")
	w := New(base)

	err := w.Watch(context.Background())
	if err == nil {
		t.Fatal("expected error when parent directory is missing")
	}
	select {
	case <-w.Ready():
	default:
		t.Error("ready should be closed even when watch fails")
	}
	if _, ok := <-w.Events(); ok {
		t.Error("expected events channel to be closed")
	}
}
