// Package watcher turns filesystem notifications on the DVB base directory
// into hotplug events.
package watcher

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"metv/internal/domain"
)

// DefaultBuffer is the capacity of the hotplug channel
const DefaultBuffer = 64

// Watcher reports adapterN directories appearing and disappearing under a
// base directory. The base directory itself may come and go.
type Watcher struct {
	base   string
	events chan domain.HotplugEvent
	ready  chan struct{}
	known  map[uint16]struct{}

	readyOnce sync.Once
}

// New creates a watcher for the given base directory
func New(base string) *Watcher {
	return &Watcher{
		base:   filepath.Clean(base),
		events: make(chan domain.HotplugEvent, DefaultBuffer),
		ready:  make(chan struct{}),
		known:  make(map[uint16]struct{}),
	}
}

// WithBuffer sets the hotplug channel capacity. Call before Events.
func (w *Watcher) WithBuffer(n int) *Watcher {
	if n < 0 {
		n = 0
	}
	w.events = make(chan domain.HotplugEvent, n)
	return w
}

// Events returns the hotplug channel. It is closed when Watch returns.
func (w *Watcher) Events() <-chan domain.HotplugEvent {
	return w.events
}

// Ready is closed once the filesystem watches are in place, or when Watch
// gives up before that
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// ParseAdapterName extracts N from "adapterN"
func ParseAdapterName(name string) (uint16, bool) {
	digits, ok := strings.CutPrefix(name, "adapter")
	if !ok || digits == "" {
		return 0, false
	}
	if len(digits) > 1 && digits[0] == '0' {
		return 0, false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseUint(digits, 10, 16)
	if err != nil {
		return 0, false
	}
	return uint16(n), true
}

// Watch blocks until the context is cancelled or the watch cannot be set
// up. Adapters present when Watch starts are not reported: the startup scan
// covers them.
func (w *Watcher) Watch(ctx context.Context) error {
	defer close(w.events)
	defer w.markReady()

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer fw.Close()

	// Watch the parent so the base directory can appear later
	parent := filepath.Dir(w.base)
	if err := fw.Add(parent); err != nil {
		return fmt.Errorf("watch %s: %w", parent, err)
	}

	if err := w.watchBase(fw); err == nil {
		for _, id := range w.listAdapters() {
			w.known[id] = struct{}{}
		}
		log.Printf("Watching %s for adapters (%d present)", w.base, len(w.known))
	} else {
		log.Printf("Watching %s for %s to appear", parent, filepath.Base(w.base))
	}
	w.markReady()

	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.handle(ctx, fw, event) {
				return ctx.Err()
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watcher error: %v", err)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// handle translates one notification. It returns false if the context
// ended while sending.
func (w *Watcher) handle(ctx context.Context, fw *fsnotify.Watcher, event fsnotify.Event) bool {
	name := filepath.Clean(event.Name)

	if name == w.base {
		switch {
		case event.Op.Has(fsnotify.Create):
			if err := w.watchBase(fw); err != nil {
				log.Printf("Failed to watch %s: %v", w.base, err)
				return true
			}
			log.Printf("%s appeared", w.base)
			for _, id := range w.listAdapters() {
				if !w.appeared(ctx, id) {
					return false
				}
			}
		case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
			log.Printf("%s disappeared", w.base)
			for _, id := range w.knownAdapters() {
				if !w.disappeared(ctx, id) {
					return false
				}
			}
		}
		return true
	}

	if filepath.Dir(name) != w.base {
		return true
	}
	id, ok := ParseAdapterName(filepath.Base(name))
	if !ok {
		return true
	}

	switch {
	case event.Op.Has(fsnotify.Create):
		return w.appeared(ctx, id)
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		return w.disappeared(ctx, id)
	}
	return true
}

func (w *Watcher) markReady() {
	w.readyOnce.Do(func() { close(w.ready) })
}

func (w *Watcher) appeared(ctx context.Context, id uint16) bool {
	w.known[id] = struct{}{}
	return w.send(ctx, domain.AdapterAppeared{ID: id})
}

func (w *Watcher) disappeared(ctx context.Context, id uint16) bool {
	delete(w.known, id)
	return w.send(ctx, domain.AdapterDisappeared{ID: id})
}

func (w *Watcher) send(ctx context.Context, ev domain.HotplugEvent) bool {
	select {
	case w.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (w *Watcher) watchBase(fw *fsnotify.Watcher) error {
	info, err := os.Stat(w.base)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", w.base)
	}
	return fw.Add(w.base)
}

// listAdapters returns the adapter indices currently in the base directory
func (w *Watcher) listAdapters() []uint16 {
	entries, err := os.ReadDir(w.base)
	if err != nil {
		return nil
	}
	var ids []uint16
	for _, entry := range entries {
		if id, ok := ParseAdapterName(entry.Name()); ok {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

func (w *Watcher) knownAdapters() []uint16 {
	ids := make([]uint16, 0, len(w.known))
	for id := range w.known {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
