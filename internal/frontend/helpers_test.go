package frontend

import (
	"io/fs"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"metv/internal/domain"
	"metv/internal/dvb"
)

// ============================================================================
// Test Helpers
// ============================================================================

func charDevice() *fstest.MapFile {
	return &fstest.MapFile{Mode: fs.ModeDevice | fs.ModeCharDevice | 0o660}
}

func regularFile() *fstest.MapFile {
	return &fstest.MapFile{Data: []byte("x"), Mode: 0o644}
}

// fakeTree is a synthetic device tree rooted at "dvb" that records queries
type fakeTree struct {
	mu      sync.Mutex
	fsys    fstest.MapFS
	queried []string
	hide    func(name string, count int) bool
	counts  map[string]int
}

func newFakeTree(fsys fstest.MapFS) *fakeTree {
	return &fakeTree{fsys: fsys, counts: make(map[string]int)}
}

func (f *fakeTree) stat(name string) (fs.FileInfo, error) {
	f.mu.Lock()
	f.queried = append(f.queried, name)
	f.counts[name]++
	hidden := f.hide != nil && f.hide(name, f.counts[name])
	f.mu.Unlock()

	if hidden {
		return nil, fs.ErrNotExist
	}
	return fs.Stat(f.fsys, name)
}

func (f *fakeTree) enumerator() *dvb.Enumerator {
	return dvb.NewEnumerator("dvb").WithStat(f.stat)
}

func (f *fakeTree) queriedUnder(prefix string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, q := range f.queried {
		if strings.HasPrefix(q, prefix) {
			out = append(out, q)
		}
	}
	return out
}

func (f *fakeTree) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[name]
}

// recorder is a sink that keeps every event
type recorder struct {
	mu     sync.Mutex
	events []domain.DiscoveryEvent
}

func (r *recorder) Deliver(ev domain.DiscoveryEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) snapshot() []domain.DiscoveryEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.DiscoveryEvent(nil), r.events...)
}

func appeared(adapter, frontend uint16) domain.DiscoveryEvent {
	return domain.FrontendAppeared{ID: domain.FrontendID{Adapter: adapter, Frontend: frontend}}
}

func assertEvents(t *testing.T, want, got []domain.DiscoveryEvent) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("expected %d events %v, got %d %v", len(want), want, len(got), got)
	}
	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("event[%d]: expected %#v, got %#v", i, want[i], got[i])
		}
	}
}

// closedInbound returns a closed channel pre-loaded with events
func closedInbound(events ...domain.HotplugEvent) <-chan domain.HotplugEvent {
	ch := make(chan domain.HotplugEvent, len(events))
	for _, ev := range events {
		ch <- ev
	}
	close(ch)
	return ch
}
