package lsp

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// fakeBackend is an injectable fsBackend so tests can drive write
// events without depending on OS file-event delivery timing.
type fakeBackend struct {
	events  chan watchEvent
	errs    chan error
	added   []string
	closed  bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{events: make(chan watchEvent, 4), errs: make(chan error, 1)}
}

func (f *fakeBackend) Add(path string) error    { f.added = append(f.added, path); return nil }
func (f *fakeBackend) Close() error              { f.closed = true; close(f.events); return nil }
func (f *fakeBackend) Events() <-chan watchEvent { return f.events }
func (f *fakeBackend) Errors() <-chan error      { return f.errs }

func TestWatcher_WriteEventTriggersReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.cpp")
	if err := os.WriteFile(path, []byte("int main(){ return 1; }"), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	h := newPipeHarness(t, Config{ProjectRoot: dir})
	uri := pathToURI(path)

	notifyDone := make(chan struct{}, 4)
	go func() {
		for i := 0; i < 3; i++ { // didOpen, then didClose+didOpen from Reopen
			h.readServerRequest(t)
			notifyDone <- struct{}{}
		}
	}()

	if err := h.client.Open(context.Background(), uri, "int main(){ return 0; }", "cpp"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	<-notifyDone

	backend := newFakeBackend()
	w := newWatcherWithBackend(h.client, backend)
	defer w.close()
	w.watch(path, uri)

	if len(backend.added) != 1 || backend.added[0] != path {
		t.Fatalf("backend.added = %v, want [%s]", backend.added, path)
	}

	backend.events <- watchEvent{path: path, isWrite: true}

	<-notifyDone // didClose from Reopen
	<-notifyDone // didOpen from Reopen

	pollUntil(t, time.Second, func() bool {
		h.client.mu.Lock()
		defer h.client.mu.Unlock()
		return h.client.openDocs[uri] == 2
	})
}
