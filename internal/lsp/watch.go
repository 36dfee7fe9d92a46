package lsp

import (
	"context"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// watchEvent is the minimal shape the watcher loop reacts to, kept
// independent of fsnotify.Event so tests can drive it with a fake
// backend instead of real filesystem events.
type watchEvent struct {
	path    string
	isWrite bool
}

// fsBackend is the subset of *fsnotify.Watcher the watcher needs.
// Implemented by *fsnotify.Watcher via fsnotifyBackend, and by a fake
// in tests.
type fsBackend interface {
	Add(path string) error
	Close() error
	Events() <-chan watchEvent
	Errors() <-chan error
}

type fsnotifyBackend struct {
	w      *fsnotify.Watcher
	events chan watchEvent
}

func newFsnotifyBackend() (*fsnotifyBackend, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	b := &fsnotifyBackend{w: w, events: make(chan watchEvent)}
	go b.translate()
	return b, nil
}

func (b *fsnotifyBackend) translate() {
	for ev := range b.w.Events {
		b.events <- watchEvent{path: ev.Name, isWrite: ev.Op&(fsnotify.Write|fsnotify.Create) != 0}
	}
	close(b.events)
}

func (b *fsnotifyBackend) Add(path string) error     { return b.w.Add(path) }
func (b *fsnotifyBackend) Close() error              { return b.w.Close() }
func (b *fsnotifyBackend) Events() <-chan watchEvent { return b.events }
func (b *fsnotifyBackend) Errors() <-chan error      { return b.w.Errors }

// watcher keeps documents opened through a Query fresh against external
// edits: on a write/create event for a watched path, it reopens the
// corresponding URI with the file's current contents.
type watcher struct {
	client  *Client
	backend fsBackend

	mu         sync.Mutex
	uriForPath map[string]string

	done chan struct{}
}

func newWatcher(client *Client) (*watcher, error) {
	b, err := newFsnotifyBackend()
	if err != nil {
		return nil, err
	}
	return newWatcherWithBackend(client, b), nil
}

func newWatcherWithBackend(client *Client, backend fsBackend) *watcher {
	w := &watcher{
		client:     client,
		backend:    backend,
		uriForPath: make(map[string]string),
		done:       make(chan struct{}),
	}
	go w.loop()
	return w
}

func (w *watcher) watch(path, uri string) {
	w.mu.Lock()
	w.uriForPath[path] = uri
	w.mu.Unlock()
	if err := w.backend.Add(path); err != nil {
		w.client.cfg.Logger.Warn("lsp: failed to watch file", "path", path, "err", err)
	}
}

func (w *watcher) loop() {
	for {
		select {
		case ev, ok := <-w.backend.Events():
			if !ok {
				return
			}
			if !ev.isWrite {
				continue
			}
			w.handleWrite(ev.path)
		case err, ok := <-w.backend.Errors():
			if !ok {
				continue
			}
			w.client.cfg.Logger.Warn("lsp: watcher error", "err", err)
		case <-w.done:
			return
		}
	}
}

func (w *watcher) handleWrite(path string) {
	w.mu.Lock()
	uri, ok := w.uriForPath[path]
	w.mu.Unlock()
	if !ok {
		return
	}

	text, err := os.ReadFile(path)
	if err != nil {
		w.client.cfg.Logger.Warn("lsp: failed to reread watched file", "path", path, "err", err)
		return
	}
	if err := w.client.Reopen(context.Background(), uri, string(text), languageIDFromPath(path)); err != nil {
		w.client.cfg.Logger.Warn("lsp: failed to reopen watched file", "uri", uri, "err", err)
	}
}

func (w *watcher) close() {
	close(w.done)
	_ = w.backend.Close()
}
