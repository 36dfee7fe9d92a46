package lsp

import (
	"context"
	"fmt"
	"os"
	"time"
)

// Query is a thin, stateless layer over a Client: it ensures the target
// document is open before issuing a position query, and annotates
// certain empty results with a readiness hint, per spec.md §4.4.
type Query struct {
	client  *Client
	watcher *watcher // nil when watching is disabled
}

// NewQuery wraps client. If client's Config enabled WatchOpenDocuments,
// an fsnotify-backed watcher is attached so documents opened through
// this Query are reopened on external modification.
func NewQuery(client *Client) *Query {
	q := &Query{client: client}
	if client.cfg.WatchOpenDocuments {
		if w, err := newWatcher(client); err == nil {
			q.watcher = w
		} else {
			client.cfg.Logger.Warn("lsp: document watching disabled", "err", err)
		}
	}
	return q
}

// Close releases resources the Query holds beyond the Client itself
// (currently: the filesystem watcher, if any). It does not shut down
// the underlying Client.
func (q *Query) Close() {
	if q.watcher != nil {
		q.watcher.close()
	}
}

// Result wraps a query result together with an optional readiness
// hint, set whenever the result is empty; the hint names the current
// indexing status.
type Result[T any] struct {
	Value T
	Hint  string
}

func (q *Query) ensureOpen(ctx context.Context, path string) (string, error) {
	uri := pathToURI(path)
	if q.client.isOpen(uri) {
		return uri, nil
	}
	text, err := os.ReadFile(path)
	if err != nil {
		return "", newErr(KindProtocolError, "open", uri, fmt.Errorf("reading %s: %w", path, err))
	}
	if err := q.client.Open(ctx, uri, string(text), languageIDFromPath(path)); err != nil {
		if !Is(err, KindAlreadyOpen) {
			return "", err
		}
	}
	if q.watcher != nil {
		q.watcher.watch(path, uri)
	}
	return uri, nil
}

func (q *Query) indexingHint() string {
	status := q.client.Status().IndexingStatus
	return fmt.Sprintf("no results found; indexing status is %q, consider calling wait_for_file and retrying", status)
}

// Definition resolves the definition of the symbol at path:line:col.
func (q *Query) Definition(ctx context.Context, path string, line, col int) ([]Location, error) {
	uri, err := q.ensureOpen(ctx, path)
	if err != nil {
		return nil, err
	}
	return q.client.Definition(ctx, uri, line, col)
}

// References finds all references to the symbol at path:line:col.
func (q *Query) References(ctx context.Context, path string, line, col int, includeDecl bool) ([]Location, error) {
	uri, err := q.ensureOpen(ctx, path)
	if err != nil {
		return nil, err
	}
	return q.client.References(ctx, uri, line, col, includeDecl)
}

// Hover returns rendered hover text for the symbol at path:line:col.
func (q *Query) Hover(ctx context.Context, path string, line, col int) (*HoverResult, error) {
	uri, err := q.ensureOpen(ctx, path)
	if err != nil {
		return nil, err
	}
	return q.client.Hover(ctx, uri, line, col)
}

// DocumentSymbol returns the symbol tree for path.
func (q *Query) DocumentSymbol(ctx context.Context, path string) ([]Symbol, error) {
	uri, err := q.ensureOpen(ctx, path)
	if err != nil {
		return nil, err
	}
	return q.client.DocumentSymbol(ctx, uri)
}

// WorkspaceSymbol searches for symbols across the project matching
// query (which may be empty, returning a possibly-empty list).
func (q *Query) WorkspaceSymbol(ctx context.Context, query string) ([]Symbol, error) {
	return q.client.WorkspaceSymbol(ctx, query)
}

// Implementation finds implementations of the interface/abstract method
// at path:line:col. When empty, Result.Hint names the indexing status.
func (q *Query) Implementation(ctx context.Context, path string, line, col int) (Result[[]Location], error) {
	uri, err := q.ensureOpen(ctx, path)
	if err != nil {
		return Result[[]Location]{}, err
	}
	locs, err := q.client.Implementation(ctx, uri, line, col)
	if err != nil {
		return Result[[]Location]{}, err
	}
	r := Result[[]Location]{Value: locs}
	if len(locs) == 0 {
		r.Hint = q.indexingHint()
	}
	return r, nil
}

// PrepareCallHierarchy prepares a call hierarchy item at path:line:col.
func (q *Query) PrepareCallHierarchy(ctx context.Context, path string, line, col int) ([]CallHierarchyItem, error) {
	uri, err := q.ensureOpen(ctx, path)
	if err != nil {
		return nil, err
	}
	return q.client.PrepareCallHierarchy(ctx, uri, line, col)
}

// IncomingCalls finds callers of item. When empty, Result.Hint names
// the indexing status.
func (q *Query) IncomingCalls(ctx context.Context, item CallHierarchyItem) (Result[[]IncomingCall], error) {
	calls, err := q.client.IncomingCalls(ctx, item)
	if err != nil {
		return Result[[]IncomingCall]{}, err
	}
	r := Result[[]IncomingCall]{Value: calls}
	if len(calls) == 0 {
		r.Hint = q.indexingHint()
	}
	return r, nil
}

// OutgoingCalls finds callees of item. When empty, Result.Hint names
// the indexing status.
func (q *Query) OutgoingCalls(ctx context.Context, item CallHierarchyItem) (Result[[]OutgoingCall], error) {
	calls, err := q.client.OutgoingCalls(ctx, item)
	if err != nil {
		return Result[[]OutgoingCall]{}, err
	}
	r := Result[[]OutgoingCall]{Value: calls}
	if len(calls) == 0 {
		r.Hint = q.indexingHint()
	}
	return r, nil
}

// WaitForFile blocks until path has been indexed (received at least
// one diagnostics batch) or timeout elapses.
func (q *Query) WaitForFile(ctx context.Context, path string, timeout time.Duration) (bool, error) {
	uri := pathToURI(path)
	return q.client.WaitForFile(ctx, uri, timeout)
}

// Status returns the underlying Client's read-only status tuple.
func (q *Query) Status() Status {
	return q.client.Status()
}
