// Package lsp implements a long-lived client runtime for a Language
// Server Protocol server (clangd), bridging an agent's code-intelligence
// queries to JSON-RPC 2.0 framed over the server's stdio.
//
// The package is organized bottom-up:
//
//   - codec.go implements the Content-Length framed JSON-RPC wire format.
//   - types.go holds the LSP wire types the client sends and receives.
//   - errors.go defines the error-kind taxonomy callers can match on.
//   - client.go owns one subprocess, correlates requests to responses,
//     and tracks readiness state derived from server notifications.
//   - manager.go is the process-wide singleton holder for one Client
//     bound to one project root.
//   - query.go is the thin, stateless layer callers are expected to use:
//     it ensures a document is open before querying it and annotates
//     empty results with readiness hints.
//   - watch.go optionally keeps documents fresh against external edits.
//   - metrics.go wires OpenTelemetry tracing and metrics around Client
//     operations.
//
// Example:
//
//	mgr := lsp.NewManager()
//	client, err := mgr.Get(ctx, lsp.Config{
//		ProjectRoot: "/path/to/project",
//		ClangdPath:  "clangd",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	locs, err := lsp.NewQuery(client).Definition(ctx, "/path/to/project/main.cpp", 10, 4)
package lsp
