package lsp

import (
	"log/slog"
	"time"
)

// Config is the explicit parameter object the runtime accepts; loading
// it from flags, env, or an INI file is a collaborator's job, not this
// package's.
type Config struct {
	// ClangdPath is the server executable. Defaults to "clangd".
	ClangdPath string
	// ClangdArgs are extra arguments appended after the defaults this
	// package always passes (--background-index, etc).
	ClangdArgs []string
	// CompileCommandsDir, if set, is passed as
	// --compile-commands-dir=<dir>; defaults to ProjectRoot.
	CompileCommandsDir string
	// ProjectRoot is the directory the server treats as the workspace
	// root. Required.
	ProjectRoot string
	// RequestTimeout bounds every request operation. Defaults to 30s.
	RequestTimeout time.Duration
	// StartupTimeout bounds the initialize round-trip. Defaults to 30s.
	StartupTimeout time.Duration
	// ShutdownGrace bounds the wait for the subprocess to exit after
	// shutdown/exit before it is killed. Defaults to 5s.
	ShutdownGrace time.Duration
	// WatchOpenDocuments enables the fsnotify-backed reopen-on-external-
	// edit mechanism for documents opened via the query surface.
	WatchOpenDocuments bool
	// Logger receives structured log records. Defaults to slog.Default().
	Logger *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.ClangdPath == "" {
		c.ClangdPath = "clangd"
	}
	if c.CompileCommandsDir == "" {
		c.CompileCommandsDir = c.ProjectRoot
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.StartupTimeout <= 0 {
		c.StartupTimeout = 30 * time.Second
	}
	if c.ShutdownGrace <= 0 {
		c.ShutdownGrace = 5 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

func (c Config) clangdArgs() []string {
	args := []string{
		"--log=error",
		"--background-index",
		"--compile-commands-dir=" + c.CompileCommandsDir,
	}
	return append(args, c.ClangdArgs...)
}
