package lsp

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Manager is a process-wide holder for at most one Client, bound to one
// project root for the Client's lifetime. Construct one per process
// (or share a single instance) and call Get to obtain the live Client,
// starting it on first use.
type Manager struct {
	mu     sync.RWMutex
	client *Client
	root   string

	group singleflight.Group
}

// NewManager returns an empty Manager holding no Client.
func NewManager() *Manager {
	return &Manager{}
}

// Get returns the live Client bound to cfg.ProjectRoot, starting one if
// none exists yet. Concurrent calls during startup collapse into a
// single start and all callers observe the same Client or the same
// error. Calling Get with a different ProjectRoot than the live
// Client's fails with ProjectMismatch; call Reset first.
func (m *Manager) Get(ctx context.Context, cfg Config) (*Client, error) {
	m.mu.RLock()
	if m.client != nil {
		if m.root != cfg.ProjectRoot {
			m.mu.RUnlock()
			return nil, newErr(KindProjectMismatch, "get", cfg.ProjectRoot,
				fmt.Errorf("manager is bound to %q", m.root))
		}
		client := m.client
		m.mu.RUnlock()
		return client, nil
	}
	m.mu.RUnlock()

	v, err, _ := m.group.Do(cfg.ProjectRoot, func() (interface{}, error) {
		m.mu.Lock()
		if m.client != nil {
			client := m.client
			m.mu.Unlock()
			return client, nil
		}
		m.mu.Unlock()

		client := NewClient(cfg)
		if err := client.Start(ctx); err != nil {
			return nil, err
		}

		m.mu.Lock()
		m.client = client
		m.root = cfg.ProjectRoot
		m.mu.Unlock()
		return client, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Client), nil
}

// Reset shuts down the live Client, if any, and clears the singleton.
// Idempotent; safe to call when no Client exists.
func (m *Manager) Reset(ctx context.Context) error {
	m.mu.Lock()
	client := m.client
	m.client = nil
	m.root = ""
	m.mu.Unlock()

	if client == nil {
		return nil
	}
	return client.Shutdown(ctx)
}

// IsRunning reports whether a Client exists and is in the Ready state.
func (m *Manager) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client != nil && m.client.State() == StateReady
}

// OpenFilesCount returns the live Client's open-document count, or 0 if
// there is no Client.
func (m *Manager) OpenFilesCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.client == nil {
		return 0
	}
	return m.client.Status().OpenFilesCount
}

// IndexingStatus returns the live Client's indexing status string, or
// "not initialized" if there is no Client.
func (m *Manager) IndexingStatus() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.client == nil {
		return "not initialized"
	}
	return m.client.Status().IndexingStatus
}

// IsIndexing reports whether the live Client is currently indexing, or
// false if there is no Client.
func (m *Manager) IsIndexing() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.client == nil {
		return false
	}
	m.client.mu.Lock()
	defer m.client.mu.Unlock()
	return m.client.indexing.inProgress
}

// ProjectRoot returns the root the live Client is bound to, or "" if
// there is no Client.
func (m *Manager) ProjectRoot() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.root
}

// Status returns the full status tuple, valid even with no live Client.
func (m *Manager) Status() Status {
	m.mu.RLock()
	client := m.client
	root := m.root
	m.mu.RUnlock()
	if client == nil {
		return Status{ProjectRoot: root, IndexingStatus: "not initialized"}
	}
	return client.Status()
}
