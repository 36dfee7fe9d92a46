package lsp

import (
	"context"
	"os/exec"
	"sync"
	"testing"
)

func TestManager_GetWithoutClangdFailsToSpawn(t *testing.T) {
	if _, err := exec.LookPath("clangd"); err == nil {
		t.Skip("clangd is on PATH; this test exercises the spawn-failure path only")
	}

	mgr := NewManager()
	_, err := mgr.Get(context.Background(), Config{ProjectRoot: t.TempDir()})
	if !Is(err, KindSpawnError) {
		t.Fatalf("err = %v, want KindSpawnError", err)
	}
}

func TestManager_ProjectMismatchRequiresReset(t *testing.T) {
	mgr := &Manager{client: &Client{state: StateReady}, root: "/proj-a"}

	_, err := mgr.Get(context.Background(), Config{ProjectRoot: "/proj-b"})
	if !Is(err, KindProjectMismatch) {
		t.Fatalf("err = %v, want KindProjectMismatch", err)
	}

	// Same root as the live client is not a mismatch.
	client, err := mgr.Get(context.Background(), Config{ProjectRoot: "/proj-a"})
	if err != nil {
		t.Fatalf("Get with matching root: %v", err)
	}
	if client != mgr.client {
		t.Fatalf("Get returned a different Client instance for the same root")
	}
}

func TestManager_ResetIsIdempotentWithNoClient(t *testing.T) {
	mgr := NewManager()
	if err := mgr.Reset(context.Background()); err != nil {
		t.Fatalf("Reset with no client: %v", err)
	}
	if mgr.IsRunning() {
		t.Fatalf("IsRunning() = true on empty manager")
	}
	if mgr.ProjectRoot() != "" {
		t.Fatalf("ProjectRoot() = %q, want empty", mgr.ProjectRoot())
	}
	if got := mgr.IndexingStatus(); got != "not initialized" {
		t.Fatalf("IndexingStatus() = %q, want %q", got, "not initialized")
	}
}

func TestManager_StatusWithNoClient(t *testing.T) {
	mgr := NewManager()
	st := mgr.Status()
	if st.Running {
		t.Fatalf("Status().Running = true on empty manager")
	}
	if st.IndexingStatus != "not initialized" {
		t.Fatalf("Status().IndexingStatus = %q", st.IndexingStatus)
	}
}

// TestManager_ConcurrentGetCollapsesToOneStart exercises the
// singleflight-backed single-initialization gate directly: it does not
// spawn a real clangd, and it does not count how many starts ran; it
// verifies every concurrent caller attempting to bind the same
// not-yet-started root gets a SpawnError (the only outcome available
// without a real clangd on PATH).
func TestManager_ConcurrentGetCollapsesToOneStart(t *testing.T) {
	if _, err := exec.LookPath("clangd"); err == nil {
		t.Skip("clangd is on PATH; this test exercises the spawn-failure path only")
	}

	mgr := NewManager()
	root := t.TempDir()

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = mgr.Get(context.Background(), Config{ProjectRoot: root})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if !Is(err, KindSpawnError) {
			t.Fatalf("errs[%d] = %v, want KindSpawnError", i, err)
		}
	}
}
