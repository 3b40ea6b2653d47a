// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package scratch implements the Scratch Manager of spec.md §4.7: bounded
// temp directories with guaranteed cleanup. Grounded on the cleanup-set
// pattern of cloudeng.io/cmdutil/signals.Handler (register cleanup
// functions, run them all on shutdown) applied to per-file scratch
// directories instead of process-wide cancel functions.
package scratch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Manager allocates uniquely named directories under a configured root
// and guarantees every allocation it has not yet released is removed when
// RemoveAll is called (normal completion, error, timeout or signal-
// triggered shutdown all funnel through the same call, per spec.md §4.7
// and §5's per-worker discipline).
type Manager struct {
	root string

	mu   sync.Mutex
	dirs map[string]struct{}
}

// New returns a Manager that allocates scratch directories under root.
func New(root string) (*Manager, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("scratch: preparing root %s: %w", root, err)
	}
	return &Manager{root: root, dirs: make(map[string]struct{})}, nil
}

// Alloc creates and registers a new, empty scratch directory. The caller
// must call Release when finished with it (normally via a defer
// immediately after Alloc), even on adapter failure or timeout, and must
// never hold it across file boundaries (spec.md §5 per-worker discipline).
func (m *Manager) Alloc() (string, error) {
	dir, err := os.MkdirTemp(m.root, "docindex-*")
	if err != nil {
		return "", fmt.Errorf("scratch: allocating under %s: %w", m.root, err)
	}
	m.mu.Lock()
	m.dirs[dir] = struct{}{}
	m.mu.Unlock()
	return dir, nil
}

// Release removes dir and deregisters it. It is safe to call more than
// once or with a directory that was never allocated by this Manager.
func (m *Manager) Release(dir string) error {
	m.mu.Lock()
	_, ok := m.dirs[dir]
	delete(m.dirs, dir)
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return os.RemoveAll(dir)
}

// RemoveAll removes every scratch directory still registered. It is
// called once on engine shutdown (normal or signal-triggered) to satisfy
// spec.md §8 invariant 7: no scratch directory allocated by the engine
// remains under the temp root after termination.
func (m *Manager) RemoveAll() error {
	m.mu.Lock()
	dirs := make([]string, 0, len(m.dirs))
	for d := range m.dirs {
		dirs = append(dirs, d)
	}
	m.dirs = make(map[string]struct{})
	m.mu.Unlock()

	var firstErr error
	for _, d := range dirs {
		if err := os.RemoveAll(d); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Outstanding returns the number of scratch directories currently
// allocated and not yet released; used only for diagnostics/tests.
func (m *Manager) Outstanding() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.dirs)
}

// Join is a convenience wrapper so adapters need not import path/filepath
// directly for scratch-relative paths.
func Join(dir string, elems ...string) string {
	return filepath.Join(append([]string{dir}, elems...)...)
}
