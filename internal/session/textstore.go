// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// TextStore is the append-text session backend (spec.md §4.5's
// "text-file-plus-flock alternative"): a line-oriented file of claimed
// paths, loaded into memory at open and appended to on every claim. The
// flock guarantees only one process holds the store; the caller must
// additionally enforce the single-worker invariant (cmd/docindex forces
// workers to 1 when this backend is selected), since the in-memory set
// plus mutex serializes claims within the process but gives none of the
// cross-worker fairness the relational backend's UNIQUE constraint does.
var _ Backend = (*TextStore)(nil)

type TextStore struct {
	mu      sync.Mutex
	f       *os.File
	w       *bufio.Writer
	lock    *flock.Flock
	claimed map[string]struct{}
}

// OpenText opens (creating if necessary) the append-text session file at
// path, acquiring an exclusive lock on a sibling .lock file for the
// lifetime of the store. It fails immediately if another process already
// holds the lock.
func OpenText(path string) (*TextStore, error) {
	fl := flock.New(path + ".lock")
	held, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("session: locking %s: %w", path, err)
	}
	if !held {
		return nil, fmt.Errorf("session: %s is held by another process", path)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		fl.Unlock()
		return nil, fmt.Errorf("session: opening %s: %w", path, err)
	}

	claimed := make(map[string]struct{})
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		// Each line is "path\tclaimed_at\tstatus"; only the path matters
		// for the claimed set, later status lines for the same path are
		// tolerated and collapse into the same entry.
		if i := strings.IndexByte(line, '\t'); i > 0 {
			line = line[:i]
		}
		claimed[line] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		f.Close()
		fl.Unlock()
		return nil, fmt.Errorf("session: reading %s: %w", path, err)
	}
	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		f.Close()
		fl.Unlock()
		return nil, err
	}
	return &TextStore{
		f:       f,
		w:       bufio.NewWriter(f),
		lock:    fl,
		claimed: claimed,
	}, nil
}

// Claim inserts path if absent and reports whether the insert succeeded.
// Atomicity here is only within this process (the flock excludes other
// processes entirely), which is exactly the weaker contract spec.md §4.5
// permits this backend.
func (s *TextStore) Claim(ctx context.Context, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.claimed[path]; ok {
		return false, nil
	}
	s.claimed[path] = struct{}{}
	if _, err := fmt.Fprintf(s.w, "%s\t%d\t%s\n", path, time.Now().Unix(), StatusClaimed); err != nil {
		return false, fmt.Errorf("session: appending claim for %s: %w", path, err)
	}
	if err := s.w.Flush(); err != nil {
		return false, err
	}
	return true, nil
}

// MarkDone appends a status line for path. The claimed set is append-only;
// the latest status line wins for out-of-band inspection.
func (s *TextStore) MarkDone(ctx context.Context, path string, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.w, "%s\t%d\t%s\n", path, time.Now().Unix(), status); err != nil {
		return err
	}
	return s.w.Flush()
}

// Contains reports whether path has already been claimed.
func (s *TextStore) Contains(ctx context.Context, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.claimed[path]
	return ok, nil
}

// Count returns the number of distinct claimed paths.
func (s *TextStore) Count(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.claimed)), nil
}

// Close flushes pending lines, releases the lock and closes the file.
func (s *TextStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.w.Flush(); err != nil {
		return err
	}
	if err := s.lock.Unlock(); err != nil {
		return err
	}
	return s.f.Close()
}
