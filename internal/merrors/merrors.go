// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package merrors provides a thread-safe accumulator for multiple errors.
// It is adapted from cloudeng.io/errors' M type: code that must keep
// processing after a per-item failure appends to an M and inspects Err()
// only at the end of a batch.
package merrors

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// M accumulates zero or more errors and is safe for concurrent use.
type M struct {
	mu   sync.Mutex
	errs []error
}

// Append records any non-nil errors.
func (m *M) Append(errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, err := range errs {
		if err != nil {
			m.errs = append(m.errs, err)
		}
	}
}

// Len returns the number of accumulated errors.
func (m *M) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.errs)
}

// Err returns nil if no errors were accumulated, otherwise an error whose
// Error() joins every accumulated error on its own line.
func (m *M) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch len(m.errs) {
	case 0:
		return nil
	case 1:
		return m.errs[0]
	default:
		return m
	}
}

// Unwrap supports errors.Is/As across the accumulated set.
func (m *M) Unwrap() []error {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]error, len(m.errs))
	copy(out, m.errs)
	return out
}

func (m *M) Error() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var b strings.Builder
	for i, err := range m.errs {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "--- %d of %d: %v", i+1, len(m.errs), err)
	}
	return b.String()
}

// Is reports whether target matches any accumulated error.
func (m *M) Is(target error) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, err := range m.errs {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
