// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package xsignal turns operating system interrupt/termination signals into
// context cancellation, adapted from cloudeng.io/cmdutil's HandleInterrupt
// and cloudeng.io/cmdutil/signals. The crawl engine treats the resulting
// cancellation as cooperative shutdown: in-flight extractions are killed,
// the index writer is flushed and scratch directories are removed (§5,
// §4.7 of SPEC_FULL.md).
package xsignal

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// ErrInterrupt is the cause recorded on the context's cancellation when an
// interrupt signal was the trigger.
var ErrInterrupt = errors.New("interrupted")

// Handler lets callers register additional cleanup to run on the same
// signal that cancels the context.
type Handler struct {
	mu      sync.Mutex
	cancels []func()
}

// RegisterCancel adds fns to the set of functions invoked on signal.
func (h *Handler) RegisterCancel(fns ...func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cancels = append(h.cancels, fns...)
}

func (h *Handler) run() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, fn := range h.cancels {
		fn()
	}
}

// WithInterrupt returns a context cancelled (with cause ErrInterrupt) when
// the process receives SIGINT/SIGTERM, along with a Handler that can
// register additional cleanup and a stop function that should be deferred
// to release the underlying signal.Notify registration.
func WithInterrupt(ctx context.Context) (context.Context, *Handler, func()) {
	ctx, cancel := context.WithCancelCause(ctx)
	h := &Handler{}
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			h.run()
			cancel(ErrInterrupt)
		case <-done:
		}
	}()
	stop := func() {
		close(done)
		signal.Stop(sigCh)
	}
	return ctx, h, stop
}
