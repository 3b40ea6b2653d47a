// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package xgroup provides a concurrency-limited goroutine group, adapted
// from cloudeng.io/sync/errgroup. It backs the crawl engine's file worker
// pool, so that its concurrency limit is expressed through the group
// rather than via an ad-hoc semaphore.
package xgroup

import (
	"context"
	"sync"

	"github.com/durck/crawl/internal/merrors"
)

// T runs a set of goroutines, optionally bounded to a fixed concurrency,
// collecting every non-nil error returned.
type T struct {
	wg         sync.WaitGroup
	cancelFunc context.CancelFunc
	cancelOnce sync.Once
	errs       merrors.M
	limit      chan struct{}
}

// WithContext returns a group whose first non-nil error (or a call to
// Wait) cancels the derived context.
func WithContext(ctx context.Context) (*T, context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	return &T{cancelFunc: cancel}, ctx
}

// WithConcurrency bounds g to at most n concurrently running goroutines.
// Go blocks once the limit is reached.
func WithConcurrency(g *T, n int) *T {
	if n <= 0 {
		return g
	}
	g.limit = make(chan struct{}, n)
	return g
}

func (g *T) possiblyCancel() {
	g.cancelOnce.Do(func() {
		if g.cancelFunc != nil {
			g.cancelFunc()
		}
	})
}

// Go runs fn in a new goroutine, blocking if the concurrency limit has
// been reached.
func (g *T) Go(fn func() error) {
	if g.limit != nil {
		g.limit <- struct{}{}
	}
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		if g.limit != nil {
			defer func() { <-g.limit }()
		}
		if err := fn(); err != nil {
			g.errs.Append(err)
			g.possiblyCancel()
		}
	}()
}

// Wait blocks until every goroutine started with Go has returned, then
// cancels the group's context (if any) and returns every recorded error:
// nil if there were none, the error itself if there was one, and a
// merrors.M holding all of them otherwise.
func (g *T) Wait() error {
	g.wg.Wait()
	g.possiblyCancel()
	return g.errs.Err()
}
