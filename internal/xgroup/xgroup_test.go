// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package xgroup

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitReturnsNilWhenNoErrors(t *testing.T) {
	g, _ := WithContext(context.Background())
	var n int64
	for i := 0; i < 5; i++ {
		g.Go(func() error {
			atomic.AddInt64(&n, 1)
			return nil
		})
	}
	assert.NoError(t, g.Wait())
	assert.Equal(t, int64(5), n)
}

func TestWaitCollectsErrors(t *testing.T) {
	g, _ := WithContext(context.Background())
	e1 := errors.New("first")
	e2 := errors.New("second")
	g.Go(func() error { return e1 })
	g.Go(func() error { return e2 })

	err := g.Wait()
	assert.True(t, errors.Is(err, e1))
	assert.True(t, errors.Is(err, e2))
}

func TestContextCancelledOnError(t *testing.T) {
	g, ctx := WithContext(context.Background())
	g.Go(func() error { return errors.New("boom") })
	g.Go(func() error {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Second):
			t.Error("context was not cancelled after a sibling error")
			return nil
		}
	})
	_ = g.Wait()
}

func TestWithConcurrencyBoundsParallelism(t *testing.T) {
	g, _ := WithContext(context.Background())
	g = WithConcurrency(g, 2)

	var running, max int64
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			cur := atomic.AddInt64(&running, 1)
			for {
				m := atomic.LoadInt64(&max)
				if cur <= m || atomic.CompareAndSwapInt64(&max, m, cur) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt64(&running, -1)
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.LessOrEqual(t, atomic.LoadInt64(&max), int64(2))
}
