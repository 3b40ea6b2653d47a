// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package engine implements the Crawl Engine of spec.md §4.1: it walks a
// filesystem root, dispatches each discovered file to a bounded worker
// pool, and drives classification, dedup, extraction, nested expansion
// and index writing for every file exactly once. Grounded on the
// goroutine-pipeline shape of cloudeng.io/file/crawl's crawler (a
// discovery stage feeding a fixed-size worker pool over a channel),
// re-targeted from "fetch a URL, store the blob" to "classify a local
// file, extract its text, recurse into anything nested".
package engine

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/durck/crawl/internal/classify"
	"github.com/durck/crawl/internal/ctxlog"
	"github.com/durck/crawl/internal/dedup"
	"github.com/durck/crawl/internal/extract"
	"github.com/durck/crawl/internal/index"
	"github.com/durck/crawl/internal/scratch"
	"github.com/durck/crawl/internal/session"
	"github.com/durck/crawl/internal/urlmap"
	"github.com/durck/crawl/internal/xgroup"
)

// Predicate decides whether a discovered path should be crawled at all,
// letting a caller exclude directories or files (spec.md §6's
// exclude-dirs configuration) before it ever reaches the worker pool.
type Predicate func(path string, d fs.DirEntry) bool

// Stats accumulates the engine's run-level counters, reported back to the
// caller and persisted via session.Store.RecordRunFinish (SPEC_FULL.md
// §4's Crawl Run record).
type Stats struct {
	FilesTotal     int64
	FilesProcessed int64
	FilesSkipped   int64
	FilesError     int64
	// NestedDropped counts nested entries silently discarded because their
	// parent sat at the recursion depth limit (spec.md §4.1 step 5's
	// "remaining nested files are silently dropped with a warning counter").
	NestedDropped int64
	StartTime     time.Time
	EndTime       time.Time
}

// Engine holds everything a crawl run needs beyond the per-run
// parameters passed to Crawl: the classification registry, the adapter
// set, scratch space, and the extractor timeout/feature configuration.
type Engine struct {
	Registry []classify.Entry
	Adapters map[classify.Class]extract.Adapter
	Scratch  *scratch.Manager
	Config   extract.Config

	MaxDepth     int
	DedupEnabled bool
	DedupHash    dedup.Algorithm
}

// New returns an Engine with the default registry and adapter set wired
// in; callers may still override Registry/Adapters before calling Crawl.
func New(scratchMgr *scratch.Manager, cfg extract.Config) *Engine {
	return &Engine{
		Registry:     classify.DefaultRegistry,
		Adapters:     DefaultAdapters(),
		Scratch:      scratchMgr,
		Config:       cfg,
		MaxDepth:     5,
		DedupEnabled: true,
		DedupHash:    dedup.SHA256,
	}
}

// item is one unit of dispatch: a physical path at a given nesting depth,
// carrying the logical URL of its containing document when it is itself
// a nested entry (depth > 0).
type item struct {
	path       string
	depth      int
	parentURL  string
	isNestedOf string // basename used to build the nested URL fragment

	// recordPath is the physical path written to the emitted record's Path
	// field. For a top-level file it equals path; for any nested file it
	// is inherited unchanged from its containing document, since spec.md
	// §3 defines a nested record's physical path as "the containing
	// archive or document", not the scratch file the adapter materialized
	// it into.
	recordPath string
}

// Crawl walks root, claims and processes every file predicate admits, and
// returns the run's final Stats. n bounds worker concurrency
// (spec.md §5's "configurable worker count, default 4").
func (e *Engine) Crawl(ctx context.Context, root string, predicate Predicate, n int,
	sessions session.Backend, dedupStore *dedup.Store, writer *index.Writer) (Stats, error) {

	stats := Stats{StartTime: time.Now()}
	target := urlmap.Resolve(root)

	if n <= 0 {
		n = 4
	}
	g, gctx := xgroup.WithContext(ctx)
	// n worker goroutines plus the single discovery goroutine must all be
	// able to run concurrently, or the discovery goroutine's own Go slot
	// starves the workers it feeds.
	g = xgroup.WithConcurrency(g, n+1)

	items := make(chan item, n*4)

	g.Go(func() error {
		defer close(items)
		return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				ctxlog.Warn(gctx, "walk error", "path", path, "error", err)
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if predicate != nil && !predicate(path, d) {
				return nil
			}
			atomic.AddInt64(&stats.FilesTotal, 1)
			select {
			case items <- item{path: path, depth: 0, recordPath: path}:
			case <-gctx.Done():
				return gctx.Err()
			}
			return nil
		})
	})

	for i := 0; i < n; i++ {
		g.Go(func() error {
			for it := range items {
				e.processItem(gctx, it, target, sessions, dedupStore, writer, &stats)
			}
			return nil
		})
	}

	err := g.Wait()
	stats.EndTime = time.Now()
	return stats, err
}

// processItem runs one file through claim -> classify -> dedup ->
// extract -> nested expansion -> emit, per spec.md §4.1's state machine.
// Errors at any step are recorded in Stats and logged, never propagated,
// so one bad file never aborts the run (spec.md §7).
func (e *Engine) processItem(ctx context.Context, it item, target urlmap.Target,
	sessions session.Backend, dedupStore *dedup.Store, writer *index.Writer, stats *Stats) {

	log := ctxlog.Logger(ctx).With("path", it.path, "depth", it.depth)

	claimed, err := sessions.Claim(ctx, it.path)
	if err != nil {
		log.Error("claim failed", "error", err)
		atomic.AddInt64(&stats.FilesError, 1)
		return
	}
	if !claimed {
		atomic.AddInt64(&stats.FilesSkipped, 1)
		return
	}

	class, _, err := classify.Classify(it.path, e.Registry)
	if err != nil {
		log.Warn("classification degraded to unknown", "error", err)
	}

	if e.DedupEnabled {
		hash, herr := dedup.HashFile(it.path, e.DedupHash)
		if herr == nil {
			first, derr := dedupStore.Claim(ctx, hash, it.path)
			if derr == nil && !first {
				sessions.MarkDone(ctx, it.path, session.StatusDone)
				atomic.AddInt64(&stats.FilesSkipped, 1)
				return
			}
		}
	}

	var url string
	if it.depth == 0 {
		url = target.LogicalURL(it.path)
	} else {
		url = urlmap.NestedURL(it.parentURL, it.isNestedOf)
	}

	result, scratchDir, extractErr := e.extract(ctx, it.path, class)
	if scratchDir != "" {
		// Held open until nested expansion below has read any files the
		// adapter left behind; released once this file's full pipeline
		// (including its own recursive nested processing) is done, per
		// spec.md §5's "a worker must never hold a scratch directory
		// across file boundaries" (the boundary is this file, not this
		// extraction).
		defer e.Scratch.Release(scratchDir)
	}
	// finalStatus is written once, after every step that could still fail
	// has run; an earlier revision wrote StatusError here and then
	// unconditionally overwrote it with StatusDone a few lines later,
	// which meant the session store never actually recorded an error.
	finalStatus := session.StatusDone
	if extractErr != nil {
		log.Warn("extraction failed", "class", class, "error", extractErr)
		finalStatus = session.StatusError
		atomic.AddInt64(&stats.FilesError, 1)
		// A failed or timed-out extraction is a full per-file failure: the
		// record is emitted with empty content and any partial scratch
		// output the adapter left behind is not expanded (spec.md §7;
		// Open Question 3's resolution in SPEC_FULL.md §10).
		result = extract.Result{}
	}

	// Nested expansion runs before the parent's own record is written: a
	// worker emits its File Record for a file only after all of that
	// file's nested expansions have returned (spec.md §5 ordering
	// guarantee (c)).
	if it.depth < e.MaxDepth {
		for _, nested := range result.Nested {
			atomic.AddInt64(&stats.FilesTotal, 1)
			nestedItem := item{
				path:       nested.Path,
				depth:      it.depth + 1,
				parentURL:  url,
				isNestedOf: nested.Name,
				recordPath: it.recordPath,
			}
			e.processItem(ctx, nestedItem, target, sessions, dedupStore, writer, stats)
		}
	} else if len(result.Nested) > 0 {
		atomic.AddInt64(&stats.NestedDropped, int64(len(result.Nested)))
		log.Warn("max nesting depth reached, dropping nested entries", "count", len(result.Nested))
	}

	row := index.Row{
		Timestamp: time.Now().Unix(),
		URL:       url,
		Path:      it.recordPath,
		Server:    target.Server,
		Share:     target.Share,
		Ext:       extensionOf(it.path),
		Class:     string(class),
		Content:   result.Text,
	}
	if err := writer.Write(row); err != nil {
		log.Error("index write failed", "error", err)
		atomic.AddInt64(&stats.FilesError, 1)
		return
	}

	sessions.MarkDone(ctx, it.path, finalStatus)
	atomic.AddInt64(&stats.FilesProcessed, 1)
}

// extensionOf returns the filename suffix after the last dot, with the dot
// itself stripped (spec.md §3: "extension ... empty if none"), e.g.
// "Q1.docx" -> "docx", "Makefile" -> "".
func extensionOf(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}
	return ext[1:]
}

// extract runs the class's adapter under its timeout category and returns
// the scratch directory it was given, so the caller can keep any nested
// files alive until it has finished enumerating result.Nested (spec.md
// §4.1 step 5). The caller, not extract, owns releasing that directory.
func (e *Engine) extract(ctx context.Context, path string, class classify.Class) (extract.Result, string, error) {
	adapter, ok := e.Adapters[class]
	if !ok {
		if classify.IsTextual(path) {
			adapter = e.Adapters[classify.ClassText]
		} else {
			return extract.Result{}, "", nil
		}
	}

	dir, err := e.Scratch.Alloc()
	if err != nil {
		return extract.Result{}, "", fmt.Errorf("engine: allocating scratch: %w", err)
	}

	timeout := e.Config.CommandTimeout
	switch class {
	case classify.ClassImage:
		timeout = e.Config.ImageTimeout
	case classify.ClassAudio, classify.ClassVideo:
		timeout = e.Config.AudioTimeout
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := adapter.Extract(runCtx, path, dir, e.Scratch, e.Config)
	return result, dir, err
}
