// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/durck/crawl/internal/config"
	"github.com/durck/crawl/internal/ctxlog"
	"github.com/durck/crawl/internal/dedup"
	"github.com/durck/crawl/internal/engine"
	"github.com/durck/crawl/internal/extract"
	"github.com/durck/crawl/internal/index"
	"github.com/durck/crawl/internal/scratch"
	"github.com/durck/crawl/internal/session"
)

// runCrawl implements the "crawl" subcommand: a fresh run starting with
// empty session/dedup stores at the given paths (or reusing whatever is
// already there, which is exactly what makes "resume" just a second
// invocation of the same command).
func runCrawl(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("crawl", flag.ContinueOnError)
	root, sessionDB, dedupDB, csvPath, workers, disc := commonFlags(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *root == "" {
		return fmt.Errorf("crawl: -root is required")
	}
	discOpts, err := disc.resolve()
	if err != nil {
		return fmt.Errorf("crawl: %w", err)
	}
	resolveOutputPaths(*root, sessionDB, dedupDB, csvPath)

	return runCrawlWith(ctx, cfg, *root, *sessionDB, *dedupDB, *csvPath, *workers, discOpts)
}

// openSessionBackend selects the session store implementation named by the
// session-backend key: the relational default, or the append-text
// alternative spec.md §4.5 admits only under a single-worker invariant,
// which runCrawlWith enforces by clamping the worker count.
func openSessionBackend(ctx context.Context, cfg config.Config, path string) (session.Backend, error) {
	switch cfg.SessionBackend {
	case "", "relational":
		return session.Open(ctx, path)
	case "append-text":
		return session.OpenText(path)
	default:
		return nil, fmt.Errorf("unknown session-backend %q (want relational or append-text)", cfg.SessionBackend)
	}
}

func runCrawlWith(ctx context.Context, cfg config.Config, root, sessionDB, dedupDB, csvPath string, workers int, discOpts discoveryOptions) error {
	sessions, err := openSessionBackend(ctx, cfg, sessionDB)
	if err != nil {
		return err
	}
	defer sessions.Close()

	if cfg.SessionBackend == "append-text" && workers != 1 {
		// The append-text backend is run only in single-worker mode
		// (spec.md §4.5, §6).
		ctxlog.Warn(ctx, "append-text session backend forces single-worker mode", "requested", workers)
		workers = 1
	}

	dedupStore, err := dedup.Open(ctx, dedupDB)
	if err != nil {
		return err
	}
	defer dedupStore.Close()

	scratchMgr, err := scratch.New(cfg.TempDir)
	if err != nil {
		return err
	}
	defer scratchMgr.RemoveAll()

	writer, err := index.Open(csvPath, cfg.CSVBufferBytes)
	if err != nil {
		return err
	}
	defer writer.Close()

	extractCfg := extract.Config{
		CommandTimeout: time.Duration(cfg.CommandTimeoutSecs) * time.Second,
		ImageTimeout:   time.Duration(cfg.ImageTimeoutSecs) * time.Second,
		AudioTimeout:   time.Duration(cfg.AudioTimeoutSecs) * time.Second,
		OCRLanguages:   cfg.OCRLanguages,
		OCRMinText:     cfg.OCRMinText,
		OCRMaxImages:   cfg.OCRMaxImages,
		OCRDisabled:    cfg.OCRDisabled,
		AudioDisabled:  cfg.AudioDisabled,
		ImagesDir:      cfg.ImagesDir,
	}

	eng := engine.New(scratchMgr, extractCfg)
	eng.MaxDepth = cfg.MaxRecursionDepth
	eng.DedupEnabled = cfg.DedupeEnabled
	eng.DedupHash = dedup.Algorithm(cfg.DedupeHash)

	predicate := combinedPredicate(cfg.ExcludeDirs, discOpts)

	// Run records live in the relational backend's runs table; the
	// append-text backend has nowhere durable to put them.
	var runID int64
	relational, _ := sessions.(*session.Store)
	if relational != nil {
		runID, err = relational.RecordRunStart(ctx, root, workers)
		if err != nil {
			ctxlog.Warn(ctx, "recording run start failed", "error", err)
		}
	}

	stats, err := eng.Crawl(ctx, root, predicate, workers, sessions, dedupStore, writer)

	if relational != nil && runID != 0 {
		if rerr := relational.RecordRunFinish(ctx, runID, stats.FilesTotal, stats.FilesProcessed, stats.FilesSkipped, stats.FilesError); rerr != nil {
			ctxlog.Warn(ctx, "recording run finish failed", "error", rerr)
		}
	}

	ctxlog.Info(ctx, "crawl finished",
		"root", root,
		"total", stats.FilesTotal,
		"processed", stats.FilesProcessed,
		"skipped", stats.FilesSkipped,
		"errors", stats.FilesError,
		"nested_dropped", stats.NestedDropped,
		"duration", stats.EndTime.Sub(stats.StartTime))

	return err
}
