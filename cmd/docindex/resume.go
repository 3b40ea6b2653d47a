// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/durck/crawl/internal/config"
)

// runResume continues a previously interrupted crawl. Because the engine's
// only concurrency primitive is an atomic claim against the session store
// (spec.md §4.5), resuming is exactly re-running "crawl" against the same
// session/dedup/CSV paths: every already-claimed path is skipped, and
// discovery picks up wherever the filesystem walk naturally continues.
func runResume(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("resume", flag.ContinueOnError)
	root, sessionDB, dedupDB, csvPath, workers, disc := commonFlags(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *root == "" {
		return fmt.Errorf("resume: -root is required")
	}
	discOpts, err := disc.resolve()
	if err != nil {
		return fmt.Errorf("resume: %w", err)
	}
	resolveOutputPaths(*root, sessionDB, dedupDB, csvPath)
	return runCrawlWith(ctx, cfg, *root, *sessionDB, *dedupDB, *csvPath, *workers, discOpts)
}
