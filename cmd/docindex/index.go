// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/durck/crawl/internal/config"
	"github.com/durck/crawl/internal/ctxlog"
	"github.com/durck/crawl/internal/searchidx"
)

// runIndex batches a completed (or still-growing) CSV index into the
// bleve full-text index, per spec.md §4.8.
func runIndex(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("index", flag.ContinueOnError)
	root := fs.String("root", "", "crawl root the CSV was produced from (names the CSV when -csv is unset)")
	csvPath := fs.String("csv", "", "CSV index input path (default derived from -root)")
	indexDir := fs.String("index-dir", cfg.SearchIndexDir, "bleve index directory")
	batchSize := fs.Int("batch-size", cfg.SearchBatchSize, "documents per bleve batch")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *csvPath == "" {
		if *root == "" {
			return fmt.Errorf("index: one of -csv or -root is required")
		}
		*csvPath = rootBaseName(*root) + ".csv"
	}
	if *indexDir == "" {
		return fmt.Errorf("index: -index-dir is required (or set search-index-dir in config)")
	}

	bridge, err := searchidx.Open(*indexDir, *batchSize)
	if err != nil {
		return err
	}
	defer bridge.Close()

	n, err := bridge.IndexCSV(*csvPath)
	if err != nil {
		return err
	}
	ctxlog.Info(ctx, "search index updated", "documents", n, "csv", *csvPath, "index_dir", *indexDir)
	return nil
}
