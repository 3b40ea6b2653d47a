// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"

	"github.com/blevesearch/bleve/v2"

	"github.com/durck/crawl/internal/config"
	"github.com/durck/crawl/internal/ctxlog"
	"github.com/durck/crawl/internal/webui"
)

// runServe starts the read-only search HTTP facade over an existing
// bleve index directory (spec.md §4.8).
func runServe(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	indexDir := fs.String("index-dir", cfg.SearchIndexDir, "bleve index directory")
	addr := fs.String("addr", ":8080", "HTTP listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *indexDir == "" {
		return fmt.Errorf("serve: -index-dir is required (or set search-index-dir in config)")
	}

	idx, err := bleve.Open(*indexDir)
	if err != nil {
		return fmt.Errorf("serve: opening index %s: %w", *indexDir, err)
	}
	defer idx.Close()

	srv := webui.New(idx)
	httpServer := &http.Server{Addr: *addr, Handler: srv}

	go func() {
		<-ctx.Done()
		httpServer.Close()
	}()

	ctxlog.Info(ctx, "search facade listening", "addr", *addr, "index_dir", *indexDir)
	err = httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
