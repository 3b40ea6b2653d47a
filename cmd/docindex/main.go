// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Command docindex crawls a filesystem root, extracts text from every
// document it finds, and maintains a searchable index over the results.
// It is organized as a small command tree (crawl, resume, index, serve),
// in the spirit of cloudeng.io/cmdutil/subcmd's FlagSet-per-command
// dispatch, without that package's YAML tree-definition machinery.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/durck/crawl/internal/config"
	"github.com/durck/crawl/internal/ctxlog"
	"github.com/durck/crawl/internal/xsignal"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load(os.Getenv("DOCINDEX_CONFIG"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "docindex: loading configuration:", err)
		os.Exit(1)
	}

	logger, closer, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, "docindex: configuring logging:", err)
		os.Exit(1)
	}
	defer closer.Close()

	ctx := ctxlog.WithLogger(context.Background(), logger)
	ctx, _, stop := xsignal.WithInterrupt(ctx)
	defer stop()

	var run func(context.Context, config.Config, []string) error
	switch os.Args[1] {
	case "crawl":
		run = runCrawl
	case "resume":
		run = runResume
	case "index":
		run = runIndex
	case "serve":
		run = runServe
	default:
		usage()
		os.Exit(2)
	}

	if err := run(ctx, cfg, os.Args[2:]); err != nil {
		ctxlog.Error(ctx, "command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: docindex <command> [flags]

commands:
  crawl    walk a filesystem root, extract text, write the CSV index
  resume   continue a previously interrupted crawl using its session store
  index    batch the CSV index's rows into the full-text search index
  serve    run the read-only search HTTP facade`)
}

// commonFlags registers the flags every subcommand that touches a crawl
// run shares, binding their defaults from cfg, plus the discovery-
// predicate tokens spec.md §6's Invocation section describes alongside
// exclude-dirs: size bounds, a name pattern, and mtime bounds.
func commonFlags(fs *flag.FlagSet, cfg config.Config) (root, sessionDB, dedupDB, csvPath *string, workers *int, disc *discoveryFlags) {
	root = fs.String("root", "", "filesystem root to crawl")
	sessionDB = fs.String("session-db", "", "session store path (default derived from -root)")
	dedupDB = fs.String("dedup-db", "", "dedup store path (default derived from -root)")
	csvPath = fs.String("out", "", "CSV index output path (default derived from -root)")
	workers = fs.Int("workers", cfg.DefaultThreadCount, "worker concurrency")
	disc = registerDiscoveryFlags(fs)
	return
}

// rootBaseName flattens a crawl root into the file name stem spec.md §6
// prescribes: the root path with separators replaced by underscores, so
// "smb/fs01/share" names "smb_fs01_share.csv" and its hidden
// ".smb_fs01_share.session.db"/".smb_fs01_share.dedupe.db" siblings.
func rootBaseName(root string) string {
	cleaned := strings.Trim(filepath.ToSlash(filepath.Clean(root)), "/")
	return strings.ReplaceAll(cleaned, "/", "_")
}

// resolveOutputPaths fills any of the session/dedup/CSV paths the operator
// left unset with their root-derived defaults.
func resolveOutputPaths(root string, sessionDB, dedupDB, csvPath *string) {
	base := rootBaseName(root)
	if *sessionDB == "" {
		*sessionDB = "." + base + ".session.db"
	}
	if *dedupDB == "" {
		*dedupDB = "." + base + ".dedupe.db"
	}
	if *csvPath == "" {
		*csvPath = base + ".csv"
	}
}
