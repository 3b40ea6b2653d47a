// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/durck/crawl/internal/engine"
)

// excludePredicate builds an engine.Predicate that rejects any path
// containing one of the configured exclude-dirs entries as a substring of
// the full path (spec.md §6: "exclude-dirs: comma-separated substring
// exclusions applied to path"), not just an exact path-component match.
func excludePredicate(excludeDirs []string) engine.Predicate {
	var patterns []string
	for _, d := range excludeDirs {
		if d != "" {
			patterns = append(patterns, d)
		}
	}
	if len(patterns) == 0 {
		return nil
	}
	return func(path string, d fs.DirEntry) bool {
		for _, p := range patterns {
			if strings.Contains(path, p) {
				return false
			}
		}
		return true
	}
}

// discoveryOptions carries the remaining discovery-predicate tokens
// spec.md §6's Invocation section calls out alongside exclude-dirs: size
// bounds, a filename glob pattern, and mtime bounds.
type discoveryOptions struct {
	MinSizeBytes int64
	MaxSizeBytes int64
	NamePattern  string
	MTimeAfter   time.Time
	MTimeBefore  time.Time
}

// discoveryFlags holds the flag.FlagSet-bound values for discoveryOptions
// until fs.Parse has run and they can be resolved.
type discoveryFlags struct {
	minSize     *int64
	maxSize     *int64
	namePattern *string
	mtimeAfter  *string
	mtimeBefore *string
}

func registerDiscoveryFlags(fs *flag.FlagSet) *discoveryFlags {
	return &discoveryFlags{
		minSize:     fs.Int64("min-size", 0, "minimum file size in bytes (0 = no bound)"),
		maxSize:     fs.Int64("max-size", 0, "maximum file size in bytes (0 = no bound)"),
		namePattern: fs.String("name-pattern", "", "glob pattern applied to each file's basename (empty = no filter)"),
		mtimeAfter:  fs.String("mtime-after", "", "RFC3339 timestamp; files modified before this are excluded"),
		mtimeBefore: fs.String("mtime-before", "", "RFC3339 timestamp; files modified after this are excluded"),
	}
}

// resolve parses the flags' string-encoded timestamps, once fs.Parse has
// run, into a discoveryOptions value.
func (f *discoveryFlags) resolve() (discoveryOptions, error) {
	opts := discoveryOptions{
		MinSizeBytes: *f.minSize,
		MaxSizeBytes: *f.maxSize,
		NamePattern:  *f.namePattern,
	}
	if *f.mtimeAfter != "" {
		t, err := time.Parse(time.RFC3339, *f.mtimeAfter)
		if err != nil {
			return opts, fmt.Errorf("invalid -mtime-after: %w", err)
		}
		opts.MTimeAfter = t
	}
	if *f.mtimeBefore != "" {
		t, err := time.Parse(time.RFC3339, *f.mtimeBefore)
		if err != nil {
			return opts, fmt.Errorf("invalid -mtime-before: %w", err)
		}
		opts.MTimeBefore = t
	}
	return opts, nil
}

// combinedPredicate composes exclude-dirs substring exclusion with the
// size/name-pattern/mtime discovery tokens into the single
// engine.Predicate the Crawl Engine's discovery stage evaluates per file.
func combinedPredicate(excludeDirs []string, opts discoveryOptions) engine.Predicate {
	exclude := excludePredicate(excludeDirs)
	noBounds := opts.MinSizeBytes <= 0 && opts.MaxSizeBytes <= 0 &&
		opts.NamePattern == "" && opts.MTimeAfter.IsZero() && opts.MTimeBefore.IsZero()

	return func(path string, d fs.DirEntry) bool {
		if exclude != nil && !exclude(path, d) {
			return false
		}
		if noBounds {
			return true
		}
		if opts.NamePattern != "" {
			ok, err := filepath.Match(opts.NamePattern, filepath.Base(path))
			if err != nil || !ok {
				return false
			}
		}
		if opts.MinSizeBytes <= 0 && opts.MaxSizeBytes <= 0 &&
			opts.MTimeAfter.IsZero() && opts.MTimeBefore.IsZero() {
			return true
		}
		info, err := d.Info()
		if err != nil {
			// a stat error degrades to "admit the file"; classify/extract
			// will surface the real failure instead.
			return true
		}
		if opts.MinSizeBytes > 0 && info.Size() < opts.MinSizeBytes {
			return false
		}
		if opts.MaxSizeBytes > 0 && info.Size() > opts.MaxSizeBytes {
			return false
		}
		if !opts.MTimeAfter.IsZero() && info.ModTime().Before(opts.MTimeAfter) {
			return false
		}
		if !opts.MTimeBefore.IsZero() && info.ModTime().After(opts.MTimeBefore) {
			return false
		}
		return true
	}
}
