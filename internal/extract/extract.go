// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package extract defines the common contract every Extractor Adapter
// family (spec.md §4.3) implements, plus the shared Config external
// adapters are invoked with. Concrete adapters live in the text, office,
// pdf, archive, mail, media, winfmt and opaque subpackages.
package extract

import (
	"context"
	"time"

	"github.com/durck/crawl/internal/scratch"
)

// Nested describes one document discovered inside another (an archive
// member, a mail attachment, a compound-document embedded object), per
// spec.md §4.1 step 5's nested-expansion rule.
type Nested struct {
	// Name is the nested entry's own basename, used to build its logical
	// URL fragment via urlmap.NestedURL.
	Name string
	// Path is where the nested entry was materialized on disk, inside the
	// scratch directory the parent extraction was given.
	Path string
}

// Result is what an adapter produces for a single file.
type Result struct {
	Text   string
	Nested []Nested
	// HasMedia records whether the adapter detected embedded images/audio
	// worth a follow-up extraction pass, gated by sparse-text thresholds
	// in the office and pdf adapters (spec.md §4.3).
	HasMedia bool
}

// Config carries the subset of internal/config.Config an adapter needs,
// passed explicitly rather than as a dependency on the config package so
// adapters stay testable with literal values.
type Config struct {
	CommandTimeout time.Duration
	ImageTimeout   time.Duration
	AudioTimeout   time.Duration
	OCRLanguages   []string
	OCRMinText     int
	OCRMaxImages   int
	OCRDisabled    bool
	AudioDisabled  bool
	ImagesDir      string
}

// Adapter extracts text (and, where applicable, nested documents) from a
// single file already known to belong to the adapter's class.
type Adapter interface {
	Extract(ctx context.Context, path string, scratchDir string, mgr *scratch.Manager, cfg Config) (Result, error)
}

// AdapterFunc adapts a plain function to the Adapter interface.
type AdapterFunc func(ctx context.Context, path string, scratchDir string, mgr *scratch.Manager, cfg Config) (Result, error)

func (f AdapterFunc) Extract(ctx context.Context, path string, scratchDir string, mgr *scratch.Manager, cfg Config) (Result, error) {
	return f(ctx, path, scratchDir, mgr, cfg)
}
