// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package pdf implements the PDF Extractor Adapter of spec.md §4.3:
// primary text extraction via an external converter, with a
// sparse-text-triggered image extraction and OCR pass.
package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/durck/crawl/internal/cmdexec"
	"github.com/durck/crawl/internal/extract"
	"github.com/durck/crawl/internal/scratch"
)

// Adapter extracts a PDF's embedded text via the pdftotext tool, and when
// the result falls below cfg.OCRMinText and OCR is not disabled, renders
// up to cfg.OCRMaxImages pages to images for the media package's OCR pass
// to pick up, reported back as HasMedia (spec.md §4.3's sparse-text gate).
var Adapter extract.AdapterFunc = func(ctx context.Context, path string, scratchDir string, mgr *scratch.Manager, cfg extract.Config) (extract.Result, error) {
	res, err := cmdexec.Run(ctx, cmdexec.Spec{
		Path:    "pdftotext",
		Args:    []string{"-layout", path, "-"},
		Dir:     scratchDir,
		Timeout: cfg.CommandTimeout,
	})
	if err != nil {
		return extract.Result{}, err
	}
	text := strings.TrimSpace(string(res.Stdout))

	result := extract.Result{Text: text}
	if cfg.OCRDisabled || len(text) >= cfg.OCRMinText {
		return result, nil
	}

	if err := renderPages(ctx, path, scratchDir, cfg); err != nil {
		// A failed render degrades to text-only output rather than
		// failing the whole file (spec.md §7: extraction errors are
		// per-file and non-fatal).
		return result, nil
	}
	result.HasMedia = true

	pages, err := RenderedPages(scratchDir)
	if err != nil {
		return result, nil
	}
	for i, p := range pages {
		result.Nested = append(result.Nested, extract.Nested{
			Name: fmt.Sprintf("img%d", i+1),
			Path: p,
		})
	}
	return result, nil
}

// renderPages rasterizes up to cfg.OCRMaxImages pages of the PDF at path
// into scratchDir using pdftoppm, for a later OCR pass over the media
// package to consume.
func renderPages(ctx context.Context, path, scratchDir string, cfg extract.Config) error {
	last := cfg.OCRMaxImages
	if last <= 0 {
		last = 10
	}
	_, err := cmdexec.Run(ctx, cmdexec.Spec{
		Path: "pdftoppm",
		Args: []string{
			"-png", "-f", "1", "-l", strconv.Itoa(last),
			path, filepath.Join(scratchDir, "page"),
		},
		Dir:     scratchDir,
		Timeout: cfg.ImageTimeout,
	})
	return err
}

// RenderedPages lists the PNG pages a prior renderPages call produced, for
// the media package's OCR pass to read.
func RenderedPages(scratchDir string) ([]string, error) {
	entries, err := os.ReadDir(scratchDir)
	if err != nil {
		return nil, fmt.Errorf("pdf: listing rendered pages in %s: %w", scratchDir, err)
	}
	var pages []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "page") && strings.HasSuffix(e.Name(), ".png") {
			pages = append(pages, filepath.Join(scratchDir, e.Name()))
		}
	}
	return pages, nil
}
