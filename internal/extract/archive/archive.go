// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package archive implements the Container Extractor Adapter family of
// spec.md §4.3: generic archive unpacking via
// github.com/mholt/archiver/v3, plus Linux package formats unpacked
// through their native external tools.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archiver/v3"

	"github.com/durck/crawl/internal/cmdexec"
	"github.com/durck/crawl/internal/extract"
	"github.com/durck/crawl/internal/scratch"
)

// Generic unpacks any archive format archiver/v3 recognizes (zip, tar,
// tar.gz, tar.bz2, tar.xz, rar, 7z) into the per-file scratch directory the
// engine allocated for this extraction, and returns one Nested entry per
// member file, per spec.md §4.1 step 5's depth-bounded nested-expansion
// rule. The depth bound itself is enforced by the engine, not this
// adapter; the engine also owns releasing scratchDir once nested
// expansion has consumed these paths.
var Generic extract.AdapterFunc = func(ctx context.Context, path string, scratchDir string, mgr *scratch.Manager, cfg extract.Config) (extract.Result, error) {
	if err := archiver.Unarchive(path, scratchDir); err != nil {
		return extract.Result{}, fmt.Errorf("archive: unpacking %s: %w", path, err)
	}
	members, err := walkFiles(scratchDir)
	if err != nil {
		return extract.Result{}, err
	}
	return toNestedResult(scratchDir, members), nil
}

// RPM unpacks a .rpm package's payload via rpm2cpio | cpio, both external
// tools, since archiver/v3 does not speak the RPM container format.
var RPM extract.AdapterFunc = func(ctx context.Context, path string, scratchDir string, mgr *scratch.Manager, cfg extract.Config) (extract.Result, error) {
	if _, err := cmdexec.Run(ctx, cmdexec.Spec{
		Path:    "sh",
		Args:    []string{"-c", fmt.Sprintf("rpm2cpio %q | cpio -idm", path)},
		Dir:     scratchDir,
		Timeout: cfg.CommandTimeout,
	}); err != nil {
		return extract.Result{}, err
	}
	members, err := walkFiles(scratchDir)
	if err != nil {
		return extract.Result{}, err
	}
	return toNestedResult(scratchDir, members), nil
}

// DEB unpacks a .deb package's data archive via dpkg-deb, an external
// tool, since archiver/v3 does not speak the ar-based .deb container.
var DEB extract.AdapterFunc = func(ctx context.Context, path string, scratchDir string, mgr *scratch.Manager, cfg extract.Config) (extract.Result, error) {
	if _, err := cmdexec.Run(ctx, cmdexec.Spec{
		Path:    "dpkg-deb",
		Args:    []string{"-x", path, scratchDir},
		Timeout: cfg.CommandTimeout,
	}); err != nil {
		return extract.Result{}, err
	}
	members, err := walkFiles(scratchDir)
	if err != nil {
		return extract.Result{}, err
	}
	return toNestedResult(scratchDir, members), nil
}

// Package dispatches on extension between RPM and DEB, so the engine can
// wire a single adapter to classify.ClassPackage while still reaching
// both native unpacking tools.
var Package extract.AdapterFunc = func(ctx context.Context, path string, scratchDir string, mgr *scratch.Manager, cfg extract.Config) (extract.Result, error) {
	if strings.EqualFold(filepath.Ext(path), ".deb") {
		return DEB(ctx, path, scratchDir, mgr, cfg)
	}
	return RPM(ctx, path, scratchDir, mgr, cfg)
}

// walkFiles returns every regular file under root, recursively.
func walkFiles(root string) ([]string, error) {
	var files []string
	err := filepath.Walk(root, func(p string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !info.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	return files, err
}

// toNestedResult builds the archive's own record content as a newline-
// joined member listing (spec.md §8 scenario 3: "class=archive,
// content=archive listing"), alongside one Nested entry per member for
// the engine's depth-bounded expansion.
func toNestedResult(scratchDir string, members []string) extract.Result {
	nested := make([]extract.Nested, 0, len(members))
	var listing strings.Builder
	for _, m := range members {
		rel, err := filepath.Rel(scratchDir, m)
		if err != nil {
			rel = filepath.Base(m)
		}
		listing.WriteString(rel)
		listing.WriteString("\n")
		nested = append(nested, extract.Nested{Name: filepath.Base(m), Path: m})
	}
	return extract.Result{Text: strings.TrimSpace(listing.String()), Nested: nested}
}
