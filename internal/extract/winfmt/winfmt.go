// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package winfmt implements the Windows-specific Extractor Adapter family
// of spec.md §4.3: shortcut (.lnk) metadata, executable string dumps,
// Thumbs.db cache thumbnails, and Windows Event Log (.evtx) records.
package winfmt

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/durck/crawl/internal/cmdexec"
	"github.com/durck/crawl/internal/extract"
	"github.com/durck/crawl/internal/scratch"
)

const lnkMagic = "\x4c\x00\x00\x00"

// LNK parses the fixed ShellLinkHeader of a Windows .lnk shortcut and
// reports its target path and last-modified timestamp. Only the header
// fields spec.md §4.3 calls out (target path, timestamps) are decoded;
// the optional LinkInfo/StringData structures are read best-effort.
var LNK extract.AdapterFunc = func(ctx context.Context, path string, scratchDir string, mgr *scratch.Manager, cfg extract.Config) (extract.Result, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return extract.Result{}, err
	}
	if len(raw) < 0x4c || string(raw[0:4]) != lnkMagic {
		return extract.Result{}, fmt.Errorf("winfmt: %s is not a valid shell link", path)
	}

	mtimeFiletime := binary.LittleEndian.Uint64(raw[0x2c:0x34])
	mtime := filetimeToTime(mtimeFiletime)

	target := findASCIIRun(raw[0x4c:])
	text := fmt.Sprintf("target=%s modified=%s", target, mtime.Format(time.RFC3339))
	return extract.Result{Text: text}, nil
}

func filetimeToTime(ft uint64) time.Time {
	if ft == 0 {
		return time.Time{}
	}
	// FILETIME: 100ns intervals since 1601-01-01, per the Windows epoch.
	const epochDiff = 116444736000000000
	unixNano := (int64(ft) - epochDiff) * 100
	return time.Unix(0, unixNano).UTC()
}

func findASCIIRun(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		if c >= 0x20 && c < 0x7f {
			sb.WriteByte(c)
			if sb.Len() > 260 {
				break
			}
			continue
		}
		if sb.Len() > 4 {
			return sb.String()
		}
		sb.Reset()
	}
	return sb.String()
}

// Executable dumps printable-string runs from a PE/ELF/Mach-O binary,
// mirroring the Unix `strings` tool's output, since that is what an
// auditor actually wants from a binary: embedded paths, URLs, command
// lines and version strings.
var Executable extract.AdapterFunc = func(ctx context.Context, path string, scratchDir string, mgr *scratch.Manager, cfg extract.Config) (extract.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return extract.Result{}, err
	}
	defer f.Close()

	var sb strings.Builder
	var run []byte
	const minRun = 4
	r := bufio.NewReaderSize(f, 64*1024)
	for {
		b, err := r.ReadByte()
		if err != nil {
			break
		}
		if b >= 0x20 && b < 0x7f {
			run = append(run, b)
			continue
		}
		if len(run) >= minRun {
			sb.Write(run)
			sb.WriteByte(' ')
		}
		run = run[:0]
	}
	if len(run) >= minRun {
		sb.Write(run)
	}
	return extract.Result{Text: sb.String()}, nil
}

// ThumbsDB extracts the OLE-compound Thumbs.db cache via an external
// vinetto-style tool, producing embedded thumbnail images into scratch
// for the media package's OCR pass; spec.md §4.3 treats Thumbs.db purely
// as an image container, not a text source.
var ThumbsDB extract.AdapterFunc = func(ctx context.Context, path string, scratchDir string, mgr *scratch.Manager, cfg extract.Config) (extract.Result, error) {
	if _, err := cmdexec.Run(ctx, cmdexec.Spec{
		Path:    "vinetto",
		Args:    []string{"-o", scratchDir, path},
		Dir:     scratchDir,
		Timeout: cfg.CommandTimeout,
	}); err != nil {
		return extract.Result{}, err
	}
	entries, err := os.ReadDir(scratchDir)
	if err != nil {
		return extract.Result{}, err
	}
	var nested []extract.Nested
	for _, e := range entries {
		if !e.IsDir() {
			nested = append(nested, extract.Nested{Name: e.Name(), Path: scratchDir + string(os.PathSeparator) + e.Name()})
		}
	}
	return extract.Result{Nested: nested, HasMedia: len(nested) > 0}, nil
}

// EVTX dumps a Windows Event Log file to JSON lines via an external
// evtx_dump-style tool, returning the raw JSON-lines output as Text for
// downstream search indexing rather than attempting field-by-field
// parsing in Go.
var EVTX extract.AdapterFunc = func(ctx context.Context, path string, scratchDir string, mgr *scratch.Manager, cfg extract.Config) (extract.Result, error) {
	res, err := cmdexec.Run(ctx, cmdexec.Spec{
		Path:    "evtx_dump",
		Args:    []string{"-o", "jsonl", path},
		Dir:     scratchDir,
		Timeout: cfg.CommandTimeout,
	})
	if err != nil {
		return extract.Result{}, err
	}
	return extract.Result{Text: strings.TrimSpace(string(res.Stdout))}, nil
}
