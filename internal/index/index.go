// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package index implements the Index Writer of spec.md §4.6: a CSV
// encoder with the fixed 8-field row shape, buffered and protected both
// within-process (sync.Mutex) and across processes
// (github.com/gofrs/flock), so a resumed crawl can safely append to a CSV
// another process still has open.
package index

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/gofrs/flock"
)

// Row is one output record, matching the 8 fields spec.md §6 fixes as the
// output schema: timestamp, logical_url, physical_path, server, share,
// extension, class, content. Only Timestamp is left unquoted; fields 2-8
// are always double-quoted per the format rule.
type Row struct {
	Timestamp int64
	URL       string
	Path      string
	Server    string
	Share     string
	Ext       string
	Class     string
	Content   string
}

// Writer is a buffered, mutex- and flock-protected CSV appender.
type Writer struct {
	mu     sync.Mutex
	file   *os.File
	lock   *flock.Flock
	buf    *bufio.Writer
	bufLen int
}

// Open opens path for appending (creating it if absent) and acquires an
// exclusive cross-process lock on a sibling .lock file, held for the
// lifetime of the Writer.
func Open(path string, bufferBytes int) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("index: opening %s: %w", path, err)
	}

	fl := flock.New(path + ".lock")
	if err := fl.Lock(); err != nil {
		f.Close()
		return nil, fmt.Errorf("index: locking %s: %w", path, err)
	}

	if bufferBytes <= 0 {
		bufferBytes = 64 * 1024
	}
	return &Writer{
		file: f,
		lock: fl,
		buf:  bufio.NewWriterSize(f, bufferBytes),
	}, nil
}

// Write appends one row, encoded per spec.md §4.6's quoting rules: CR,
// LF and NUL bytes are stripped from every field before encoding, and
// fields 2-8 are always wrapped in double quotes with interior quotes
// doubled. The content field additionally has commas and other control
// characters stripped (spec.md §3), since it is the one field whose
// source text is arbitrary extracted document content rather than a path
// or label the crawl itself controls.
func (w *Writer) Write(r Row) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	fields := []string{
		strconv.FormatInt(r.Timestamp, 10),
		quote(sanitize(r.URL)),
		quote(sanitize(r.Path)),
		quote(sanitize(r.Server)),
		quote(sanitize(r.Share)),
		quote(sanitize(r.Ext)),
		quote(sanitize(r.Class)),
		quote(sanitizeContent(r.Content)),
	}
	line := strings.Join(fields, ",") + "\n"
	if _, err := w.buf.WriteString(line); err != nil {
		return fmt.Errorf("index: writing row: %w", err)
	}
	return nil
}

// Flush forces any buffered rows to the underlying file. Close calls
// Flush, and cmd/docindex defers Close, so buffered rows are written when
// a crawl returns, whether it completed or an interrupt cancelled its
// context, per spec.md §4.6's "no row is lost on clean or signal-driven
// termination" guarantee.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Flush()
}

// Close flushes, releases the cross-process lock, and closes the file.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.lock.Unlock(); err != nil {
		return err
	}
	return w.file.Close()
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\r', '\n', 0:
			return -1
		}
		return r
	}, s)
}

// sanitizeContent encodes the content field per spec.md §3: "UTF-8 text
// with all control characters and commas stripped". Commas are replaced
// with a space rather than dropped outright so adjacent words don't run
// together (spec.md §8 scenario 1: "hello,world" -> "hello world"); the
// resulting whitespace runs are then collapsed to a single space each.
func sanitizeContent(s string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r == ',':
			return ' '
		case r == '\r' || r == '\n' || r == 0:
			return ' '
		case unicode.IsControl(r):
			return -1
		default:
			return r
		}
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
