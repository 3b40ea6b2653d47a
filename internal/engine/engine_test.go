// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/durck/crawl/internal/classify"
	"github.com/durck/crawl/internal/dedup"
	"github.com/durck/crawl/internal/extract"
	"github.com/durck/crawl/internal/index"
	"github.com/durck/crawl/internal/scratch"
	"github.com/durck/crawl/internal/session"
)

const classContainer classify.Class = "test-container"

// newTestEngine builds an Engine with a registry/adapter set scoped to
// this file's tests: plain text via the real text adapter, and a fake
// ".container" class whose adapter writes a nested file into the scratch
// directory it is given, modeling an archive member or office embedded
// image without depending on archiver/v3 or real container bytes.
func newTestEngine(t *testing.T) (*Engine, *scratch.Manager) {
	t.Helper()
	scratchMgr, err := scratch.New(filepath.Join(t.TempDir(), "scratch"))
	require.NoError(t, err)

	eng := New(scratchMgr, extract.Config{})
	eng.Registry = []classify.Entry{
		{Class: classContainer, Ext: []string{"container"}},
		{Class: classify.ClassText, Contains: []string{"text/"}},
	}
	eng.Adapters = map[classify.Class]extract.Adapter{
		classify.ClassText: eng.Adapters[classify.ClassText],
		classContainer: extract.AdapterFunc(func(ctx context.Context, path string, scratchDir string, mgr *scratch.Manager, cfg extract.Config) (extract.Result, error) {
			nestedPath := filepath.Join(scratchDir, "nested.txt")
			if err := os.WriteFile(nestedPath, []byte("nested content"), 0o644); err != nil {
				return extract.Result{}, err
			}
			return extract.Result{
				Text:   "container listing",
				Nested: []extract.Nested{{Name: "nested.txt", Path: nestedPath}},
			}, nil
		}),
	}
	return eng, scratchMgr
}

func openStores(t *testing.T) (*session.Store, *dedup.Store, *index.Writer, string) {
	t.Helper()
	dir := t.TempDir()
	sessions, err := session.Open(context.Background(), filepath.Join(dir, "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sessions.Close() })

	dedupStore, err := dedup.Open(context.Background(), filepath.Join(dir, "dedup.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dedupStore.Close() })

	csvPath := filepath.Join(dir, "out.csv")
	writer, err := index.Open(csvPath, 0)
	require.NoError(t, err)
	t.Cleanup(func() { writer.Close() })

	return sessions, dedupStore, writer, csvPath
}

func readCSVRows(t *testing.T, path string) [][]string {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var rows [][]string
	for _, line := range splitLines(string(raw)) {
		if line == "" {
			continue
		}
		rows = append(rows, splitCSVFields(line))
	}
	return rows
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i, c := range s {
		if c == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

// splitCSVFields is a naive quote-aware comma splitter sufficient for this
// test's assertions; it is not a general CSV parser.
func splitCSVFields(line string) []string {
	var fields []string
	var cur []byte
	inQuotes := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				cur = append(cur, '"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			fields = append(fields, string(cur))
			cur = nil
		default:
			cur = append(cur, c)
		}
	}
	fields = append(fields, string(cur))
	return fields
}

func TestCrawlPlainTextFile(t *testing.T) {
	eng, _ := newTestEngine(t)
	sessions, dedupStore, writer, csvPath := openStores(t)

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("hello world"), 0o644))

	stats, err := eng.Crawl(context.Background(), root, nil, 2, sessions, dedupStore, writer)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.FilesProcessed)
	require.NoError(t, writer.Close())

	rows := readCSVRows(t, csvPath)
	require.Len(t, rows, 1)
	assert.Equal(t, "txt", rows[0][5])
	assert.Equal(t, string(classify.ClassText), rows[0][6])
	assert.Contains(t, rows[0][7], "hello world")
}

// TestCrawlNestedRecordPathIsContainer verifies that a nested entry's
// emitted Path field is the containing file's path, not the nested
// scratch file's own transient path (spec.md §3).
func TestCrawlNestedRecordPathIsContainer(t *testing.T) {
	eng, _ := newTestEngine(t)
	sessions, dedupStore, writer, csvPath := openStores(t)

	root := t.TempDir()
	containerPath := filepath.Join(root, "bundle.container")
	require.NoError(t, os.WriteFile(containerPath, binaryJunk(), 0o644))

	stats, err := eng.Crawl(context.Background(), root, nil, 2, sessions, dedupStore, writer)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.FilesProcessed)
	require.NoError(t, writer.Close())

	rows := readCSVRows(t, csvPath)
	require.Len(t, rows, 2)

	assert.Equal(t, string(classify.ClassText), rows[0][6],
		"a nested entry's record precedes its parent's: the parent is emitted only after all nested expansions return")
	assert.Equal(t, string(classContainer), rows[1][6])

	byClass := map[string][]string{}
	for _, row := range rows {
		byClass[row[6]] = row
	}

	containerRow, ok := byClass[string(classContainer)]
	require.True(t, ok)
	assert.Equal(t, containerPath, containerRow[2])

	nestedRow, ok := byClass[string(classify.ClassText)]
	require.True(t, ok)
	assert.Equal(t, containerPath, nestedRow[2], "nested record's physical path must be the containing file, not the scratch copy")
	assert.Contains(t, nestedRow[1], "#nested.txt", "nested logical URL must carry the #basename fragment")
	assert.Contains(t, nestedRow[7], "nested content")
}

// TestCrawlScratchReleasedAfterNestedExpansion verifies the scratch
// directory the container adapter was given is released only after its
// nested entries have been processed, and is removed by the time Crawl
// returns.
func TestCrawlScratchReleasedAfterNestedExpansion(t *testing.T) {
	eng, scratchMgr := newTestEngine(t)
	sessions, dedupStore, writer, _ := openStores(t)

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "bundle.container"), binaryJunk(), 0o644))

	_, err := eng.Crawl(context.Background(), root, nil, 2, sessions, dedupStore, writer)
	require.NoError(t, err)
	assert.Equal(t, 0, scratchMgr.Outstanding(), "no scratch directory should remain allocated after the crawl completes")
}

func TestCrawlMaxDepthStopsExpansion(t *testing.T) {
	eng, _ := newTestEngine(t)
	eng.MaxDepth = 0
	sessions, dedupStore, writer, csvPath := openStores(t)

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "bundle.container"), binaryJunk(), 0o644))

	stats, err := eng.Crawl(context.Background(), root, nil, 2, sessions, dedupStore, writer)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.FilesProcessed, "nested entry must not be processed once MaxDepth is exceeded")
	require.NoError(t, writer.Close())

	rows := readCSVRows(t, csvPath)
	require.Len(t, rows, 1)
	assert.Equal(t, string(classContainer), rows[0][6])
}

func TestCrawlSkipsAlreadyClaimedPath(t *testing.T) {
	eng, _ := newTestEngine(t)
	sessions, dedupStore, writer, csvPath := openStores(t)

	root := t.TempDir()
	path := filepath.Join(root, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	ctx := context.Background()
	claimed, err := sessions.Claim(ctx, path)
	require.NoError(t, err)
	require.True(t, claimed)

	stats, err := eng.Crawl(ctx, root, nil, 2, sessions, dedupStore, writer)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.FilesSkipped)
	assert.EqualValues(t, 0, stats.FilesProcessed)
	require.NoError(t, writer.Close())

	rows := readCSVRows(t, csvPath)
	assert.Len(t, rows, 0)
}

func TestCrawlDedupSuppressesSecondCopy(t *testing.T) {
	eng, _ := newTestEngine(t)
	sessions, dedupStore, writer, csvPath := openStores(t)

	root := t.TempDir()
	content := []byte("identical bytes")
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), content, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), content, 0o644))

	stats, err := eng.Crawl(context.Background(), root, nil, 2, sessions, dedupStore, writer)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.FilesProcessed)
	assert.EqualValues(t, 1, stats.FilesSkipped)
	require.NoError(t, writer.Close())

	rows := readCSVRows(t, csvPath)
	assert.Len(t, rows, 1)
}

// TestCrawlExtractionFailureEmitsEmptyRecord verifies the per-file failure
// policy: a failing adapter still produces a record, with empty content,
// counted as an error, and any nested entries it managed to produce before
// failing are not expanded.
func TestCrawlExtractionFailureEmitsEmptyRecord(t *testing.T) {
	eng, _ := newTestEngine(t)
	eng.Adapters[classContainer] = extract.AdapterFunc(func(ctx context.Context, path string, scratchDir string, mgr *scratch.Manager, cfg extract.Config) (extract.Result, error) {
		nestedPath := filepath.Join(scratchDir, "partial.txt")
		require.NoError(t, os.WriteFile(nestedPath, []byte("partial"), 0o644))
		return extract.Result{
			Text:   "partial output",
			Nested: []extract.Nested{{Name: "partial.txt", Path: nestedPath}},
		}, context.DeadlineExceeded
	})
	sessions, dedupStore, writer, csvPath := openStores(t)

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "bundle.container"), binaryJunk(), 0o644))

	stats, err := eng.Crawl(context.Background(), root, nil, 2, sessions, dedupStore, writer)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.FilesError)
	assert.EqualValues(t, 1, stats.FilesProcessed)
	require.NoError(t, writer.Close())

	rows := readCSVRows(t, csvPath)
	require.Len(t, rows, 1, "a failed extraction must not expand its partial nested output")
	assert.Equal(t, "", rows[0][7], "a failed extraction's record carries empty content")
}

// binaryJunk returns non-textual bytes that mimetype sniffs as
// application/octet-stream, so classify.Classify falls through to the
// Ext-based "test-container" entry instead of matching ClassText.
func binaryJunk() []byte {
	b := make([]byte, 256)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

func TestExtensionOf(t *testing.T) {
	assert.Equal(t, "docx", extensionOf("Q1.docx"))
	assert.Equal(t, "", extensionOf("Makefile"))
	assert.Equal(t, "gz", extensionOf("archive.tar.gz"))
}
