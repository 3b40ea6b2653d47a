// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package text

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/durck/crawl/internal/extract"
)

func TestHTMLStripsMarkupAndScripts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	body := `<html><head><style>.x{color:red}</style><script>alert(1)</script></head>` +
		`<body><p>hello   world</p></body></html>`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	result, err := HTML.Extract(context.Background(), path, dir, nil, extract.Config{})
	require.NoError(t, err)
	assert.Equal(t, "hello world", result.Text)
	assert.NotContains(t, result.Text, "alert")
}

func TestPlainCollapsesWhitespace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("line one\n\n  line   two\t\tend"), 0o644))

	result, err := Plain.Extract(context.Background(), path, dir, nil, extract.Config{})
	require.NoError(t, err)
	assert.Equal(t, "line one line two end", result.Text)
}

func TestPlainTranscodesLegacyEncoding(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "legacy.txt")
	// "café accounts" in windows-1252: é is the single byte 0xe9.
	require.NoError(t, os.WriteFile(path, []byte{'c', 'a', 'f', 0xe9, ' ', 'a', 'c', 'c', 'o', 'u', 'n', 't', 's'}, 0o644))

	result, err := Plain.Extract(context.Background(), path, dir, nil, extract.Config{})
	require.NoError(t, err)
	assert.Equal(t, "café accounts", result.Text)
}

func TestHTMLTranscodesDeclaredCharset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "legacy.html")
	body := append([]byte(`<html><head><meta charset="iso-8859-1"></head><body><p>caf`), 0xe9)
	body = append(body, []byte(`</p></body></html>`)...)
	require.NoError(t, os.WriteFile(path, body, 0o644))

	result, err := HTML.Extract(context.Background(), path, dir, nil, extract.Config{})
	require.NoError(t, err)
	assert.Equal(t, "café", result.Text)
}

func TestFallbackEmitsTextForTextualFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mystery")
	require.NoError(t, os.WriteFile(path, []byte("plain readable content"), 0o644))

	result, err := Fallback.Extract(context.Background(), path, dir, nil, extract.Config{})
	require.NoError(t, err)
	assert.Equal(t, "plain readable content", result.Text)
}

func TestFallbackEmitsEmptyForBinaryFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mystery.bin")
	junk := make([]byte, 256)
	for i := range junk {
		junk[i] = byte(i)
	}
	require.NoError(t, os.WriteFile(path, junk, 0o644))

	result, err := Fallback.Extract(context.Background(), path, dir, nil, extract.Config{})
	require.NoError(t, err)
	assert.Equal(t, "", result.Text)
}
