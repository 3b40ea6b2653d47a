// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchesContains(t *testing.T) {
	e := Entry{Class: ClassArchive, Contains: []string{"zip", "gzip"}}
	assert.True(t, matches(e, "application/zip", ""))
	assert.True(t, matches(e, "application/gzip", ""))
	assert.False(t, matches(e, "application/pdf", ""))
}

func TestMatchesExact(t *testing.T) {
	e := Entry{Class: ClassThumbsDB, Exact: []string{"application/vnd.thumbsdb"}}
	assert.True(t, matches(e, "application/vnd.thumbsdb", ""))
	assert.False(t, matches(e, "application/vnd.thumbsdb2", ""))
}

func TestMatchesExtensionFallback(t *testing.T) {
	e := Entry{Class: ClassLNK, Ext: []string{"lnk"}}
	assert.True(t, matches(e, "application/octet-stream", "lnk"))
	assert.True(t, matches(e, "", "lnk"))
	assert.False(t, matches(e, "text/plain", "lnk")) // only applies when MIME is octet-stream/empty
}

func TestClassifyPlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world, this is plain text"), 0o644))

	class, mimeType, err := Classify(path, DefaultRegistry)
	require.NoError(t, err)
	assert.Equal(t, ClassText, class)
	assert.Contains(t, mimeType, "text/plain")
}

func TestClassifyHTML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(path, []byte("<html><body><p>hi</p></body></html>"), 0o644))

	class, _, err := Classify(path, DefaultRegistry)
	require.NoError(t, err)
	assert.Equal(t, ClassHTML, class)
}

func TestIsTextual(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text content"), 0o644))
	assert.True(t, IsTextual(path))
}

func TestClassifyRawOctetStream(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blob.bin")
	junk := make([]byte, 256)
	for i := range junk {
		junk[i] = byte(i)
	}
	require.NoError(t, os.WriteFile(path, junk, 0o644))

	class, mimeType, err := Classify(path, DefaultRegistry)
	require.NoError(t, err)
	assert.Equal(t, ClassRaw, class)
	assert.Equal(t, "application/octet-stream", mimeType)
}

func TestClassifyFirstMatchWins(t *testing.T) {
	registry := []Entry{
		{Class: ClassHTML, Contains: []string{"text/"}},
		{Class: ClassText, Contains: []string{"text/"}},
	}
	assert.True(t, matches(registry[0], "text/plain", ""))
	// first entry in the ordered registry wins even though both match.
	for _, e := range registry {
		if matches(e, "text/plain", "") {
			assert.Equal(t, ClassHTML, e.Class)
			break
		}
	}
}
