// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package archive

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/durck/crawl/internal/extract"
)

func writeZip(t *testing.T, path string, members map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, content := range members {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func TestGenericUnpacksZip(t *testing.T) {
	dir := t.TempDir()
	scratchDir := t.TempDir()
	zipPath := filepath.Join(dir, "bundle.zip")
	writeZip(t, zipPath, map[string]string{
		"report.txt":      "annual report",
		"sub/details.txt": "fine print",
	})

	res, err := Generic(context.Background(), zipPath, scratchDir, nil, extract.Config{})
	require.NoError(t, err)

	assert.Contains(t, res.Text, "report.txt", "the archive's own record content is a member listing")
	assert.Contains(t, res.Text, "details.txt")

	require.Len(t, res.Nested, 2)
	names := map[string]string{}
	for _, n := range res.Nested {
		names[n.Name] = n.Path
	}
	require.Contains(t, names, "report.txt")
	raw, err := os.ReadFile(names["report.txt"])
	require.NoError(t, err)
	assert.Equal(t, "annual report", string(raw))

	for _, n := range res.Nested {
		rel, err := filepath.Rel(scratchDir, n.Path)
		require.NoError(t, err)
		assert.NotContains(t, rel, "..", "members must be materialized inside the scratch directory the engine handed over")
	}
}

func TestGenericEmptyZip(t *testing.T) {
	dir := t.TempDir()
	scratchDir := t.TempDir()
	zipPath := filepath.Join(dir, "empty.zip")
	writeZip(t, zipPath, nil)

	res, err := Generic(context.Background(), zipPath, scratchDir, nil, extract.Config{})
	require.NoError(t, err)
	assert.Empty(t, res.Nested)
	assert.Equal(t, "", res.Text)
}

func TestGenericRejectsNonArchive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "not-an-archive.zip")
	require.NoError(t, os.WriteFile(path, []byte("plain text, not zip bytes"), 0o644))

	_, err := Generic(context.Background(), path, t.TempDir(), nil, extract.Config{})
	assert.Error(t, err)
}
