// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package mail

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/durck/crawl/internal/extract"
)

const simpleEML = "From: alice@example.com\r\n" +
	"To: bob@example.com\r\n" +
	"Subject: quarterly numbers\r\n" +
	"Content-Type: text/plain\r\n" +
	"\r\n" +
	"The Q1 figures are attached to the next message.\r\n"

const multipartEML = "From: alice@example.com\r\n" +
	"To: bob@example.com\r\n" +
	"Subject: with attachment\r\n" +
	"Content-Type: multipart/mixed; boundary=XYZ\r\n" +
	"\r\n" +
	"--XYZ\r\n" +
	"Content-Type: text/plain\r\n" +
	"\r\n" +
	"see attached\r\n" +
	"--XYZ\r\n" +
	"Content-Type: text/plain\r\n" +
	"Content-Disposition: attachment; filename=\"notes.txt\"\r\n" +
	"\r\n" +
	"attachment body\r\n" +
	"--XYZ--\r\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestEMLPlainBody(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "plain.eml", simpleEML)

	res, err := EML(context.Background(), path, dir, nil, extract.Config{})
	require.NoError(t, err)
	assert.Contains(t, res.Text, "Q1 figures")
	assert.Empty(t, res.Nested)
}

func TestEMLMultipartAttachment(t *testing.T) {
	dir := t.TempDir()
	scratchDir := t.TempDir()
	path := writeFile(t, dir, "multi.eml", multipartEML)

	res, err := EML(context.Background(), path, scratchDir, nil, extract.Config{})
	require.NoError(t, err)
	assert.Contains(t, res.Text, "see attached")

	require.Len(t, res.Nested, 1)
	assert.Equal(t, "notes.txt", res.Nested[0].Name)
	raw, err := os.ReadFile(res.Nested[0].Path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "attachment body", "the attachment must be materialized into the scratch directory")
}

func TestAnyDispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "plain.eml", simpleEML)

	res, err := Any(context.Background(), path, dir, nil, extract.Config{})
	require.NoError(t, err)
	assert.Contains(t, res.Text, "Q1 figures")
}

func TestEMLQuotedPrintableBody(t *testing.T) {
	eml := "From: alice@example.com\r\n" +
		"Content-Type: text/plain\r\n" +
		"Content-Transfer-Encoding: quoted-printable\r\n" +
		"\r\n" +
		"caf=C3=A9 accounts\r\n"
	dir := t.TempDir()
	path := writeFile(t, dir, "qp.eml", eml)

	res, err := EML(context.Background(), path, dir, nil, extract.Config{})
	require.NoError(t, err)
	assert.Contains(t, res.Text, "café accounts")
}
