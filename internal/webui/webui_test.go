// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package webui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/blevesearch/bleve/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDoc struct {
	URL      string `json:"inurl"`
	Title    string `json:"intitle"`
	Text     string `json:"intext"`
	FileType string `json:"filetype"`
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	docs := []testDoc{
		{URL: "file://fs01/share/Finance/Q1.docx", Title: "Q1.docx", Text: "quarterly revenue figures", FileType: "word"},
		{URL: "file://fs01/share/notes.txt", Title: "notes.txt", Text: "meeting notes about budgets", FileType: "text"},
	}
	for _, d := range docs {
		require.NoError(t, idx.Index(d.URL, d))
	}
	return New(idx)
}

func TestSearchReturnsRankedHits(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?q=quarterly", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Total int64             `json:"total"`
		Hits  []json.RawMessage `json:"hits"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.EqualValues(t, 1, resp.Total)
	require.Len(t, resp.Hits, 1)
	assert.Contains(t, string(resp.Hits[0]), "Q1.docx")
}

func TestSearchRequiresQuery(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAutocompletePrefixesTitles(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/autocomplete?q=notes", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var titles []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &titles))
	assert.Contains(t, titles, "notes.txt")
}

func TestDocByID(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	target := "/doc?id=" + url.QueryEscape("file://fs01/share/notes.txt")
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fields))
	assert.Equal(t, "notes.txt", fields["intitle"])

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/doc?id=nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
