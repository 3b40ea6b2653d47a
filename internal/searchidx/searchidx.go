// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package searchidx implements the Search Index Bridge of spec.md §4.8: a
// read-only consumer of the Index Writer's CSV output that batches
// documents into a github.com/blevesearch/bleve/v2 full-text index. It
// never reads the Session or Dedup stores and may run against a
// partially written, append-only CSV from a crawl still in progress.
package searchidx

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/blevesearch/bleve/v2"
)

// Document is the indexed representation of one CSV row, with field names
// matching spec.md §4.8's inurl/intitle/intext/filetype/ext/timestamp/
// server/share schema. intitle is derived from the basename of the URL,
// since the CSV carries no separate title field.
type Document struct {
	URL       string `json:"inurl"`
	Title     string `json:"intitle"`
	Text      string `json:"intext"`
	FileType  string `json:"filetype"`
	Ext       string `json:"ext"`
	Timestamp int64  `json:"timestamp"`
	Server    string `json:"server"`
	Share     string `json:"share"`
}

// Bridge batches rows read from a CSV file into a bleve index.
type Bridge struct {
	index     bleve.Index
	batchSize int
}

// Open opens (or creates) the bleve index at indexDir. batchSize bounds
// how many documents accumulate before a single bleve.Batch is
// committed (spec.md §6's search-batch-size).
func Open(indexDir string, batchSize int) (*Bridge, error) {
	idx, err := bleve.Open(indexDir)
	if err == bleve.ErrorIndexPathDoesNotExist {
		mapping := bleve.NewIndexMapping()
		idx, err = bleve.New(indexDir, mapping)
	}
	if err != nil {
		return nil, fmt.Errorf("searchidx: opening index %s: %w", indexDir, err)
	}
	if batchSize <= 0 {
		batchSize = 500
	}
	return &Bridge{index: idx, batchSize: batchSize}, nil
}

// Close releases the underlying bleve index.
func (b *Bridge) Close() error { return b.index.Close() }

// IndexCSV streams rows from the Index Writer's CSV file and upserts them
// into the bleve index in batches of b.batchSize, skipping rows the text
// column left empty (spec.md §4.8: "rows with no extracted text are not
// indexed, since they would never satisfy a text query").
func (b *Bridge) IndexCSV(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("searchidx: opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	batch := b.index.NewBatch()
	indexed := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return indexed, fmt.Errorf("searchidx: reading %s: %w", path, err)
		}
		if len(record) < 8 {
			continue
		}
		doc, ok := b.rowToDocument(record)
		if !ok {
			continue
		}
		if doc.Text == "" {
			continue
		}
		if err := batch.Index(doc.URL, doc); err != nil {
			return indexed, err
		}
		indexed++
		if batch.Size() >= b.batchSize {
			if err := b.index.Batch(batch); err != nil {
				return indexed, err
			}
			batch = b.index.NewBatch()
		}
	}
	if batch.Size() > 0 {
		if err := b.index.Batch(batch); err != nil {
			return indexed, err
		}
	}
	return indexed, nil
}

// Field order matches index.Row's encoding: timestamp, url, path, server,
// share, ext, class, content.
func (b *Bridge) rowToDocument(record []string) (Document, bool) {
	ts, _ := strconv.ParseInt(record[0], 10, 64)
	doc := Document{
		URL:       record[1],
		FileType:  record[6],
		Title:     basename(record[1]),
		Text:      record[7],
		Ext:       record[5],
		Timestamp: ts,
		Server:    record[3],
		Share:     record[4],
	}
	return doc, true
}

func basename(url string) string {
	for i := len(url) - 1; i >= 0; i-- {
		if url[i] == '/' || url[i] == '#' {
			return url[i+1:]
		}
	}
	return url
}
