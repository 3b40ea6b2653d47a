// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package opaque implements the remaining Extractor Adapter families of
// spec.md §4.3 that don't fit the text/office/pdf/archive/mail/media/
// winfmt groupings: embedded SQLite databases, packet captures, Python
// bytecode, and the raw/octet-stream fallback.
package opaque

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/durck/crawl/internal/cmdexec"
	"github.com/durck/crawl/internal/extract"
	"github.com/durck/crawl/internal/scratch"
)

// SQLite opens the database at path read-only and dumps every table's
// schema and row contents as text, so a search index can still surface
// matches inside an embedded database file.
var SQLite extract.AdapterFunc = func(ctx context.Context, path string, scratchDir string, mgr *scratch.Manager, cfg extract.Config) (extract.Result, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro&immutable=1")
	if err != nil {
		return extract.Result{}, fmt.Errorf("opaque: opening %s: %w", path, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT name, sql FROM sqlite_master WHERE type='table'`)
	if err != nil {
		return extract.Result{}, err
	}
	defer rows.Close()

	var sb strings.Builder
	var tables []string
	for rows.Next() {
		var name, schema string
		if err := rows.Scan(&name, &schema); err != nil {
			continue
		}
		tables = append(tables, name)
		sb.WriteString(schema)
		sb.WriteString(" ")
	}

	for _, table := range tables {
		dumpTable(ctx, db, table, &sb)
	}

	return extract.Result{Text: strings.TrimSpace(sb.String())}, nil
}

func dumpTable(ctx context.Context, db *sql.DB, table string, sb *strings.Builder) {
	// table comes only from sqlite_master, not external input, but is
	// still interpolated defensively via a quoted identifier.
	quoted := `"` + strings.ReplaceAll(table, `"`, `""`) + `"`
	rows, err := db.QueryContext(ctx, `SELECT * FROM `+quoted)
	if err != nil {
		return
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return
	}
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			continue
		}
		for _, v := range vals {
			fmt.Fprintf(sb, "%v ", v)
		}
	}
}

// PCAP dumps packet capture contents as text via the external tshark
// tool, since no pack dependency parses pcap natively.
var PCAP extract.AdapterFunc = func(ctx context.Context, path string, scratchDir string, mgr *scratch.Manager, cfg extract.Config) (extract.Result, error) {
	res, err := cmdexec.Run(ctx, cmdexec.Spec{
		Path:    "tshark",
		Args:    []string{"-r", path, "-V"},
		Dir:     scratchDir,
		Timeout: cfg.CommandTimeout,
	})
	if err != nil {
		return extract.Result{}, err
	}
	return extract.Result{Text: strings.TrimSpace(string(res.Stdout))}, nil
}

// Bytecode disassembles a Python .pyc file via the external pycdc tool,
// recovering readable source-level strings and structure.
var Bytecode extract.AdapterFunc = func(ctx context.Context, path string, scratchDir string, mgr *scratch.Manager, cfg extract.Config) (extract.Result, error) {
	res, err := cmdexec.Run(ctx, cmdexec.Spec{
		Path:    "pycdc",
		Args:    []string{path},
		Dir:     scratchDir,
		Timeout: cfg.CommandTimeout,
	})
	if err != nil {
		return extract.Result{}, err
	}
	return extract.Result{Text: strings.TrimSpace(string(res.Stdout))}, nil
}

// Raw is the terminal fallback for files classified raw: an empty
// record, per spec.md
// §4.1 step 4's "files that cannot be meaningfully rendered as text still
// produce a record, with an empty text field" rule.
var Raw extract.AdapterFunc = func(ctx context.Context, path string, scratchDir string, mgr *scratch.Manager, cfg extract.Config) (extract.Result, error) {
	return extract.Result{}, nil
}
