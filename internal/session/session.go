// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package session implements the Session Store of spec.md §4.5: a durable
// set of claimed physical paths backed by an embedded relational store
// (modernc.org/sqlite), whose UNIQUE constraint on the path column gives
// the engine its sole concurrency primitive, atomic claim. Grounded on the
// directory-scanning checkpoint store of cloudeng.io/file/checkpoint,
// re-targeted from "the last completed step" to "the set of claimed keys",
// per spec.md §9's note that the flat-file+flock session store should be
// replaced with a single atomic insert-if-absent primitive.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Backend is the Session Store contract the engine depends on: a durable
// set of claimed physical paths whose Claim operation is atomic. The
// relational Store below is the default; TextStore is the append-text
// alternative spec.md §4.5 admits for single-process, single-worker runs.
type Backend interface {
	Claim(ctx context.Context, path string) (bool, error)
	MarkDone(ctx context.Context, path string, status Status) error
	Contains(ctx context.Context, path string) (bool, error)
	Count(ctx context.Context) (int64, error)
	Close() error
}

// Status is the recorded status of a session entry.
type Status string

const (
	StatusClaimed Status = "claimed"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

var _ Backend = (*Store)(nil)

// Store is the Session Store: a durable set of (physical path, claim
// timestamp, status) entries keyed by physical path.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the session database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("session: opening %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite serializes writers; avoid lock contention.
	s := &Store{db: db}
	if err := s.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS sessions (
	path       TEXT PRIMARY KEY,
	claimed_at INTEGER NOT NULL,
	status     TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS runs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	root       TEXT NOT NULL,
	started_at INTEGER NOT NULL,
	workers    INTEGER NOT NULL,
	files_total INTEGER NOT NULL DEFAULT 0,
	files_processed INTEGER NOT NULL DEFAULT 0,
	files_skipped INTEGER NOT NULL DEFAULT 0,
	files_error INTEGER NOT NULL DEFAULT 0,
	finished_at INTEGER
);`)
	return err
}

// Claim atomically inserts path if absent and reports whether the insert
// succeeded; this is the engine's sole cross-worker/cross-process
// concurrency primitive (spec.md §4.5, §8 invariant 3).
func (s *Store) Claim(ctx context.Context, path string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions(path, claimed_at, status) VALUES (?, ?, ?)
		 ON CONFLICT(path) DO NOTHING`,
		path, time.Now().Unix(), StatusClaimed)
	if err != nil {
		return false, fmt.Errorf("session: claim %s: %w", path, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// MarkDone updates the status of a previously claimed path. The engine
// never rolls back a claim; MarkDone exists for observability only, per
// spec.md §3's Session Entry invariant ("never updated by the engine"
// refers to the claim itself, not its terminal status label).
func (s *Store) MarkDone(ctx context.Context, path string, status Status) error {
	_, err := s.db.ExecContext(ctx, `UPDATE sessions SET status = ? WHERE path = ?`, status, path)
	return err
}

// Contains reports whether path has already been claimed.
func (s *Store) Contains(ctx context.Context, path string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE path = ?`, path).Scan(&n)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// Count returns the total number of claimed entries.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n)
	return n, err
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// RecordRunStart inserts a new run row (the supplemental Crawl Run record
// of SPEC_FULL.md §4) and returns its id.
func (s *Store) RecordRunStart(ctx context.Context, root string, workers int) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs(root, started_at, workers) VALUES (?, ?, ?)`,
		root, time.Now().Unix(), workers)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// RecordRunFinish finalizes a run row with the engine's final counters.
func (s *Store) RecordRunFinish(ctx context.Context, id int64, total, processed, skipped, errored int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET files_total=?, files_processed=?, files_skipped=?, files_error=?, finished_at=? WHERE id=?`,
		total, processed, skipped, errored, time.Now().Unix(), id)
	return err
}
