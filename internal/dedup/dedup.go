// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package dedup implements the Dedup Store of spec.md §4.5/§3: a durable
// set of content hashes, keyed by hash, backed by the same embedded
// relational substrate as the Session Store (modernc.org/sqlite).
package dedup

import (
	"context"
	"crypto/md5"  //nolint:gosec // operator-selected legacy algorithm, spec.md §6 dedupe-hash
	"crypto/sha1" //nolint:gosec // operator-selected legacy algorithm, spec.md §6 dedupe-hash
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the Dedup Store: a durable set of (content hash, first-seen
// physical path, insertion timestamp) entries keyed by hash.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the dedup database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("dedup: opening %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	s := &Store{db: db}
	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS dedup (
	hash       TEXT PRIMARY KEY,
	first_path TEXT NOT NULL,
	inserted_at INTEGER NOT NULL
);`); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Claim atomically inserts hash (with firstPath recorded) if absent and
// reports whether the insert succeeded, i.e. whether this is the first
// sighting of that content.
func (s *Store) Claim(ctx context.Context, hash, firstPath string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO dedup(hash, first_path, inserted_at) VALUES (?, ?, ?)
		 ON CONFLICT(hash) DO NOTHING`,
		hash, firstPath, time.Now().Unix())
	if err != nil {
		return false, fmt.Errorf("dedup: claim %s: %w", hash, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Contains reports whether hash has already been seen.
func (s *Store) Contains(ctx context.Context, h string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM dedup WHERE hash = ?`, h).Scan(&n)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// Count returns the total number of distinct content hashes seen.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM dedup`).Scan(&n)
	return n, err
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Algorithm identifies one of the hash algorithms spec.md §6's
// dedupe-hash key may select.
type Algorithm string

const (
	MD5    Algorithm = "md5"
	SHA1   Algorithm = "sha1"
	SHA256 Algorithm = "sha256"
)

func newHasher(alg Algorithm) (hash.Hash, error) {
	switch alg {
	case MD5:
		return md5.New(), nil //nolint:gosec
	case SHA1:
		return sha1.New(), nil //nolint:gosec
	case SHA256, "":
		return sha256.New(), nil
	default:
		return nil, fmt.Errorf("dedup: unknown hash algorithm %q", alg)
	}
}

// HashFile computes the hex digest of the file at path using the
// configured algorithm.
func HashFile(path string, alg Algorithm) (string, error) {
	h, err := newHasher(alg)
	if err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
