package storage

import (
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/bits-and-blooms/bloom/v3"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Sizing for the known-match filter. A profile history rarely exceeds a few
// thousand matches, so this keeps false positives (which fall through to SQL)
// negligible.
const (
	knownMatchEstimate = 200000
	knownMatchFPRate   = 0.001
)

// DB wraps a sql.DB for the match store.
type DB struct {
	conn *sql.DB

	// known holds every stored match id. A negative answer is definitive and
	// saves a query; a positive one is confirmed against the matches table.
	known *bloom.BloomFilter
}

// Open opens (or creates) the SQLite database at the given path and applies the schema.
func Open(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Single writer, single reader; one handle for the process lifetime.
	// This also keeps ":memory:" databases on one connection.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	db := &DB{
		conn:  conn,
		known: bloom.NewWithEstimates(knownMatchEstimate, knownMatchFPRate),
	}
	if err := db.loadKnown(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("load known matches: %w", err)
	}
	return db, nil
}

func (db *DB) loadKnown() error {
	rows, err := db.conn.Query("SELECT match_id FROM matches")
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		db.known.AddString(id)
	}
	return rows.Err()
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
