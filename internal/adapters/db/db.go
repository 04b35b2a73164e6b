// Package db implements the persistent result database (the engine's
// opaque key/value store) on top of zombiezen.com/go/sqlite, grounded in
// the teacher's flat on-disk store (internal/adapters/cas.Store) but backed
// by SQLite per the domain stack rather than a JSON file, since the spec
// calls for a schema-versioned store rather than a whole-file rewrite.
package db

import (
	"strings"

	"go.trai.ch/keel/internal/core/ports"
	"go.trai.ch/zerr"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// ErrOpenFailed wraps any failure opening or preparing the database file.
var ErrOpenFailed = zerr.New("failed to open result database")

const schema = `
CREATE TABLE IF NOT EXISTS records (
	key BLOB PRIMARY KEY,
	value BLOB NOT NULL,
	schema_version INTEGER NOT NULL
);
`

// DB implements ports.ResultDatabase over a single SQLite connection. Per
// the spec's concurrency model ("the result database is accessed only by
// the engine"), callers never need to coordinate access themselves.
type DB struct {
	conn          *sqlite.Conn
	schemaVersion uint32
}

// Open opens (or creates) the result database at path, re-initializing it
// if its stored schema_version does not match schemaVersion rather than
// attempting a migration.
func Open(path string, schemaVersion uint32) (*DB, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite|sqlite.OpenCreate)
	if err != nil {
		return nil, zerr.Wrap(err, ErrOpenFailed.Error())
	}

	d := &DB{conn: conn, schemaVersion: schemaVersion}
	if err := d.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) init() error {
	if err := sqlitex.Execute(d.conn, strings.TrimSpace(schema), nil); err != nil {
		return zerr.Wrap(err, "failed to create records table")
	}

	var storedVersion int64 = -1
	err := sqlitex.Execute(d.conn, `SELECT schema_version FROM records LIMIT 1`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			storedVersion = stmt.ColumnInt64(0)
			return nil
		},
	})
	if err != nil {
		return zerr.Wrap(err, "failed to read schema version")
	}

	if storedVersion != -1 && storedVersion != int64(d.schemaVersion) {
		if err := sqlitex.Execute(d.conn, `DELETE FROM records`, nil); err != nil {
			return zerr.Wrap(err, "failed to reinitialize records table")
		}
	}
	return nil
}

// Get implements ports.ResultDatabase.
func (d *DB) Get(key []byte) ([]byte, bool, error) {
	var value []byte
	found := false
	err := sqlitex.Execute(d.conn, `SELECT value FROM records WHERE key = ?`, &sqlitex.ExecOptions{
		Args: []any{key},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			found = true
			value = make([]byte, stmt.ColumnLen(0))
			stmt.ColumnBytes(0, value)
			return nil
		},
	})
	if err != nil {
		return nil, false, zerr.Wrap(err, "failed to read record")
	}
	return value, found, nil
}

// Put implements ports.ResultDatabase.
func (d *DB) Put(key, value []byte) error {
	err := sqlitex.Execute(d.conn, strings.TrimSpace(`
		INSERT INTO records(key, value, schema_version) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, schema_version = excluded.schema_version
	`), &sqlitex.ExecOptions{
		Args: []any{key, value, int64(d.schemaVersion)},
	})
	if err != nil {
		return zerr.Wrap(err, "failed to write record")
	}
	return nil
}

// Close implements ports.ResultDatabase.
func (d *DB) Close() error {
	return d.conn.Close()
}

var _ ports.ResultDatabase = (*DB)(nil)
