// Package sqlite opens a SQLite database for the students store.
//
// SQLite stores everything in a single file on disk. There is no network,
// no separate server process, and no installation beyond the driver,
// which makes it the default backend and the one the tests run against.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/aanand-mishra/students-service/internal/storage/sqlstore"

	// Side-effect only: registers the "sqlite3" driver.
	_ "github.com/mattn/go-sqlite3"
)

// schema is idempotent and runs on every startup.
//
//	id          — integer primary key, assigned by SQLite
//	title       — free text
//	description — free text
//	published   — stored as 0/1; the driver scans BOOLEAN columns into bool
const schema = `
	CREATE TABLE IF NOT EXISTS students (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		title       TEXT    NOT NULL DEFAULT '',
		description TEXT    NOT NULL DEFAULT '',
		published   BOOLEAN NOT NULL DEFAULT 0
	)
`

// New opens the SQLite database at path, creates the students table if it
// does not already exist, and returns a ready-to-use store.
func New(path string) (*sqlstore.Store, error) {
	// sql.Open does NOT open a real connection yet; it only validates
	// the driver name. The first connection happens on the first query.
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// SQLite serialises writers anyway, and every connection to
	// ":memory:" would otherwise see its own empty database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return sqlstore.New(db), nil
}
