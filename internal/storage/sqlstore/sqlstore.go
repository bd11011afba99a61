// Package sqlstore implements storage.Storage on top of database/sql.
//
// The queries only use syntax that SQLite and MySQL share (? placeholders,
// INSTR, CURRENT_TIMESTAMP), so the same Store serves both dialects. The
// dialect packages (storage/sqlite, storage/mysql) open the connection and
// create the schema, then hand the *sql.DB to New.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aanand-mishra/students-service/internal/types"
)

// Store is the database/sql implementation of storage.Storage.
// A single *sql.DB is a connection pool and is safe for concurrent use.
type Store struct {
	Db *sql.DB
}

// New wraps an open database handle. The students table must already
// exist.
func New(db *sql.DB) *Store {
	return &Store{Db: db}
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.Db.Close()
}

const selectColumns = "SELECT id, title, description, published FROM students"

// FindAll returns every row of the students table.
func (s *Store) FindAll(ctx context.Context) ([]types.Student, error) {
	return s.query(ctx, "FindAll", selectColumns)
}

// FindByID fetches exactly one student matched by primary key.
//
// sql.ErrNoRows is not a failure here: it is reported as found == false
// so that callers can choose their own policy for absence.
func (s *Store) FindByID(ctx context.Context, id int64) (types.Student, bool, error) {
	stmt, err := s.Db.PrepareContext(ctx, selectColumns+" WHERE id = ? LIMIT 1")
	if err != nil {
		return types.Student{}, false, fmt.Errorf("FindByID: prepare: %w", err)
	}
	defer stmt.Close()

	var student types.Student
	err = stmt.QueryRowContext(ctx, id).Scan(
		&student.ID,
		&student.Title,
		&student.Description,
		&student.Published,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Student{}, false, nil
	}
	if err != nil {
		return types.Student{}, false, fmt.Errorf("FindByID: scan: %w", err)
	}

	return student, true, nil
}

// Save inserts a new row when student has no id, otherwise it replaces
// the stored row with the same id.
//
// A record carrying an id that no longer exists (for example one deleted
// by a concurrent request) is inserted as a new row with a fresh id.
func (s *Store) Save(ctx context.Context, student types.Student) (types.Student, error) {
	if student.IsNew() {
		return s.insert(ctx, s.Db, student)
	}

	tx, err := s.Db.BeginTx(ctx, nil)
	if err != nil {
		return types.Student{}, fmt.Errorf("Save: begin: %w", err)
	}
	// Rollback after a successful Commit is a no-op returning ErrTxDone.
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM students WHERE id = ?", student.ID).Scan(&exists)
	if err != nil {
		return types.Student{}, fmt.Errorf("Save: lookup: %w", err)
	}

	var saved types.Student
	if exists == 0 {
		saved, err = s.insert(ctx, tx, student)
	} else {
		saved, err = s.update(ctx, tx, student)
	}
	if err != nil {
		return types.Student{}, err
	}

	if err := tx.Commit(); err != nil {
		return types.Student{}, fmt.Errorf("Save: commit: %w", err)
	}

	return saved, nil
}

// Update replaces the row with student.ID. The existence check and the
// UPDATE share one transaction, so a row deleted concurrently is reported
// as found == false instead of being recreated.
//
// RowsAffected is not used: MySQL counts only changed rows unless the DSN
// sets clientFoundRows, and an update with identical values would look
// like a miss.
func (s *Store) Update(ctx context.Context, student types.Student) (types.Student, bool, error) {
	tx, err := s.Db.BeginTx(ctx, nil)
	if err != nil {
		return types.Student{}, false, fmt.Errorf("Update: begin: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM students WHERE id = ?", student.ID).Scan(&exists)
	if err != nil {
		return types.Student{}, false, fmt.Errorf("Update: lookup: %w", err)
	}
	if exists == 0 {
		return types.Student{}, false, nil
	}

	updated, err := s.update(ctx, tx, student)
	if err != nil {
		return types.Student{}, false, err
	}

	if err := tx.Commit(); err != nil {
		return types.Student{}, false, fmt.Errorf("Update: commit: %w", err)
	}

	return updated, true, nil
}

// preparer is satisfied by both *sql.DB and *sql.Tx.
type preparer interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

func (s *Store) insert(ctx context.Context, p preparer, student types.Student) (types.Student, error) {
	stmt, err := p.PrepareContext(ctx,
		"INSERT INTO students (title, description, published) VALUES (?, ?, ?)",
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("Save: prepare insert: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, student.Title, student.Description, student.Published)
	if err != nil {
		return types.Student{}, fmt.Errorf("Save: insert: %w", err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return types.Student{}, fmt.Errorf("Save: last insert id: %w", err)
	}

	student.ID = lastID
	return student, nil
}

func (s *Store) update(ctx context.Context, p preparer, student types.Student) (types.Student, error) {
	stmt, err := p.PrepareContext(ctx,
		"UPDATE students SET title = ?, description = ?, published = ? WHERE id = ?",
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("update: prepare: %w", err)
	}
	defer stmt.Close()

	// Argument order matches the ? order: title, description, published, id.
	if _, err := stmt.ExecContext(ctx,
		student.Title, student.Description, student.Published, student.ID,
	); err != nil {
		return types.Student{}, fmt.Errorf("update: exec: %w", err)
	}

	return student, nil
}

// DeleteByID removes a student row by primary key. No row matching is
// not an error.
func (s *Store) DeleteByID(ctx context.Context, id int64) error {
	return s.exec(ctx, "DeleteByID", "DELETE FROM students WHERE id = ?", id)
}

// DeleteAll empties the students table.
func (s *Store) DeleteAll(ctx context.Context) error {
	return s.exec(ctx, "DeleteAll", "DELETE FROM students")
}

// FindByPublished returns the rows whose published column equals published.
func (s *Store) FindByPublished(ctx context.Context, published bool) ([]types.Student, error) {
	return s.query(ctx, "FindByPublished", selectColumns+" WHERE published = ?", published)
}

// FindByTitleContaining returns the rows whose title contains substr.
//
// INSTR is used instead of LIKE so that % and _ in substr are matched
// literally. Case sensitivity follows the column collation of the
// underlying database.
func (s *Store) FindByTitleContaining(ctx context.Context, substr string) ([]types.Student, error) {
	return s.query(ctx, "FindByTitleContaining", selectColumns+" WHERE INSTR(title, ?) > 0", substr)
}

// ServerTime pings the database and returns CURRENT_TIMESTAMP as
// reported by the server.
func (s *Store) ServerTime(ctx context.Context) (string, error) {
	if err := s.Db.PingContext(ctx); err != nil {
		return "", fmt.Errorf("ServerTime: ping: %w", err)
	}

	var now string
	if err := s.Db.QueryRowContext(ctx, "SELECT CURRENT_TIMESTAMP").Scan(&now); err != nil {
		return "", fmt.Errorf("ServerTime: scan: %w", err)
	}

	return now, nil
}

func (s *Store) exec(ctx context.Context, op, query string, args ...any) error {
	stmt, err := s.Db.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("%s: prepare: %w", op, err)
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, args...); err != nil {
		return fmt.Errorf("%s: exec: %w", op, err)
	}

	return nil
}

// query runs a multi-row SELECT and scans every row into a Student.
// The returned slice is never nil.
func (s *Store) query(ctx context.Context, op, query string, args ...any) ([]types.Student, error) {
	stmt, err := s.Db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: prepare: %w", op, err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}
	defer rows.Close()

	students := make([]types.Student, 0)

	for rows.Next() {
		var student types.Student

		if err := rows.Scan(
			&student.ID,
			&student.Title,
			&student.Description,
			&student.Published,
		); err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}

		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration: %w", op, err)
	}

	return students, nil
}
