// Package storage defines the Storage interface, the contract that any
// database backend must satisfy to work with this application.
//
// Handlers and the service layer depend only on this interface. Which
// database sits behind it (SQLite, MySQL, or an in-memory fake in tests)
// is decided once, in main.go.
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/students-service/internal/types"
)

// ErrUnsupportedDriver is returned when the configured driver has no
// Storage implementation.
var ErrUnsupportedDriver = errors.New("storage: unsupported driver")

// Storage is the persistence contract for Student records.
//
// Absence is never an error: FindByID reports it through its boolean
// result, and the query methods return an empty (non-nil) slice. Any
// non-nil error is an unexpected store failure.
type Storage interface {
	// FindAll returns every student. Order is unspecified.
	FindAll(ctx context.Context) ([]types.Student, error)

	// FindByID returns the student with the given id. found is false
	// when no such record exists.
	FindByID(ctx context.Context, id int64) (student types.Student, found bool, err error)

	// Save persists student. A record without an id is inserted and
	// receives a fresh one; a record with an id replaces the title,
	// description and published flag of the stored record. The persisted
	// form is returned.
	Save(ctx context.Context, student types.Student) (types.Student, error)

	// Update replaces the title, description and published flag of the
	// stored record with student.ID. Unlike Save it never inserts: found is
	// false, and nothing is written, when no record has that id.
	Update(ctx context.Context, student types.Student) (updated types.Student, found bool, err error)

	// DeleteByID removes the record if present. Deleting an absent id is
	// a no-op.
	DeleteByID(ctx context.Context, id int64) error

	// DeleteAll removes every record.
	DeleteAll(ctx context.Context) error

	// FindByPublished returns the records whose published flag equals
	// published.
	FindByPublished(ctx context.Context, published bool) ([]types.Student, error)

	// FindByTitleContaining returns the records whose title contains
	// substr.
	FindByTitleContaining(ctx context.Context, substr string) ([]types.Student, error)
}

// HealthChecker is implemented by stores that can report on the
// connectivity of the database behind them.
type HealthChecker interface {
	// ServerTime pings the database and returns its current time as
	// reported by the server.
	ServerTime(ctx context.Context) (string, error)
}
