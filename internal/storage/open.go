package storage

import (
	"fmt"
	"io"

	"github.com/aanand-mishra/students-service/internal/config"
	"github.com/aanand-mishra/students-service/internal/storage/mysql"
	"github.com/aanand-mishra/students-service/internal/storage/sqlite"
	"github.com/aanand-mishra/students-service/internal/storage/sqlstore"
)

// Store is what main needs from a backend: the Storage contract, a
// health probe, and a way to release the connection pool on shutdown.
type Store interface {
	Storage
	HealthChecker
	io.Closer
}

// Open connects to the backend selected by cfg.Driver.
func Open(cfg config.Storage) (Store, error) {
	var (
		store *sqlstore.Store
		err   error
	)

	switch cfg.Driver {
	case config.DriverSQLite:
		store, err = sqlite.New(cfg.Path)
	case config.DriverMySQL:
		store, err = mysql.New(cfg.DSN)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}

	// Avoid handing back a typed nil wrapped in a non-nil interface.
	if err != nil {
		return nil, err
	}

	return store, nil
}
