// Package mysql opens a MySQL database for the students store using
// github.com/go-sql-driver/mysql.
package mysql

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/aanand-mishra/students-service/internal/storage/sqlstore"
)

const schema = `
	CREATE TABLE IF NOT EXISTS students (
		id          BIGINT       NOT NULL AUTO_INCREMENT,
		title       VARCHAR(255) NOT NULL DEFAULT '',
		description VARCHAR(255) NOT NULL DEFAULT '',
		published   BOOLEAN      NOT NULL DEFAULT FALSE,
		PRIMARY KEY (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4
`

// New parses dsn, opens a connection pool, verifies connectivity, and
// creates the students table if it does not already exist.
func New(dsn string) (*sqlstore.Store, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql.New: parse dsn: %w", err)
	}

	// CURRENT_TIMESTAMP comes back as time.Time instead of raw bytes.
	cfg.ParseTime = true

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("mysql.New: connector: %w", err)
	}

	db := sql.OpenDB(connector)
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql.New: ping: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql.New: create table: %w", err)
	}

	return sqlstore.New(db), nil
}
