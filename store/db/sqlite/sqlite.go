package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	// Import the SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/hrygo/nutribot/internal/profile"
	"github.com/hrygo/nutribot/store"
)

// SQLite is for development, demos and tests. Vector search is not available.

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a SQLite database at profile.DSN.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	// busy_timeout lets concurrent chat requests wait for the writer instead of failing with SQLITE_BUSY.
	db, err := sql.Open("sqlite", profile.DSN+"?_pragma=foreign_keys(0)&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	driver := DB{db: db, profile: profile}
	return &driver, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) IsInitialized(ctx context.Context) (bool, error) {
	var exists bool
	err := d.db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = 'chat_message')").Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, "failed to check if database is initialized")
	}
	return exists, nil
}
