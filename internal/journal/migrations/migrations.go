// Package migrations holds the journal schema as embedded golang-migrate
// files and applies it to a SQLite connection.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

const dir = "files"

//go:embed files/*.sql
var migrationFiles embed.FS

// ErrNotMigrated means the database has never had the journal schema applied.
var ErrNotMigrated = errors.New("journal has no schema version (needs migration)")

// Status describes where a database stands relative to the embedded schema.
type Status struct {
	Current uint // 0 when no migration has been applied
	Latest  uint
	Dirty   bool
}

// UpToDate reports whether the database can be used as is.
func (s Status) UpToDate() bool {
	return s.Current == s.Latest && !s.Dirty
}

func (s Status) err() error {
	switch {
	case s.UpToDate():
		return nil
	case s.Current == 0:
		return ErrNotMigrated
	case s.Dirty:
		return fmt.Errorf("journal schema is dirty at version %d (a previous migration failed)", s.Current)
	case s.Current < s.Latest:
		return fmt.Errorf("journal is at schema version %d but latest is %d", s.Current, s.Latest)
	case s.Current > s.Latest:
		return fmt.Errorf("journal schema version %d is newer than this binary supports (%d)", s.Current, s.Latest)
	default:
		return nil
	}
}

// ReadStatus reports the applied and latest schema versions of db.
func ReadStatus(db *sql.DB) (Status, error) {
	latest, err := LatestVersion()
	if err != nil {
		return Status{}, err
	}

	m, err := newMigrate(db)
	if err != nil {
		return Status{}, err
	}
	// m is not closed: that would close db, which the caller owns.

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return Status{Latest: latest}, nil
	}
	if err != nil {
		return Status{}, fmt.Errorf("reading schema version: %w", err)
	}
	return Status{Current: version, Latest: latest, Dirty: dirty}, nil
}

// CheckStatus returns nil only when db is at the latest embedded version and
// not dirty. A database that was never migrated reports ErrNotMigrated.
func CheckStatus(db *sql.DB) error {
	st, err := ReadStatus(db)
	if err != nil {
		return err
	}
	if st.UpToDate() {
		return nil
	}
	return st.err()
}

// MigrateUp applies every pending migration. An up-to-date database is not an error.
func MigrateUp(db *sql.DB) error {
	m, err := newMigrate(db)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying journal migrations: %w", err)
	}
	return nil
}

// LatestVersion returns the highest version among the embedded migration files.
func LatestVersion() (uint, error) {
	entries, err := fs.ReadDir(migrationFiles, dir)
	if err != nil {
		return 0, fmt.Errorf("reading embedded migrations: %w", err)
	}
	var latest uint
	for _, e := range entries {
		mig, err := source.Parse(e.Name())
		if err != nil {
			continue
		}
		latest = max(latest, mig.Version)
	}
	if latest == 0 {
		return 0, errors.New("no embedded journal migrations")
	}
	return latest, nil
}

func newMigrate(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationFiles, dir)
	if err != nil {
		return nil, fmt.Errorf("opening embedded migrations: %w", err)
	}
	drv, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("preparing sqlite migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", drv)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("creating migrator: %w", err)
	}
	return m, nil
}
