package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // register postgres driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // register file source driver
)

// MigrationStatus is the schema version recorded by golang-migrate. Dirty
// means a previous run failed part way and the schema needs manual repair.
type MigrationStatus struct {
	Version uint
	Dirty   bool
}

func (s MigrationStatus) String() string {
	if s.Dirty {
		return fmt.Sprintf("version %d (dirty)", s.Version)
	}
	return fmt.Sprintf("version %d", s.Version)
}

// withMigrator opens a migrator for migrationsDir (a source URL such as
// "file://migrations"), runs fn and closes both ends.
func withMigrator(dsn, migrationsDir string, fn func(*migrate.Migrate) error) (err error) {
	if dsn == "" {
		return errors.New("postgres: migrate: empty database URL")
	}
	m, err := migrate.New(migrationsDir, dsn)
	if err != nil {
		return fmt.Errorf("postgres: create migrator: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if err == nil {
			err = errors.Join(srcErr, dbErr)
		}
	}()
	return fn(m)
}

// ignoreNoChange treats an already current schema as success.
func ignoreNoChange(op string, err error) error {
	if err == nil || errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return fmt.Errorf("postgres: %s: %w", op, err)
}

// RunMigrations applies every pending migration.
func RunMigrations(dsn, migrationsDir string) error {
	return withMigrator(dsn, migrationsDir, func(m *migrate.Migrate) error {
		return ignoreNoChange("run migrations up", m.Up())
	})
}

// RunMigrationsDown rolls back every applied migration.
func RunMigrationsDown(dsn, migrationsDir string) error {
	return withMigrator(dsn, migrationsDir, func(m *migrate.Migrate) error {
		return ignoreNoChange("run migrations down", m.Down())
	})
}

// MigrateSteps moves n migrations forward, or back when n is negative.
func MigrateSteps(dsn, migrationsDir string, n int) error {
	if n == 0 {
		return nil
	}
	return withMigrator(dsn, migrationsDir, func(m *migrate.Migrate) error {
		return ignoreNoChange(fmt.Sprintf("migrate %+d steps", n), m.Steps(n))
	})
}

// MigrationVersion reports the applied schema version. A database with no
// migrations applied is at version 0.
func MigrationVersion(dsn, migrationsDir string) (MigrationStatus, error) {
	var status MigrationStatus
	err := withMigrator(dsn, migrationsDir, func(m *migrate.Migrate) error {
		version, dirty, err := m.Version()
		switch {
		case errors.Is(err, migrate.ErrNilVersion):
			return nil
		case err != nil:
			return fmt.Errorf("postgres: read migration version: %w", err)
		}
		status = MigrationStatus{Version: version, Dirty: dirty}
		return nil
	})
	return status, err
}
