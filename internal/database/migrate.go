package database

import (
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations applies all pending migrations from the migrations directory.
// A dirty database (a previous run died mid-migration) is forced back to its
// recorded version before retrying.
func RunMigrations(databaseURL string) error {
	m, err := migrate.New("file://migrations", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		log.Printf("could not get migration version: %v", err)
	}

	if dirty {
		log.Printf("database in dirty state at version %d, forcing clean", version)
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("failed to force version: %w", err)
		}
	}

	if err := m.Up(); err != nil {
		if err == migrate.ErrNoChange {
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, _, _ = m.Version()
	log.Printf("migrations complete, current version: %d", version)
	return nil
}

// MigrationVersion returns the current migration version and dirty flag.
func MigrationVersion(databaseURL string) (uint, bool, error) {
	m, err := migrate.New("file://migrations", databaseURL)
	if err != nil {
		return 0, false, err
	}
	defer m.Close()

	return m.Version()
}
