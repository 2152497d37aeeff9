package pgstore

import (
	"errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations brings the schema up to date. sourceURL is a
// golang-migrate source like "file://db/migrations". Already up to date
// is not an error.
func RunMigrations(sourceURL, dbURI string) error {
	m, err := migrate.New(sourceURL, dbURI)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
