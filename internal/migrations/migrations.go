// Package migrations applies versioned schema changes at startup. The
// repository layer assumes the store is migrated before it serves
// requests.
package migrations

import (
	"embed"
	"errors"
	"fmt"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	_ "github.com/golang-migrate/migrate/v4/database/mongodb"

	"github.com/minsukang/accounts/pkg/logger"
)

//go:embed *.json
var files embed.FS

// Run applies all pending up migrations against the given database
func Run(uri string, database string, log *logger.Logger) error {
	migrateLog := log.WithComponent("migrations")

	dsn, err := withDatabase(uri, database)
	if err != nil {
		return fmt.Errorf("invalid mongo URI: %w", err)
	}

	source, err := iofs.New(files, ".")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read migration version: %w", err)
	}

	migrateLog.Info("Migrations applied",
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}

// withDatabase sets the database path on the connection URI, which the
// mongodb migrate driver requires
func withDatabase(uri string, database string) (string, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return "", err
	}
	parsed.Path = "/" + database
	return parsed.String(), nil
}
