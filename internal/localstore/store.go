// Package localstore opens the on-device key-value store selected in the
// configuration.
package localstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/budgetkeeper/internal/config"
	"github.com/dmitrijs2005/budgetkeeper/internal/filex"
	"github.com/dmitrijs2005/budgetkeeper/internal/migrations/local"
	"github.com/dmitrijs2005/budgetkeeper/internal/repositories/metadata"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Store is a metadata repository that owns its underlying database handle.
type Store struct {
	metadata.Repository
	close func() error
}

func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// RunMigrations applies the embedded SQLite migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(local.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Open returns the store for driver ("sqlite" or "bolt") at path.
func Open(ctx context.Context, driver, path string) (*Store, error) {
	if err := filex.EnsureParentDir(path); err != nil {
		return nil, err
	}

	switch driver {
	case config.LocalStoreSQLite, "":
		db, err := sql.Open("sqlite", path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		db.SetMaxOpenConns(1)

		if err := RunMigrations(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return &Store{Repository: metadata.NewSQLiteRepository(db), close: db.Close}, nil

	case config.LocalStoreBolt:
		r, err := metadata.OpenBoltRepository(path)
		if err != nil {
			return nil, err
		}
		return &Store{Repository: r, close: r.Close}, nil

	default:
		return nil, fmt.Errorf("unknown local store driver %q", driver)
	}
}
