// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/budgetkeeper/internal/dbx"
	"github.com/dmitrijs2005/budgetkeeper/internal/migrations/remote"
	"github.com/dmitrijs2005/budgetkeeper/internal/repositories/backuphistory"
	"github.com/dmitrijs2005/budgetkeeper/internal/repositories/backupsettings"
	"github.com/dmitrijs2005/budgetkeeper/internal/repositories/profiles"
	"github.com/dmitrijs2005/budgetkeeper/internal/repositories/records"
	"github.com/dmitrijs2005/budgetkeeper/internal/repositories/securitysettings"
	"github.com/dmitrijs2005/budgetkeeper/internal/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Profiles(db dbx.DBTX) profiles.Repository {
	return profiles.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) SecuritySettings(db dbx.DBTX) securitysettings.Repository {
	return securitysettings.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) BackupSettings(db dbx.DBTX) backupsettings.Repository {
	return backupsettings.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) BackupHistory(db dbx.DBTX) backuphistory.Repository {
	return backuphistory.NewPostgresRepository(db)
}

// Records returns the repository for whole backup categories.
func (m *PostgresRepositoryManager) Records(db dbx.DBTX) records.Repository {
	return records.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(remote.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}

// OpenDB opens the remote store through the pgx stdlib driver and checks
// that it answers.
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
