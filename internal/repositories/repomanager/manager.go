package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/budgetkeeper/internal/dbx"
	"github.com/dmitrijs2005/budgetkeeper/internal/repositories/backuphistory"
	"github.com/dmitrijs2005/budgetkeeper/internal/repositories/backupsettings"
	"github.com/dmitrijs2005/budgetkeeper/internal/repositories/profiles"
	"github.com/dmitrijs2005/budgetkeeper/internal/repositories/records"
	"github.com/dmitrijs2005/budgetkeeper/internal/repositories/securitysettings"
	"github.com/dmitrijs2005/budgetkeeper/internal/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code
// runs against *sql.DB or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Profiles(db dbx.DBTX) profiles.Repository
	SecuritySettings(db dbx.DBTX) securitysettings.Repository
	BackupSettings(db dbx.DBTX) backupsettings.Repository
	BackupHistory(db dbx.DBTX) backuphistory.Repository
	Records(db dbx.DBTX) records.Repository
}
