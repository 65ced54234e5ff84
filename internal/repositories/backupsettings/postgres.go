package backupsettings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/dbx"
	"github.com/dmitrijs2005/budgetkeeper/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.BackupSettings, error) {
	query :=
		`SELECT user_id, auto_backup_enabled, include_transactions, include_budgets, include_challenges,
		        include_settings, backup_frequency, backup_location, encryption_enabled,
		        last_backup_at, backup_size_mb, updated_at
		 FROM backup_settings
		 WHERE user_id = $1
		 `

	s := &models.BackupSettings{}
	var lastBackupAt sql.NullTime
	var sizeMB sql.NullFloat64

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&s.UserID, &s.AutoBackupEnabled, &s.IncludeTransactions, &s.IncludeBudgets, &s.IncludeChallenges,
		&s.IncludeSettings, &s.BackupFrequency, &s.BackupLocation, &s.EncryptionEnabled,
		&lastBackupAt, &sizeMB, &s.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if lastBackupAt.Valid {
		s.LastBackupAt = &lastBackupAt.Time
	}
	if sizeMB.Valid {
		s.BackupSizeMB = &sizeMB.Float64
	}
	return s, nil
}

// CreateDefault inserts the default row; an existing row is left untouched.
func (r *PostgresRepository) CreateDefault(ctx context.Context, userID string) error {
	d := models.DefaultBackupSettings(userID)

	query :=
		`INSERT INTO backup_settings (user_id, auto_backup_enabled, include_transactions, include_budgets,
		        include_challenges, include_settings, backup_frequency, backup_location, encryption_enabled)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (user_id) DO NOTHING
		 `

	_, err := r.db.ExecContext(ctx, query, d.UserID, d.AutoBackupEnabled, d.IncludeTransactions,
		d.IncludeBudgets, d.IncludeChallenges, d.IncludeSettings, d.BackupFrequency, d.BackupLocation,
		d.EncryptionEnabled)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update writes the user-editable columns. last_backup_at and
// backup_size_mb are only changed by MarkBackedUp.
func (r *PostgresRepository) Update(ctx context.Context, s *models.BackupSettings) error {
	query :=
		`UPDATE backup_settings
		 SET auto_backup_enabled = $2, include_transactions = $3, include_budgets = $4,
		     include_challenges = $5, include_settings = $6, backup_frequency = $7,
		     backup_location = $8, encryption_enabled = $9, updated_at = now()
		 WHERE user_id = $1
		 `

	return dbx.ExecOne(ctx, r.db, query, s.UserID, s.AutoBackupEnabled, s.IncludeTransactions,
		s.IncludeBudgets, s.IncludeChallenges, s.IncludeSettings, s.BackupFrequency, s.BackupLocation,
		s.EncryptionEnabled)
}

func (r *PostgresRepository) MarkBackedUp(ctx context.Context, userID string, at time.Time, sizeMB float64) error {
	query :=
		`UPDATE backup_settings
		 SET last_backup_at = $2, backup_size_mb = $3, updated_at = now()
		 WHERE user_id = $1
		 `

	return dbx.ExecOne(ctx, r.db, query, userID, at, sizeMB)
}
