package backuphistory

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

const selectColumns = `id, user_id, backup_type, backup_status, backup_size_mb, backup_location,
		        file_path, error_message, started_at, completed_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHistory(row rowScanner) (*models.BackupHistory, error) {
	h := &models.BackupHistory{}
	var (
		sizeMB      sql.NullFloat64
		location    sql.NullString
		filePath    sql.NullString
		errMessage  sql.NullString
		completedAt sql.NullTime
	)

	if err := row.Scan(&h.ID, &h.UserID, &h.BackupType, &h.BackupStatus, &sizeMB, &location,
		&filePath, &errMessage, &h.StartedAt, &completedAt); err != nil {
		return nil, err
	}

	if sizeMB.Valid {
		h.BackupSizeMB = &sizeMB.Float64
	}
	if location.Valid {
		l := models.BackupLocation(location.String)
		h.BackupLocation = &l
	}
	if filePath.Valid {
		h.FilePath = &filePath.String
	}
	if errMessage.Valid {
		h.ErrorMessage = &errMessage.String
	}
	if completedAt.Valid {
		h.CompletedAt = &completedAt.Time
	}
	return h, nil
}

func (r *PostgresRepository) Create(ctx context.Context, h *models.BackupHistory) error {
	query :=
		`INSERT INTO backup_history (id, user_id, backup_type, backup_status, started_at)
		 VALUES ($1, $2, $3, $4, $5)
		 `

	if _, err := r.db.ExecContext(ctx, query, h.ID, h.UserID, h.BackupType, h.BackupStatus, h.StartedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SetStatus(ctx context.Context, id string, status models.BackupStatus) error {
	query :=
		`UPDATE backup_history SET backup_status = $2
		 WHERE id = $1
		 `
	return dbx.ExecOne(ctx, r.db, query, id, status)
}

func (r *PostgresRepository) Complete(ctx context.Context, id string, sizeMB float64, location models.BackupLocation, filePath string, completedAt time.Time) error {
	query :=
		`UPDATE backup_history
		 SET backup_status = $2, backup_size_mb = $3, backup_location = $4, file_path = $5,
		     completed_at = $6, error_message = NULL
		 WHERE id = $1
		 `
	return dbx.ExecOne(ctx, r.db, query, id, models.BackupStatusCompleted, sizeMB, location, filePath, completedAt)
}

func (r *PostgresRepository) Fail(ctx context.Context, id string, message string, completedAt time.Time) error {
	query :=
		`UPDATE backup_history
		 SET backup_status = $2, error_message = $3, completed_at = $4
		 WHERE id = $1
		 `
	return dbx.ExecOne(ctx, r.db, query, id, models.BackupStatusFailed, message, completedAt)
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.BackupHistory, error) {
	query := `SELECT ` + selectColumns + `
		 FROM backup_history
		 WHERE user_id = $1 AND id = $2
		 `

	h, err := scanHistory(r.db.QueryRowContext(ctx, query, userID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return h, nil
}

// LatestCompleted returns the newest completed backup that has a stored file.
func (r *PostgresRepository) LatestCompleted(ctx context.Context, userID string) (*models.BackupHistory, error) {
	query := `SELECT ` + selectColumns + `
		 FROM backup_history
		 WHERE user_id = $1 AND backup_status = $2 AND file_path IS NOT NULL
		 ORDER BY started_at DESC
		 LIMIT 1
		 `

	h, err := scanHistory(r.db.QueryRowContext(ctx, query, userID, models.BackupStatusCompleted))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return h, nil
}

// List returns up to limit entries, newest first.
func (r *PostgresRepository) List(ctx context.Context, userID string, limit int) ([]*models.BackupHistory, error) {
	query := `SELECT ` + selectColumns + `
		 FROM backup_history
		 WHERE user_id = $1
		 ORDER BY started_at DESC
		 LIMIT $2
		 `

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.BackupHistory, 0, limit)
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}
