package securitysettings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.SecuritySettings, error) {
	query :=
		`SELECT user_id, security_level, privacy_mode, hide_balances, hide_transactions, hide_budgets,
		        require_auth_for_sensitive_actions, session_timeout_minutes, auto_lock_minutes,
		        max_login_attempts, updated_at
		 FROM security_settings
		 WHERE user_id = $1
		 `

	s := &models.SecuritySettings{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&s.UserID, &s.SecurityLevel, &s.PrivacyMode, &s.HideBalances, &s.HideTransactions, &s.HideBudgets,
		&s.RequireAuthForSensitiveActions, &s.SessionTimeoutMinutes, &s.AutoLockMinutes,
		&s.MaxLoginAttempts, &s.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

// CreateDefault inserts the default row; an existing row is left untouched.
func (r *PostgresRepository) CreateDefault(ctx context.Context, userID string) error {
	d := models.DefaultSecuritySettings(userID)

	query :=
		`INSERT INTO security_settings (user_id, security_level, privacy_mode, hide_balances,
		        hide_transactions, hide_budgets, require_auth_for_sensitive_actions,
		        session_timeout_minutes, auto_lock_minutes, max_login_attempts)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (user_id) DO NOTHING
		 `

	_, err := r.db.ExecContext(ctx, query, d.UserID, d.SecurityLevel, d.PrivacyMode, d.HideBalances,
		d.HideTransactions, d.HideBudgets, d.RequireAuthForSensitiveActions,
		d.SessionTimeoutMinutes, d.AutoLockMinutes, d.MaxLoginAttempts)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, s *models.SecuritySettings) error {
	query :=
		`UPDATE security_settings
		 SET security_level = $2, privacy_mode = $3, hide_balances = $4, hide_transactions = $5,
		     hide_budgets = $6, require_auth_for_sensitive_actions = $7, session_timeout_minutes = $8,
		     auto_lock_minutes = $9, max_login_attempts = $10, updated_at = now()
		 WHERE user_id = $1
		 `

	return dbx.ExecOne(ctx, r.db, query, s.UserID, s.SecurityLevel, s.PrivacyMode, s.HideBalances,
		s.HideTransactions, s.HideBudgets, s.RequireAuthForSensitiveActions, s.SessionTimeoutMinutes,
		s.AutoLockMinutes, s.MaxLoginAttempts)
}
