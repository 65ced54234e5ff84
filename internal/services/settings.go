package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/logging"
	"github.com/dmitrijs2005/budgetkeeper/internal/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/repositories/backupsettings"
	"github.com/dmitrijs2005/budgetkeeper/internal/repositories/repomanager"
	"github.com/dmitrijs2005/budgetkeeper/internal/repositories/securitysettings"
)

// SettingsService reads and writes the per-user security and backup settings
// rows. Rows are created with defaults on first read.
type SettingsService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	users       CurrentUserProvider
	log         logging.Logger
}

func NewSettingsService(db *sql.DB, m repomanager.RepositoryManager, users CurrentUserProvider, log logging.Logger) *SettingsService {
	return &SettingsService{db: db, repomanager: m, users: users, log: log}
}

func loadSecuritySettings(ctx context.Context, repo securitysettings.Repository, userID string) (*models.SecuritySettings, error) {
	s, err := repo.Get(ctx, userID)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("load security settings: %w", err)
	}

	if err := repo.CreateDefault(ctx, userID); err != nil {
		return nil, fmt.Errorf("create security settings: %w", err)
	}
	return repo.Get(ctx, userID)
}

func loadBackupSettings(ctx context.Context, repo backupsettings.Repository, userID string) (*models.BackupSettings, error) {
	s, err := repo.Get(ctx, userID)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("load backup settings: %w", err)
	}

	if err := repo.CreateDefault(ctx, userID); err != nil {
		return nil, fmt.Errorf("create backup settings: %w", err)
	}
	return repo.Get(ctx, userID)
}

func (s *SettingsService) GetSecuritySettings(ctx context.Context) (*models.SecuritySettings, error) {
	userID, err := s.users.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}
	return loadSecuritySettings(ctx, s.repomanager.SecuritySettings(s.db), userID)
}

func (s *SettingsService) UpdateSecuritySettings(ctx context.Context, settings *models.SecuritySettings) error {
	userID, err := s.users.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	if err := validateSecuritySettings(settings); err != nil {
		return err
	}

	repo := s.repomanager.SecuritySettings(s.db)
	if _, err := loadSecuritySettings(ctx, repo, userID); err != nil {
		return err
	}

	settings.UserID = userID
	if err := repo.Update(ctx, settings); err != nil {
		return fmt.Errorf("update security settings: %w", err)
	}
	s.log.Info(ctx, "security settings updated", "user_id", userID, "level", settings.SecurityLevel, "privacy", settings.PrivacyMode)
	return nil
}

func (s *SettingsService) GetBackupSettings(ctx context.Context) (*models.BackupSettings, error) {
	userID, err := s.users.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}
	return loadBackupSettings(ctx, s.repomanager.BackupSettings(s.db), userID)
}

func (s *SettingsService) UpdateBackupSettings(ctx context.Context, settings *models.BackupSettings) error {
	userID, err := s.users.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	if err := validateBackupSettings(settings); err != nil {
		return err
	}

	repo := s.repomanager.BackupSettings(s.db)
	if _, err := loadBackupSettings(ctx, repo, userID); err != nil {
		return err
	}

	settings.UserID = userID
	if err := repo.Update(ctx, settings); err != nil {
		return fmt.Errorf("update backup settings: %w", err)
	}
	s.log.Info(ctx, "backup settings updated", "user_id", userID, "frequency", settings.BackupFrequency)
	return nil
}

// History lists the newest backup history entries of the current user.
func (s *SettingsService) History(ctx context.Context) ([]*models.BackupHistory, error) {
	userID, err := s.users.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	items, err := s.repomanager.BackupHistory(s.db).List(ctx, userID, common.MaxHistoryEntries)
	if err != nil {
		return nil, fmt.Errorf("list backup history: %w", err)
	}
	return items, nil
}

func validateSecuritySettings(s *models.SecuritySettings) error {
	switch s.SecurityLevel {
	case models.SecurityLevelLow, models.SecurityLevelMedium, models.SecurityLevelHigh:
	default:
		return fmt.Errorf("%w: security level %q", common.ErrInvalidSettingArg, s.SecurityLevel)
	}
	switch s.PrivacyMode {
	case models.PrivacyModeStandard, models.PrivacyModeEnhanced, models.PrivacyModeMaximum:
	default:
		return fmt.Errorf("%w: privacy mode %q", common.ErrInvalidSettingArg, s.PrivacyMode)
	}
	if s.SessionTimeoutMinutes <= 0 || s.AutoLockMinutes <= 0 || s.MaxLoginAttempts <= 0 {
		return fmt.Errorf("%w: timeouts and limits must be positive", common.ErrInvalidSettingArg)
	}
	return nil
}

func validateBackupSettings(s *models.BackupSettings) error {
	switch s.BackupFrequency {
	case models.BackupFrequencyDaily, models.BackupFrequencyWeekly, models.BackupFrequencyMonthly:
	default:
		return fmt.Errorf("%w: backup frequency %q", common.ErrInvalidSettingArg, s.BackupFrequency)
	}
	switch s.BackupLocation {
	case models.BackupLocationCloud, models.BackupLocationLocal, models.BackupLocationBoth:
	default:
		return fmt.Errorf("%w: backup location %q", common.ErrInvalidSettingArg, s.BackupLocation)
	}
	return nil
}
