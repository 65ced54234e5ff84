package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/logging"
	"github.com/dmitrijs2005/budgetkeeper/internal/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/repositories/metadata"
	"github.com/dmitrijs2005/budgetkeeper/internal/timex"
)

func lastCheckKey(userID string) string { return "auto_backup_last_check:" + userID }
func nextDueKey(userID string) string   { return "auto_backup_next_due:" + userID }

// AutoBackupService runs the automatic backup when it is due. The check
// itself happens at most once per calendar day and user.
type AutoBackupService struct {
	store    metadata.Repository
	settings *SettingsService
	backup   *BackupService
	users    CurrentUserProvider
	clock    Clock
	log      logging.Logger
}

func NewAutoBackupService(store metadata.Repository, settings *SettingsService, backup *BackupService,
	users CurrentUserProvider, log logging.Logger) *AutoBackupService {
	return &AutoBackupService{store: store, settings: settings, backup: backup, users: users, log: log}
}

func (s *AutoBackupService) WithClock(c Clock) *AutoBackupService {
	s.clock = c
	return s
}

// CheckAndRun reports whether a backup was made.
func (s *AutoBackupService) CheckAndRun(ctx context.Context) (bool, error) {
	userID, err := s.users.CurrentUserID(ctx)
	if err != nil {
		return false, err
	}

	now := s.clock.now()
	today := timex.DateKey(now)

	last, err := s.store.Get(ctx, lastCheckKey(userID))
	if err != nil {
		return false, fmt.Errorf("read auto backup check: %w", err)
	}
	if string(last) == today {
		return false, nil
	}
	if err := s.store.Set(ctx, lastCheckKey(userID), []byte(today)); err != nil {
		return false, fmt.Errorf("store auto backup check: %w", err)
	}

	settings, err := s.settings.GetBackupSettings(ctx)
	if err != nil {
		return false, err
	}
	if !settings.AutoBackupEnabled {
		return false, nil
	}

	due, err := s.nextDue(ctx, userID)
	if err != nil {
		return false, err
	}
	if now.Before(due) {
		s.log.Debug(ctx, "auto backup not due", "user_id", userID, "next_due", due)
		return false, nil
	}

	if _, err := s.backup.CreateBackup(ctx, models.BackupTypeAutomatic, nil); err != nil {
		return false, err
	}

	next := now.Add(settings.BackupFrequency.Interval())
	if err := s.store.Set(ctx, nextDueKey(userID), []byte(next.UTC().Format(time.RFC3339))); err != nil {
		return true, fmt.Errorf("store next auto backup: %w", err)
	}
	s.log.Info(ctx, "auto backup done", "user_id", userID, "next_due", next)
	return true, nil
}

// nextDue returns the zero time when no valid schedule is stored.
func (s *AutoBackupService) nextDue(ctx context.Context, userID string) (time.Time, error) {
	v, err := s.store.Get(ctx, nextDueKey(userID))
	if err != nil {
		return time.Time{}, fmt.Errorf("read next auto backup: %w", err)
	}
	if v == nil {
		return time.Time{}, nil
	}

	t, err := time.Parse(time.RFC3339, string(v))
	if err != nil {
		s.log.Warn(ctx, "ignoring malformed next auto backup time", "value", string(v))
		return time.Time{}, nil
	}
	return t, nil
}
