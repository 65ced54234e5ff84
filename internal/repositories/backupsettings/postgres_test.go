package backupsettings

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"user_id", "auto_backup_enabled", "include_transactions", "include_budgets",
	"include_challenges", "include_settings", "backup_frequency", "backup_location", "encryption_enabled",
	"last_backup_at", "backup_size_mb", "updated_at"}

const (
	selectQ = `(?s)^SELECT\s+user_id,\s*auto_backup_enabled,.*FROM\s+backup_settings\s+WHERE\s+user_id\s*=\s*\$1\s*$`
	insertQ = `(?s)^INSERT\s+INTO\s+backup_settings\s*\(.*\)\s*VALUES\s*\(\$1,.*\$9\)\s*ON\s+CONFLICT\s*\(user_id\)\s+DO\s+NOTHING\s*$`
	updateQ = `(?s)^UPDATE\s+backup_settings\s+SET\s+auto_backup_enabled\s*=\s*\$2,.*WHERE\s+user_id\s*=\s*\$1\s*$`
	markQ   = `(?s)^UPDATE\s+backup_settings\s+SET\s+last_backup_at\s*=\s*\$2,\s*backup_size_mb\s*=\s*\$3,.*WHERE\s+user_id\s*=\s*\$1\s*$`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestGet_NullableColumns(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(selectQ).WithArgs("u1").WillReturnRows(
		sqlmock.NewRows(columns).
			AddRow("u1", true, false, true, true, false, "daily", "both", true, nil, nil, now))

	got, err := repo.Get(context.Background(), "u1")
	require.NoError(t, err)

	want := &models.BackupSettings{
		UserID:            "u1",
		AutoBackupEnabled: true,
		IncludeBudgets:    true,
		IncludeChallenges: true,
		BackupFrequency:   models.BackupFrequencyDaily,
		BackupLocation:    models.BackupLocationBoth,
		EncryptionEnabled: true,
		UpdatedAt:         now,
	}
	assert.Empty(t, cmp.Diff(want, got))
}

func TestGet_WithLastBackup(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	at := time.Date(2024, 4, 30, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(selectQ).WithArgs("u1").WillReturnRows(
		sqlmock.NewRows(columns).
			AddRow("u1", false, true, true, true, true, "weekly", "cloud", true, at, 1.25, at))

	got, err := repo.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, got.LastBackupAt)
	require.NotNil(t, got.BackupSizeMB)
	assert.True(t, got.LastBackupAt.Equal(at))
	assert.InDelta(t, 1.25, *got.BackupSizeMB, 1e-9)
}

func TestGet_Errors(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectQ).WithArgs("u1").WillReturnError(sql.ErrNoRows)
	_, err := repo.Get(context.Background(), "u1")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	mock.ExpectQuery(selectQ).WithArgs("u1").WillReturnError(errors.New("timeout"))
	_, err = repo.Get(context.Background(), "u1")
	assert.ErrorContains(t, err, "db error: timeout")
}

func TestCreateDefault(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(insertQ).
		WithArgs("u1", false, true, true, true, true, models.BackupFrequencyWeekly, models.BackupLocationCloud, true).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.CreateDefault(context.Background(), "u1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	s := models.DefaultBackupSettings("u1")
	s.AutoBackupEnabled = true
	s.BackupFrequency = models.BackupFrequencyMonthly

	mock.ExpectExec(updateQ).
		WithArgs("u1", true, true, true, true, true, models.BackupFrequencyMonthly, models.BackupLocationCloud, true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), s))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkBackedUp(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec(markQ).WithArgs("u1", at, 0.5).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.MarkBackedUp(context.Background(), "u1", at, 0.5))

	mock.ExpectExec(markQ).WithArgs("u2", at, 0.5).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.MarkBackedUp(context.Background(), "u2", at, 0.5), common.ErrorNotFound)
}
