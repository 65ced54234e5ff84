package backuphistory

import (
	"context"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/models"
)

type Repository interface {
	Create(ctx context.Context, h *models.BackupHistory) error
	SetStatus(ctx context.Context, id string, status models.BackupStatus) error
	Complete(ctx context.Context, id string, sizeMB float64, location models.BackupLocation, filePath string, completedAt time.Time) error
	Fail(ctx context.Context, id string, message string, completedAt time.Time) error
	Get(ctx context.Context, userID, id string) (*models.BackupHistory, error)
	LatestCompleted(ctx context.Context, userID string) (*models.BackupHistory, error)
	List(ctx context.Context, userID string, limit int) ([]*models.BackupHistory, error)
}
