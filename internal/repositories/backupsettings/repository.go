package backupsettings

import (
	"context"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/models"
)

// Repository reads and writes the per-user backup_settings row.
// Get returns common.ErrorNotFound when the row does not exist yet.
type Repository interface {
	Get(ctx context.Context, userID string) (*models.BackupSettings, error)
	CreateDefault(ctx context.Context, userID string) error
	Update(ctx context.Context, s *models.BackupSettings) error
	MarkBackedUp(ctx context.Context, userID string, at time.Time, sizeMB float64) error
}
