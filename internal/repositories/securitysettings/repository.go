package securitysettings

import (
	"context"

	"github.com/dmitrijs2005/budgetkeeper/internal/models"
)

// Repository reads and writes the per-user security_settings row.
// Get returns common.ErrorNotFound when the row does not exist yet.
type Repository interface {
	Get(ctx context.Context, userID string) (*models.SecuritySettings, error)
	CreateDefault(ctx context.Context, userID string) error
	Update(ctx context.Context, s *models.SecuritySettings) error
}
