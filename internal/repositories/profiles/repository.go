package profiles

import (
	"context"

	"github.com/dmitrijs2005/budgetkeeper/internal/models"
)

type Repository interface {
	Create(ctx context.Context, p *models.Profile) error
	Get(ctx context.Context, userID string) (*models.Profile, error)
}
