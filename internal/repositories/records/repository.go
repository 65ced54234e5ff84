package records

import (
	"context"

	"github.com/dmitrijs2005/budgetkeeper/internal/models"
)

// Repository performs whole-category operations scoped to one user.
type Repository interface {
	Fetch(ctx context.Context, c models.Category, userID string) ([]models.Record, error)
	DeleteByUser(ctx context.Context, c models.Category, userID string) error
	Insert(ctx context.Context, c models.Category, rows []models.Record) error
	Upsert(ctx context.Context, c models.Category, rows []models.Record) error
}
