// Package records reads and writes the user-owned tables that make up a
// backup. Rows travel as JSON objects so the backup format does not depend
// on column types.
package records

import (
	"fmt"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/models"
)

// Table describes the remote table behind a backup category.
// Singleton tables hold one row per user and are restored by upsert;
// Columns lists what the upsert overwrites.
type Table struct {
	Name      string
	Singleton bool
	Columns   []string
}

var tables = map[models.Category]Table{
	models.CategoryTransactions: {Name: "transactions"},
	models.CategoryBudgets:      {Name: "budgets"},
	models.CategoryChallenges:   {Name: "user_challenges"},
	models.CategorySavingGoals:  {Name: "saving_goals"},
	models.CategoryCategories:   {Name: "categories"},
	models.CategoryProfile: {
		Name:      "profiles",
		Singleton: true,
		Columns:   []string{"full_name", "currency", "avatar_url", "created_at", "updated_at"},
	},
	models.CategorySettings: {
		Name:      "user_settings",
		Singleton: true,
		Columns:   []string{"language", "currency", "theme", "notifications_enabled", "updated_at"},
	},
}

// TableFor resolves the table of a category. Table names are only ever
// taken from this registry, never from backup content.
func TableFor(c models.Category) (Table, error) {
	t, ok := tables[c]
	if !ok {
		return Table{}, fmt.Errorf("%w: %s", common.ErrUnknownCategory, c)
	}
	return t, nil
}
