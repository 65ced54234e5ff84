package records

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/budgetkeeper/internal/dbx"
	"github.com/dmitrijs2005/budgetkeeper/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Fetch returns every row of the category owned by userID as JSON objects.
func (r *PostgresRepository) Fetch(ctx context.Context, c models.Category, userID string) ([]models.Record, error) {
	t, err := TableFor(c)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT COALESCE(json_agg(t), '[]'::json) FROM %s t WHERE t.user_id = $1`, t.Name)

	var raw []byte
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&raw); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	rows := make([]models.Record, 0)
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode %s rows: %w", t.Name, err)
	}
	return rows, nil
}

func (r *PostgresRepository) DeleteByUser(ctx context.Context, c models.Category, userID string) error {
	t, err := TableFor(c)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1`, t.Name)
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Insert adds rows in one statement. Columns missing from a row are NULL.
func (r *PostgresRepository) Insert(ctx context.Context, c models.Category, rows []models.Record) error {
	if len(rows) == 0 {
		return nil
	}

	t, err := TableFor(c)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode %s rows: %w", t.Name, err)
	}

	query := fmt.Sprintf(`INSERT INTO %[1]s SELECT * FROM json_populate_recordset(NULL::%[1]s, $1::json)`, t.Name)
	if _, err := r.db.ExecContext(ctx, query, string(payload)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Upsert writes rows of a singleton table, replacing the user's existing row.
func (r *PostgresRepository) Upsert(ctx context.Context, c models.Category, rows []models.Record) error {
	if len(rows) == 0 {
		return nil
	}

	t, err := TableFor(c)
	if err != nil {
		return err
	}
	if !t.Singleton {
		return fmt.Errorf("upsert not supported for %s", t.Name)
	}

	payload, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode %s rows: %w", t.Name, err)
	}

	set := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		set[i] = fmt.Sprintf("%[1]s = EXCLUDED.%[1]s", col)
	}

	query := fmt.Sprintf(
		`INSERT INTO %[1]s SELECT * FROM json_populate_recordset(NULL::%[1]s, $1::json)
		 ON CONFLICT (user_id) DO UPDATE SET %[2]s`,
		t.Name, strings.Join(set, ", "))

	if _, err := r.db.ExecContext(ctx, query, string(payload)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
