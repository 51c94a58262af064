package settings

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Repository stores raw platform settings
type Repository interface {
	All(ctx context.Context) (map[string]string, error)
	Upsert(ctx context.Context, values map[string]string) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates a settings repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

type settingRow struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

func (r *repository) All(ctx context.Context) (map[string]string, error) {
	var rows []settingRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT key, value FROM platform_settings`); err != nil {
		return nil, err
	}

	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Key] = row.Value
	}
	return values, nil
}

func (r *repository) Upsert(ctx context.Context, values map[string]string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for key, value := range values {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO platform_settings (key, value, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
		`, key, value); err != nil {
			return err
		}
	}

	return tx.Commit()
}
