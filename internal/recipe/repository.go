package recipe

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cookdna/internal/database"

	"github.com/rs/zerolog/log"
)

// Repository is a database-backed repository for recipes.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Save inserts or updates a recipe in the database.
func (r *Repository) Save(ctx context.Context, rec Recipe) error {
	recipeJSON, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe to JSON: %w", err)
	}

	updatedAt := time.Now()
	if rec.UpdatedAt != "" {
		parsed, err := time.Parse(time.RFC3339, rec.UpdatedAt)
		if err != nil {
			log.Warn().Err(err).Str("recipe_id", rec.ID).Str("updated_at", rec.UpdatedAt).
				Msg("unparseable updated_at, using current time")
		} else {
			updatedAt = parsed
		}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO recipes (id, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		rec.ID, string(recipeJSON), database.FormatTime(updatedAt))
	if err != nil {
		return fmt.Errorf("failed to save recipe %s: %w", rec.ID, err)
	}
	return nil
}

// Get retrieves a recipe by its ID. It returns nil when the recipe does not exist.
func (r *Repository) Get(ctx context.Context, id string) (*Recipe, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data FROM recipes WHERE id = ?`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recipe by ID: %w", err)
	}

	var rec Recipe
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe JSON: %w", err)
	}
	return &rec, nil
}

// GetByIds retrieves multiple recipes by their IDs. Unknown IDs are skipped.
func (r *Repository) GetByIds(ctx context.Context, ids []string) ([]Recipe, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT id, data FROM recipes WHERE id IN (%s) ORDER BY id`, placeholders(len(ids)))
	return r.query(ctx, query, args...)
}

// List retrieves all recipes, optionally excluding specified IDs.
func (r *Repository) List(ctx context.Context, excludeIDs ...string) ([]Recipe, error) {
	if len(excludeIDs) == 0 {
		return r.query(ctx, `SELECT id, data FROM recipes ORDER BY id`)
	}
	args := make([]any, len(excludeIDs))
	for i, id := range excludeIDs {
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT id, data FROM recipes WHERE id NOT IN (%s) ORDER BY id`, placeholders(len(excludeIDs)))
	return r.query(ctx, query, args...)
}

// Count returns the number of recipes in the database.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	return count, nil
}

// DeleteExcept removes every recipe whose ID is not in keep and returns how
// many rows were removed. An empty keep list is refused.
func (r *Repository) DeleteExcept(ctx context.Context, keep []string) (int64, error) {
	if len(keep) == 0 {
		return 0, fmt.Errorf("refusing to delete the whole catalogue")
	}
	args := make([]any, len(keep))
	for i, id := range keep {
		args[i] = id
	}
	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM recipes WHERE id NOT IN (%s)`, placeholders(len(keep))), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale recipes: %w", err)
	}
	return res.RowsAffected()
}

func (r *Repository) query(ctx context.Context, query string, args ...any) ([]Recipe, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []Recipe
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan recipe row: %w", err)
		}
		var rec Recipe
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			// Skip corrupted rows rather than failing the whole catalogue.
			log.Warn().Err(err).Str("recipe_id", id).Msg("failed to unmarshal recipe JSON")
			continue
		}
		recipes = append(recipes, rec)
	}
	return recipes, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
