package feed

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cookdna/internal/database"

	"github.com/rs/zerolog/log"
)

// CooldownRepository persists per-user cooldowns.
type CooldownRepository struct {
	db *sql.DB
}

// NewCooldownRepository creates a new CooldownRepository.
func NewCooldownRepository(d *sql.DB) *CooldownRepository {
	return &CooldownRepository{db: d}
}

// Save inserts or replaces the cooldown of one recipe for a user.
func (r *CooldownRepository) Save(ctx context.Context, userID, recipeID string, e CooldownEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cooldowns (user_id, recipe_id, reason, rating, cooldown_until) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, recipe_id) DO UPDATE SET
			reason = excluded.reason, rating = excluded.rating, cooldown_until = excluded.cooldown_until`,
		userID, recipeID, string(e.Reason), e.Rating, database.FormatTime(e.Until))
	if err != nil {
		return fmt.Errorf("failed to save cooldown for recipe %s: %w", recipeID, err)
	}
	return nil
}

// List returns every cooldown stored for a user.
func (r *CooldownRepository) List(ctx context.Context, userID string) (Cooldowns, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT recipe_id, reason, rating, cooldown_until FROM cooldowns WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cooldowns: %w", err)
	}
	defer rows.Close()

	out := make(Cooldowns)
	for rows.Next() {
		var (
			recipeID, reason, until string
			rating                  int
		)
		if err := rows.Scan(&recipeID, &reason, &rating, &until); err != nil {
			return nil, fmt.Errorf("failed to scan cooldown row: %w", err)
		}
		parsedReason, err := ParseReason(reason)
		if err != nil {
			log.Warn().Err(err).Str("recipe_id", recipeID).Msg("skipping cooldown with unknown reason")
			continue
		}
		untilTime, err := database.ParseTime(until)
		if err != nil {
			return nil, err
		}
		out[recipeID] = CooldownEntry{Reason: parsedReason, Rating: rating, Until: untilTime}
	}
	return out, rows.Err()
}

// PurgeExpired deletes non-favourite cooldowns that ended before now.
func (r *CooldownRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM cooldowns WHERE reason != ? AND cooldown_until < ?`,
		string(ReasonFavourited), database.FormatTime(now))
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired cooldowns: %w", err)
	}
	return res.RowsAffected()
}
