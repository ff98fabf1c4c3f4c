package personality

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cookdna/internal/database"
)

// Repository persists profiles, engagement counters and cook signals.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// SaveProfile inserts or replaces the profile for a user.
func (r *Repository) SaveProfile(ctx context.Context, userID string, p Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	updatedAt := p.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		userID, string(data), database.FormatTime(updatedAt))
	if err != nil {
		return fmt.Errorf("failed to save profile for user %s: %w", userID, err)
	}
	return nil
}

// GetProfile returns the stored profile, or nil if the user never onboarded.
func (r *Repository) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data FROM profiles WHERE user_id = ?`, userID).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile for user %s: %w", userID, err)
	}

	var p Profile
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile JSON: %w", err)
	}
	return &p, nil
}

// SaveCounters replaces the engagement counters for a user. The profile row must exist.
func (r *Repository) SaveCounters(ctx context.Context, userID string, c Counters) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal counters: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `UPDATE profiles SET counters = ? WHERE user_id = ?`, string(data), userID)
	if err != nil {
		return fmt.Errorf("failed to save counters for user %s: %w", userID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("failed to save counters: no profile for user %s", userID)
	}
	return nil
}

// GetCounters returns the engagement counters for a user (zero if none).
func (r *Repository) GetCounters(ctx context.Context, userID string) (Counters, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT counters FROM profiles WHERE user_id = ?`, userID).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Counters{}, nil
		}
		return Counters{}, fmt.Errorf("failed to get counters for user %s: %w", userID, err)
	}
	var c Counters
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return Counters{}, fmt.Errorf("failed to unmarshal counters JSON: %w", err)
	}
	return c, nil
}

// AppendSignals stores cook signals for a user in one transaction.
func (r *Repository) AppendSignals(ctx context.Context, userID string, signals []CookSignal) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, s := range signals {
		data, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("failed to marshal cook signal: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cook_signals (user_id, recipe_id, data, cooked_at) VALUES (?, ?, ?, ?)`,
			userID, s.RecipeID, string(data), database.FormatTime(s.CookedAt)); err != nil {
			return fmt.Errorf("failed to insert cook signal for recipe %s: %w", s.RecipeID, err)
		}
	}
	return tx.Commit()
}

// ListSignalsSince returns a user's cook signals at or after since, oldest first.
func (r *Repository) ListSignalsSince(ctx context.Context, userID string, since time.Time) ([]CookSignal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT data FROM cook_signals WHERE user_id = ? AND cooked_at >= ? ORDER BY cooked_at, id`,
		userID, database.FormatTime(since))
	if err != nil {
		return nil, fmt.Errorf("failed to list cook signals for user %s: %w", userID, err)
	}
	defer rows.Close()

	var signals []CookSignal
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan cook signal: %w", err)
		}
		var s CookSignal
		if err := json.Unmarshal([]byte(data), &s); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cook signal JSON: %w", err)
		}
		signals = append(signals, s)
	}
	return signals, rows.Err()
}
