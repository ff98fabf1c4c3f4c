package planner

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cookdna/internal/database"
)

// PlanRepository is a database-backed repository for accepted weekly plans.
type PlanRepository struct {
	db *sql.DB
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(d *sql.DB) *PlanRepository {
	return &PlanRepository{db: d}
}

// Save stores an accepted plan. A plan already stored for the same user and
// week is replaced, together with its shopping list.
func (r *PlanRepository) Save(ctx context.Context, userID string, p WeeklyPlanProposal) error {
	planData, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal meal plan: %w", err)
	}
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	week := database.FormatTime(p.WeekStart)
	if _, err := tx.ExecContext(ctx, `DELETE FROM meal_plans WHERE user_id = ? AND week_start = ?`, userID, week); err != nil {
		return fmt.Errorf("failed to replace meal plan: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO meal_plans (id, user_id, week_start, data, created_at) VALUES (?, ?, ?, ?, ?)`,
		p.ID, userID, week, string(planData), database.FormatTime(createdAt)); err != nil {
		return fmt.Errorf("failed to insert meal plan: %w", err)
	}
	return tx.Commit()
}

// ExistsForWeek reports whether the user already accepted a plan for the week.
func (r *PlanRepository) ExistsForWeek(ctx context.Context, userID string, weekStart time.Time) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM meal_plans WHERE user_id = ? AND week_start = ?`,
		userID, database.FormatTime(weekStart)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check meal plan for week: %w", err)
	}
	return n > 0, nil
}

// GetLatest returns the plan with the most recent week start, or nil.
func (r *PlanRepository) GetLatest(ctx context.Context, userID string) (*WeeklyPlanProposal, error) {
	plans, err := r.ListRecentByUserID(ctx, userID, 1)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, nil
	}
	return &plans[0], nil
}

// Get returns a plan by id, or nil when it does not exist.
func (r *PlanRepository) Get(ctx context.Context, id string) (*WeeklyPlanProposal, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data FROM meal_plans WHERE id = ?`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get meal plan %s: %w", id, err)
	}
	var p WeeklyPlanProposal
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal meal plan: %w", err)
	}
	return &p, nil
}

// ListRecentByUserID retrieves the N most recent meal plans for a given user.
func (r *PlanRepository) ListRecentByUserID(ctx context.Context, userID string, limit int) ([]WeeklyPlanProposal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT data FROM meal_plans WHERE user_id = ? ORDER BY week_start DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent meal plans for user %s: %w", userID, err)
	}
	defer rows.Close()

	var plans []WeeklyPlanProposal
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan meal plan: %w", err)
		}
		var p WeeklyPlanProposal
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal meal plan: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}
