package shopping

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cookdna/internal/database"
)

// Repository handles persistence of shopping lists.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new shopping list repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Save creates a new shopping list in the database.
func (r *Repository) Save(ctx context.Context, list *ShoppingList) (int64, error) {
	itemsJSON, err := json.Marshal(list.Items)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal shopping list items: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO shopping_lists (user_id, meal_plan_id, items, created_at) VALUES (?, ?, ?, ?)`,
		list.UserID, list.MealPlanID, string(itemsJSON), database.FormatTime(time.Now()))
	if err != nil {
		return 0, fmt.Errorf("failed to insert shopping list: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read shopping list id: %w", err)
	}
	return id, nil
}

// GetByMealPlanID retrieves a shopping list by meal plan ID.
func (r *Repository) GetByMealPlanID(ctx context.Context, mealPlanID string) (*ShoppingList, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, meal_plan_id, items, created_at FROM shopping_lists
		WHERE meal_plan_id = ? ORDER BY id DESC LIMIT 1`, mealPlanID)
	list, err := scanList(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get shopping list by meal plan ID: %w", err)
	}
	return list, nil
}

// GetByUserAndWeek retrieves a shopping list by user ID and week start date.
func (r *Repository) GetByUserAndWeek(ctx context.Context, userID string, weekStart time.Time) (*ShoppingList, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT s.id, s.user_id, s.meal_plan_id, s.items, s.created_at
		FROM shopping_lists s JOIN meal_plans m ON m.id = s.meal_plan_id
		WHERE m.user_id = ? AND m.week_start = ? ORDER BY s.id DESC LIMIT 1`,
		userID, database.FormatTime(weekStart))
	list, err := scanList(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get shopping list by user and week: %w", err)
	}
	return list, nil
}

// DeleteByMealPlanID deletes a shopping list by meal plan ID.
func (r *Repository) DeleteByMealPlanID(ctx context.Context, mealPlanID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM shopping_lists WHERE meal_plan_id = ?`, mealPlanID); err != nil {
		return fmt.Errorf("failed to delete shopping list: %w", err)
	}
	return nil
}

// scanList returns nil, nil when the row does not exist.
func scanList(row *sql.Row) (*ShoppingList, error) {
	var (
		list      ShoppingList
		items     string
		createdAt string
	)
	if err := row.Scan(&list.ID, &list.UserID, &list.MealPlanID, &items, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(items), &list.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shopping list items: %w", err)
	}
	t, err := database.ParseTime(createdAt)
	if err != nil {
		return nil, err
	}
	list.CreatedAt = t
	return &list, nil
}
