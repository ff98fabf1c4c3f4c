package shopping

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"cookdna/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository(t *testing.T) {
	ctx := context.Background()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "shopping.db"))
	require.NoError(t, err)
	defer db.Close()

	week := time.Date(2026, 10, 26, 0, 0, 0, 0, time.UTC)
	_, err = db.SQL.ExecContext(ctx,
		`INSERT INTO meal_plans (id, user_id, week_start, data, created_at) VALUES (?, ?, ?, '{}', ?)`,
		"plan-1", "u1", database.FormatTime(week), database.FormatTime(week))
	require.NoError(t, err)

	repo := NewRepository(db.SQL)
	id, err := repo.Save(ctx, &ShoppingList{UserID: "u1", MealPlanID: "plan-1", Items: []string{"feta", "leek"}})
	require.NoError(t, err)
	assert.Positive(t, id)

	t.Run("ByMealPlan", func(t *testing.T) {
		list, err := repo.GetByMealPlanID(ctx, "plan-1")
		require.NoError(t, err)
		require.NotNil(t, list)
		assert.Equal(t, []string{"feta", "leek"}, list.Items)
		assert.False(t, list.CreatedAt.IsZero())
	})

	t.Run("ByUserAndWeek", func(t *testing.T) {
		list, err := repo.GetByUserAndWeek(ctx, "u1", week)
		require.NoError(t, err)
		require.NotNil(t, list)
		assert.Equal(t, id, list.ID)

		missing, err := repo.GetByUserAndWeek(ctx, "u1", week.AddDate(0, 0, 7))
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("UnknownPlanIsRejected", func(t *testing.T) {
		_, err := repo.Save(ctx, &ShoppingList{UserID: "u1", MealPlanID: "nope"})
		assert.Error(t, err, "foreign key enforced")
	})

	t.Run("CascadeOnPlanDelete", func(t *testing.T) {
		_, err := db.SQL.ExecContext(ctx, `DELETE FROM meal_plans WHERE id = ?`, "plan-1")
		require.NoError(t, err)
		list, err := repo.GetByMealPlanID(ctx, "plan-1")
		require.NoError(t, err)
		assert.Nil(t, list)
	})

	require.NoError(t, repo.DeleteByMealPlanID(ctx, "plan-1"))
}
