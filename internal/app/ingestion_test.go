package app

import (
	"context"
	"errors"
	"testing"

	"cookdna/internal/ghost"
	"cookdna/internal/personality"
	"cookdna/internal/recipe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const curryPost = `
<div class="recipe" data-cuisine="Thai" data-total-time="12" data-adventure="2"></div>
<ul class="ingredients">
  <li data-qty="300" data-unit="g">Prawns</li>
  <li>Curry paste</li>
  <li data-staple="true">Oil</li>
</ul>
<ol class="steps"><li>Fry.</li><li>Serve.</li></ol>`

func TestIngestRecipes(t *testing.T) {
	ctx := context.Background()

	t.Run("SyncsCatalogue", func(t *testing.T) {
		client := &mockGhostClient{posts: []ghost.Post{
			{ID: "p1", Title: "Quick Prawn Curry", HTML: curryPost, UpdatedAt: "2026-10-01T10:00:00Z"},
			{ID: "p2", Title: "Kitchen news", HTML: "<p>No recipe here</p>", UpdatedAt: "2026-10-02T10:00:00Z"},
		}}
		a := newTestApp(t, client)
		seed(t, a, recipe.Recipe{ID: "stale", Title: "Gone"})

		report, err := a.IngestRecipes(ctx)
		require.NoError(t, err)
		assert.Equal(t, IngestReport{Fetched: 2, Saved: 1, Skipped: 1, Removed: 1}, report)

		rec, err := a.recipeRepo.Get(ctx, "p1")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, "thai", rec.Cuisine)
		assert.Equal(t, 12, rec.TotalTimeMinutes)
		assert.True(t, rec.Personality.Eligible(personality.ThrillSeeker))

		stale, err := a.recipeRepo.Get(ctx, "stale")
		require.NoError(t, err)
		assert.Nil(t, stale)
	})

	t.Run("Reingestion", func(t *testing.T) {
		client := &mockGhostClient{posts: []ghost.Post{
			{ID: "p1", Title: "Quick Prawn Curry", HTML: curryPost, UpdatedAt: "2026-10-01T10:00:00Z"},
		}}
		a := newTestApp(t, client)

		_, err := a.IngestRecipes(ctx)
		require.NoError(t, err)
		client.posts[0].Title = "Prawn Curry"
		report, err := a.IngestRecipes(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Saved)
		assert.Zero(t, report.Removed)

		n, err := a.recipeRepo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		rec, err := a.recipeRepo.Get(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, "Prawn Curry", rec.Title)
	})

	t.Run("EmptyFetchKeepsCatalogue", func(t *testing.T) {
		a := newTestApp(t, &mockGhostClient{})
		seed(t, a, recipe.Recipe{ID: "keep", Title: "Keep me"})

		report, err := a.IngestRecipes(ctx)
		require.NoError(t, err)
		assert.Zero(t, report.Removed)
		n, err := a.recipeRepo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("GhostError", func(t *testing.T) {
		a := newTestApp(t, &mockGhostClient{err: errors.New("boom")})
		_, err := a.IngestRecipes(ctx)
		assert.ErrorContains(t, err, "boom")
	})
}

func TestProcessAndSaveRecipe(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, &mockGhostClient{})

	err := ProcessAndSaveRecipe(ctx, a.recipeRepo, ghost.Post{ID: "x", HTML: "<p></p>"})
	assert.ErrorIs(t, err, recipe.ErrNoIngredients)

	require.NoError(t, ProcessAndSaveRecipe(ctx, a.recipeRepo, ghost.Post{ID: "y", Title: "Curry", HTML: curryPost}))
	rec, err := a.recipeRepo.Get(ctx, "y")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Len(t, rec.Ingredients, 3)
	assert.Equal(t, []string{"Fry.", "Serve."}, rec.Steps)
}
