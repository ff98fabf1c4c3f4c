package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cookdna/internal/ghost"
	"cookdna/internal/recipe"

	"github.com/rs/zerolog/log"
)

// IngestReport summarises one catalogue sync.
type IngestReport struct {
	Fetched int
	Saved   int
	Skipped int
	Removed int64
}

// IngestRecipes syncs the catalogue with Ghost: every recipe post is parsed,
// tagged and upserted, and recipes whose post disappeared are removed.
func (a *App) IngestRecipes(ctx context.Context) (IngestReport, error) {
	started := time.Now()
	log.Info().Msg("Fetching recipes from Ghost")

	posts, err := a.ghostClient.FetchRecipes(ctx)
	if err != nil {
		return IngestReport{}, fmt.Errorf("failed to fetch recipes from ghost: %w", err)
	}

	report := IngestReport{Fetched: len(posts)}
	keep := make([]string, 0, len(posts))
	for _, post := range posts {
		keep = append(keep, post.ID)
		if err := ProcessAndSaveRecipe(ctx, a.recipeRepo, post); err != nil {
			log.Warn().Err(err).Str("post", post.ID).Str("title", post.Title).Msg("Skipping post")
			report.Skipped++
			continue
		}
		report.Saved++
	}

	if len(keep) > 0 {
		removed, err := a.recipeRepo.DeleteExcept(ctx, keep)
		if err != nil {
			return report, fmt.Errorf("failed to remove stale recipes: %w", err)
		}
		report.Removed = removed
	}

	log.Info().
		Int("fetched", report.Fetched).
		Int("saved", report.Saved).
		Int("skipped", report.Skipped).
		Int64("removed", report.Removed).
		Msg("Ingestion complete")
	a.track(ctx, "ingest_recipes", report.Saved, started)
	return report, nil
}

// ProcessAndSaveRecipe parses one Ghost post into a tagged recipe and upserts it.
func ProcessAndSaveRecipe(ctx context.Context, recipeRepo *recipe.Repository, post ghost.Post) error {
	rec, err := recipe.ParsePost(post.ToPostData())
	if err != nil {
		if errors.Is(err, recipe.ErrNoIngredients) {
			return fmt.Errorf("post is not a recipe: %w", err)
		}
		return fmt.Errorf("failed to extract recipe: %w", err)
	}
	if err := recipeRepo.Save(ctx, rec); err != nil {
		return fmt.Errorf("failed to save recipe: %w", err)
	}
	return nil
}
