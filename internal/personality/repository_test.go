package personality

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"cookdna/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "personality.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.SQL)
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	t.Run("GetProfile-NotFound", func(t *testing.T) {
		p, err := repo.GetProfile(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("SaveAndGetProfile", func(t *testing.T) {
		p := ClassifyFromOnboarding(WeekendWarrior).WithConfidence(0.55)
		p.UpdatedAt = now
		require.NoError(t, repo.SaveProfile(ctx, "u1", p))

		got, err := repo.GetProfile(ctx, "u1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, WeekendWarrior, got.Primary)
		assert.Equal(t, 0.55, got.Confidence)

		p = p.WithConfidence(0.6)
		require.NoError(t, repo.SaveProfile(ctx, "u1", p))
		got, err = repo.GetProfile(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 0.6, got.Confidence)
	})

	t.Run("Counters", func(t *testing.T) {
		c, err := repo.GetCounters(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, Counters{}, c)

		require.NoError(t, repo.SaveCounters(ctx, "u1", Counters{FeedLikes: 3, SocialEvents: 1}))
		c, err = repo.GetCounters(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 3, c.FeedLikes)

		assert.Error(t, repo.SaveCounters(ctx, "nobody", Counters{}))
	})

	t.Run("Signals", func(t *testing.T) {
		signals := []CookSignal{
			cook(20, 30, 5, false, false),
			cook(2, 12, 5, false, true),
			cook(5, 45, 9, true, false),
		}
		require.NoError(t, repo.AppendSignals(ctx, "u1", signals))
		require.NoError(t, repo.AppendSignals(ctx, "u2", signals[:1]))

		got, err := repo.ListSignalsSince(ctx, "u1", now.Add(-14*24*time.Hour))
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, 45, got[0].CookMinutes, "oldest first")
		assert.Equal(t, 12, got[1].CookMinutes)
	})
}
