package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromEnv(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		t.Setenv("GHOST_API_URL", "http://ghost.test/")
		t.Setenv("GHOST_CONTENT_API_KEY", "ghost_key")
		t.Setenv("TELEGRAM_ALLOW_USER_IDS", "42, 7")
		t.Setenv("DATABASE_PATH", "")
		t.Setenv("LOG_LEVEL", "debug")

		cfg, err := NewFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "http://ghost.test", cfg.GhostURL)
		assert.Equal(t, "ghost_key", cfg.GhostContentKey)
		assert.Equal(t, defaultDatabasePath, cfg.DatabasePath)
		assert.Equal(t, []int64{42, 7}, cfg.TelegramAllowUserIDs)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.True(t, cfg.IsAllowedUser(7))
		assert.False(t, cfg.IsAllowedUser(8))
	})

	t.Run("MissingGhostURL", func(t *testing.T) {
		t.Setenv("GHOST_CONTENT_API_KEY", "ghost_key")
		os.Unsetenv("GHOST_API_URL")

		_, err := NewFromEnv()
		require.Error(t, err)
		assert.Equal(t, "GHOST_API_URL environment variable not set", err.Error())
	})

	t.Run("MissingGhostAPIKey", func(t *testing.T) {
		t.Setenv("GHOST_API_URL", "http://ghost.test")
		os.Unsetenv("GHOST_CONTENT_API_KEY")

		_, err := NewFromEnv()
		require.Error(t, err)
		assert.Equal(t, "GHOST_CONTENT_API_KEY environment variable not set", err.Error())
	})

	t.Run("BadAllowList", func(t *testing.T) {
		t.Setenv("GHOST_API_URL", "http://ghost.test")
		t.Setenv("GHOST_CONTENT_API_KEY", "ghost_key")
		t.Setenv("TELEGRAM_ALLOW_USER_IDS", "42,abc")

		_, err := NewFromEnv()
		assert.Error(t, err)
	})

	t.Run("EmptyAllowListAdmitsEveryone", func(t *testing.T) {
		cfg := &Config{}
		assert.True(t, cfg.IsAllowedUser(99))
	})
}

func TestLoadPolicy(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		p, err := LoadPolicy("")
		require.NoError(t, err)
		assert.Equal(t, DefaultPolicy(), p)
		assert.Equal(t, 15, p.Breakpoints.Sprint)
		assert.Equal(t, 14, p.Cooldown.DismissedDays)
		assert.Equal(t, 30, p.Feed.BatchSize)
	})

	t.Run("FileOverridesDefaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "policy.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
breakpoints:
  sprint: 20
  quick: 35
  steady: 50
cooldown:
  dismissed_days: 7
feed:
  batch_size: 40
plan:
  servings: 4
`), 0o600))

		p, err := LoadPolicy(path)
		require.NoError(t, err)
		assert.Equal(t, 20, p.Breakpoints.Sprint)
		assert.Equal(t, 7, p.Cooldown.DismissedDays)
		assert.Equal(t, 21, p.Cooldown.CookedHighDays, "unset keys keep defaults")
		assert.Equal(t, 40, p.Feed.BatchSize)
		assert.Equal(t, 3, p.Feed.MaxRecipeRun)
		assert.Equal(t, 4, p.Plan.Servings)
	})

	t.Run("EnvOverride", func(t *testing.T) {
		t.Setenv("PLAN_SERVINGS", "6")
		p, err := LoadPolicy("")
		require.NoError(t, err)
		assert.Equal(t, 6, p.Plan.Servings)
	})

	t.Run("RejectsDescendingBreakpoints", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "policy.yaml")
		require.NoError(t, os.WriteFile(path, []byte("breakpoints: {sprint: 30, quick: 15, steady: 45}\n"), 0o600))
		_, err := LoadPolicy(path)
		assert.ErrorContains(t, err, "invalid policy")
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := LoadPolicy(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
