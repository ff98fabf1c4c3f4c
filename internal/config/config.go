package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const defaultDatabasePath = "data/db/cookdna.db"

// Config holds the configuration for the application.
type Config struct {
	DatabasePath string
	PolicyPath   string

	GhostURL        string
	GhostContentKey string
	GhostAdminKey   string

	// Telegram Config
	TelegramBotToken     string
	TelegramWebhookURL   string
	TelegramAllowUserIDs []int64

	LogLevel  string
	LogFormat string
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	ghostURL := os.Getenv("GHOST_API_URL")
	if ghostURL == "" {
		return nil, fmt.Errorf("GHOST_API_URL environment variable not set")
	}

	ghostContentKey := os.Getenv("GHOST_CONTENT_API_KEY")
	if ghostContentKey == "" {
		return nil, fmt.Errorf("GHOST_CONTENT_API_KEY environment variable not set")
	}

	// Optional. When set, recipes are fetched through the Admin API so drafts
	// tagged for the catalogue are visible too.
	ghostAdminKey := os.Getenv("GHOST_ADMIN_API_KEY")

	databasePath := os.Getenv("DATABASE_PATH")
	if databasePath == "" {
		databasePath = defaultDatabasePath
	}

	allowIDs, err := parseUserIDs(os.Getenv("TELEGRAM_ALLOW_USER_IDS"))
	if err != nil {
		return nil, err
	}

	return &Config{
		DatabasePath:         databasePath,
		PolicyPath:           os.Getenv("POLICY_PATH"),
		GhostURL:             strings.TrimRight(ghostURL, "/"),
		GhostContentKey:      ghostContentKey,
		GhostAdminKey:        ghostAdminKey,
		TelegramBotToken:     os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL:   os.Getenv("TELEGRAM_WEBHOOK_URL"),
		TelegramAllowUserIDs: allowIDs,
		LogLevel:             envOr("LOG_LEVEL", "info"),
		LogFormat:            envOr("LOG_FORMAT", "console"),
	}, nil
}

// IsAllowedUser reports whether a Telegram user may talk to the bot. An empty
// allow list admits everyone.
func (c *Config) IsAllowedUser(id int64) bool {
	if len(c.TelegramAllowUserIDs) == 0 {
		return true
	}
	for _, allowed := range c.TelegramAllowUserIDs {
		if allowed == id {
			return true
		}
	}
	return false
}

func parseUserIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ALLOW_USER_IDS entry %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
