package ghost

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cookdna/internal/config"
	"cookdna/internal/recipe"

	"github.com/golang-jwt/jwt/v5"
)

const (
	recipeFilter = "tag:recipe"
	pageSize     = 50
	// maxPages bounds pagination against a misbehaving server.
	maxPages = 200
)

// Post represents a single recipe post from the Ghost API.
type Post struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	HTML      string `json:"html"`
	UpdatedAt string `json:"updated_at"`
}

// ToPostData converts the post into the extractor's input.
func (p Post) ToPostData() recipe.PostData {
	return recipe.PostData{ID: p.ID, Title: p.Title, UpdatedAt: p.UpdatedAt, HTML: p.HTML}
}

type pagination struct {
	Page  int  `json:"page"`
	Pages int  `json:"pages"`
	Next  *int `json:"next"`
}

// PostsResponse is the top-level structure of the Ghost API response for posts.
type PostsResponse struct {
	Posts []Post `json:"posts"`
	Meta  struct {
		Pagination pagination `json:"pagination"`
	} `json:"meta"`
}

// Client is an interface for a Ghost API client.
type Client interface {
	FetchRecipes(ctx context.Context) ([]Post, error)
}

// ghostClient is the concrete implementation of the Ghost API client.
type ghostClient struct {
	httpClient *http.Client
	config     *config.Config
	now        func() time.Time
}

// NewClient creates a new Ghost API client.
func NewClient(cfg *config.Config) Client {
	return &ghostClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		config:     cfg,
		now:        time.Now,
	}
}

// FetchRecipes fetches every post tagged as a recipe, following pagination.
// With an admin key configured the Admin API is used, otherwise the Content API.
func (c *ghostClient) FetchRecipes(ctx context.Context) ([]Post, error) {
	var all []Post
	for page := 1; page <= maxPages; page++ {
		resp, err := c.fetchPage(ctx, page)
		if err != nil {
			return nil, err
		}
		all = append(all, resp.Posts...)
		if resp.Meta.Pagination.Next == nil {
			return all, nil
		}
	}
	return nil, fmt.Errorf("pagination did not end after %d pages", maxPages)
}

func (c *ghostClient) fetchPage(ctx context.Context, page int) (*PostsResponse, error) {
	q := url.Values{}
	q.Set("filter", recipeFilter)
	q.Set("limit", fmt.Sprint(pageSize))
	q.Set("page", fmt.Sprint(page))

	api := "content"
	if c.config.GhostAdminKey != "" {
		api = "admin"
		q.Set("formats", "html")
	} else {
		q.Set("key", c.config.GhostContentKey)
	}
	endpoint := fmt.Sprintf("%s/ghost/api/%s/posts/?%s", c.config.GhostURL, api, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.config.GhostAdminKey != "" {
		token, err := c.createAdminToken()
		if err != nil {
			return nil, fmt.Errorf("failed to create admin token: %w", err)
		}
		req.Header.Set("Authorization", "Ghost "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s api error: status %d", api, resp.StatusCode)
	}

	var postsResponse PostsResponse
	if err := json.NewDecoder(resp.Body).Decode(&postsResponse); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &postsResponse, nil
}

// createAdminToken generates a short-lived JWT for the Admin API.
func (c *ghostClient) createAdminToken() (string, error) {
	keyParts := strings.Split(c.config.GhostAdminKey, ":")
	if len(keyParts) != 2 {
		return "", fmt.Errorf("invalid admin key format: expected id:secret")
	}

	id := keyParts[0]
	secret, err := hex.DecodeString(keyParts[1])
	if err != nil {
		return "", fmt.Errorf("failed to decode secret hex: %w", err)
	}

	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(5 * time.Minute).Unix(),
		"aud": "/admin/",
	})
	token.Header["kid"] = id

	return token.SignedString(secret)
}
