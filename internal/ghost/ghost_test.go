package ghost

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cookdna/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminSecret = "0123456789abcdef0123456789abcdef"

func TestFetchRecipes(t *testing.T) {
	t.Run("ContentAPIWithPagination", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/ghost/api/content/posts/", r.URL.Path)
			assert.Equal(t, "test_key", r.URL.Query().Get("key"))
			assert.Equal(t, "tag:recipe", r.URL.Query().Get("filter"))
			assert.Empty(t, r.Header.Get("Authorization"))

			w.WriteHeader(http.StatusOK)
			switch r.URL.Query().Get("page") {
			case "1":
				fmt.Fprintln(w, `{
					"posts": [{"id": "1", "title": "Recipe 1", "html": "<h1>Recipe 1</h1>", "updated_at": "2023-10-27T10:00:00Z"}],
					"meta": {"pagination": {"page": 1, "pages": 2, "next": 2}}
				}`)
			default:
				fmt.Fprintln(w, `{
					"posts": [{"id": "2", "title": "Recipe 2", "html": "<h1>Recipe 2</h1>", "updated_at": "2023-10-28T10:00:00Z"}],
					"meta": {"pagination": {"page": 2, "pages": 2, "next": null}}
				}`)
			}
		}))
		defer server.Close()

		client := NewClient(&config.Config{GhostURL: server.URL, GhostContentKey: "test_key"})
		posts, err := client.FetchRecipes(context.Background())
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, "2", posts[1].ID)

		data := posts[0].ToPostData()
		assert.Equal(t, "Recipe 1", data.Title)
		assert.Equal(t, "<h1>Recipe 1</h1>", data.HTML)
	})

	t.Run("AdminAPIUsesJWT", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/ghost/api/admin/posts/", r.URL.Path)
			assert.Empty(t, r.URL.Query().Get("key"))

			raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Ghost ")
			secret, _ := hex.DecodeString(adminSecret)
			token, err := jwt.Parse(raw, func(tok *jwt.Token) (any, error) {
				assert.Equal(t, "key-id", tok.Header["kid"])
				return secret, nil
			}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithAudience("/admin/"))
			if !assert.NoError(t, err) || !assert.True(t, token.Valid) {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			fmt.Fprintln(w, `{"posts": [], "meta": {"pagination": {"page": 1, "pages": 1, "next": null}}}`)
		}))
		defer server.Close()

		client := NewClient(&config.Config{
			GhostURL:        server.URL,
			GhostContentKey: "test_key",
			GhostAdminKey:   "key-id:" + adminSecret,
		})
		posts, err := client.FetchRecipes(context.Background())
		require.NoError(t, err)
		assert.Empty(t, posts)
	})

	t.Run("InvalidAdminKey", func(t *testing.T) {
		client := NewClient(&config.Config{GhostURL: "http://unused", GhostAdminKey: "no-colon"})
		_, err := client.FetchRecipes(context.Background())
		assert.ErrorContains(t, err, "invalid admin key format")
	})

	t.Run("ServerError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewClient(&config.Config{GhostURL: server.URL, GhostContentKey: "test_key"})
		_, err := client.FetchRecipes(context.Background())
		assert.Error(t, err)
	})
}
