package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"tekblog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	app, _, db := newTestApp(t)
	author := createTestUser(t, db, "searchauthor")
	createTestUser(t, db, "searchadmin", func(u *models.User) { u.Role = models.RoleAdmin })
	createTestPost(t, db, author, "Debugging Go services in production")

	vscode := createTestTag(t, db, "vscode")
	createTestTag(t, db, "vim")
	require.NoError(t, db.Model(vscode).Update("score", 3).Error)

	t.Run("tags by substring", func(t *testing.T) {
		resp, env := doJSON(t, app, http.MethodGet, "/api/search?type=tag&q=VSC", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Search result", env.Message)

		var tags []models.Tag
		require.NoError(t, json.Unmarshal(env.Data, &tags))
		require.Len(t, tags, 1)
		assert.Equal(t, "vscode", tags[0].Title)
	})

	t.Run("users excludes admins", func(t *testing.T) {
		resp, env := doJSON(t, app, http.MethodGet, "/api/search?type=user&q=search", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var users []models.User
		require.NoError(t, json.Unmarshal(env.Data, &users))
		require.Len(t, users, 1)
		assert.Equal(t, "searchauthor", users[0].Username)
	})

	t.Run("posts by title", func(t *testing.T) {
		resp, env := doJSON(t, app, http.MethodGet, "/api/search?type=post&q=debugging", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var posts []models.Post
		require.NoError(t, json.Unmarshal(env.Data, &posts))
		require.Len(t, posts, 1)
		assert.Equal(t, "Debugging Go services in production", posts[0].Title)
	})

	t.Run("no match yields empty page", func(t *testing.T) {
		resp, env := doJSON(t, app, http.MethodGet, "/api/search?type=tag&q=zzz", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.NotNil(t, env.Total)
		assert.Zero(t, *env.Total)
	})

	t.Run("unknown type rejected", func(t *testing.T) {
		resp, env := doJSON(t, app, http.MethodGet, "/api/search?type=everything&q=go", "", nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid type", env.Message)
	})
}
