package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"tekblog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCurrentUser(t *testing.T) {
	app, srv, db := newTestApp(t)
	user := createTestUser(t, db, "profileuser")
	other := createTestUser(t, db, "otheruser")
	post := createTestPost(t, db, other, "A post about databases")

	require.NoError(t, db.Create(&models.Follow{FollowerID: other.ID, FolloweeID: user.ID}).Error)
	require.NoError(t, db.Create(&models.Like{UserID: user.ID, PostID: post.ID}).Error)

	resp, env := doJSON(t, app, http.MethodGet, "/api/user/", authHeader(t, srv, user), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got models.User
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, user.Username, got.Username)
	assert.Equal(t, 1, got.FollowersCount)
	assert.Equal(t, 0, got.FollowingCount)
	assert.Equal(t, []uint{post.ID}, got.LikedPostIDs)
}

func TestUpdateCurrentUser(t *testing.T) {
	app, srv, db := newTestApp(t)
	user := createTestUser(t, db, "updateuser")

	t.Run("updates allowed fields", func(t *testing.T) {
		resp, env := doJSON(t, app, http.MethodPut, "/api/user/", authHeader(t, srv, user),
			map[string]interface{}{"name": "Renamed User", "bio": "A bio long enough to pass"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "User updated", env.Message)

		var got models.User
		require.NoError(t, db.First(&got, user.ID).Error)
		assert.Equal(t, "Renamed User", got.Name)
	})

	t.Run("rejects protected fields", func(t *testing.T) {
		resp, env := doJSON(t, app, http.MethodPut, "/api/user/", authHeader(t, srv, user),
			map[string]interface{}{"role": "ADMIN"})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, env.Message, "not allowed")

		var got models.User
		require.NoError(t, db.First(&got, user.ID).Error)
		assert.Equal(t, models.RoleGuest, got.Role)
	})

	t.Run("validates changed fields", func(t *testing.T) {
		resp, env := doJSON(t, app, http.MethodPut, "/api/user/", authHeader(t, srv, user),
			map[string]interface{}{"username": "ab"})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, env.Message, "Username must be at least 6 characters long")
	})
}

func TestChangePassword(t *testing.T) {
	app, srv, db := newTestApp(t)
	user := createTestUser(t, db, "passuser")

	t.Run("wrong old password", func(t *testing.T) {
		resp, env := doJSON(t, app, http.MethodPut, "/api/user/change-password", authHeader(t, srv, user),
			map[string]interface{}{"oldPassword": "nope", "newPassword": "fresh-secret"})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Incorrect old password", env.Message)
	})

	t.Run("success rehashes", func(t *testing.T) {
		resp, env := doJSON(t, app, http.MethodPut, "/api/user/change-password", authHeader(t, srv, user),
			map[string]interface{}{"oldPassword": "password123", "newPassword": "fresh-secret"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Success", env.Message)

		resp, _ = doJSON(t, app, http.MethodPost, "/api/auth/signin", "",
			map[string]interface{}{"username": "passuser", "password": "fresh-secret"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestFollowToggle(t *testing.T) {
	app, srv, db := newTestApp(t)
	alice := createTestUser(t, db, "alicewrites")
	bob := createTestUser(t, db, "bobreads")
	target := fmt.Sprintf("/api/user/%d/follow", bob.ID)

	countFollows := func() int64 {
		var n int64
		require.NoError(t, db.Model(&models.Follow{}).Count(&n).Error)
		return n
	}

	t.Run("first toggle follows", func(t *testing.T) {
		resp, env := doJSON(t, app, http.MethodPut, target, authHeader(t, srv, alice), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Followed", env.Message)
		assert.Equal(t, int64(1), countFollows())
	})

	t.Run("second toggle unfollows", func(t *testing.T) {
		resp, env := doJSON(t, app, http.MethodPut, target, authHeader(t, srv, alice), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Unfollowed", env.Message)
		assert.Equal(t, int64(0), countFollows())
	})

	t.Run("self follow never mutates", func(t *testing.T) {
		self := fmt.Sprintf("/api/user/%d/follow", alice.ID)
		resp, env := doJSON(t, app, http.MethodPut, self, authHeader(t, srv, alice), nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "You can not follow yourself", env.Message)
		assert.Equal(t, int64(0), countFollows())
	})

	t.Run("unknown target", func(t *testing.T) {
		resp, env := doJSON(t, app, http.MethodPut, "/api/user/99999/follow", authHeader(t, srv, alice), nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "User not found", env.Message)
	})
}

func TestGetFollow(t *testing.T) {
	app, srv, db := newTestApp(t)
	alice := createTestUser(t, db, "alicelist")
	bob := createTestUser(t, db, "boblist")
	require.NoError(t, db.Create(&models.Follow{FollowerID: bob.ID, FolloweeID: alice.ID}).Error)

	t.Run("missing t", func(t *testing.T) {
		resp, env := doJSON(t, app, http.MethodGet,
			fmt.Sprintf("/api/user/%d/follow", alice.ID), authHeader(t, srv, alice), nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Missing t", env.Message)
	})

	t.Run("invalid t", func(t *testing.T) {
		resp, env := doJSON(t, app, http.MethodGet,
			fmt.Sprintf("/api/user/%d/follow?t=friends", alice.ID), "", nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "t must be followers or following", env.Message)
	})

	t.Run("lists followers", func(t *testing.T) {
		resp, env := doJSON(t, app, http.MethodGet,
			fmt.Sprintf("/api/user/%d/follow?t=followers", alice.ID), "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var followers []models.User
		require.NoError(t, json.Unmarshal(env.Data, &followers))
		require.Len(t, followers, 1)
		assert.Equal(t, bob.Username, followers[0].Username)
	})

	t.Run("lists following", func(t *testing.T) {
		resp, env := doJSON(t, app, http.MethodGet,
			fmt.Sprintf("/api/user/%d/follow?t=following", bob.ID), "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var following []models.User
		require.NoError(t, json.Unmarshal(env.Data, &following))
		require.Len(t, following, 1)
		assert.Equal(t, alice.Username, following[0].Username)
	})
}

func TestGetUserByID(t *testing.T) {
	app, _, db := newTestApp(t)
	user := createTestUser(t, db, "publicuser")

	resp, env := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/user/%d", user.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got models.User
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, user.Username, got.Username)

	resp, env = doJSON(t, app, http.MethodGet, "/api/user/424242", "", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "User not found", env.Message)
}
