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

func TestCreatePost(t *testing.T) {
	app, srv, db := newTestApp(t)
	author := createTestUser(t, db, "postauthor")
	tag := createTestTag(t, db, "golang")

	t.Run("creates post with tag links", func(t *testing.T) {
		resp, env := doJSON(t, app, http.MethodPost, "/api/post/", authHeader(t, srv, author),
			map[string]interface{}{
				"title":   "A long enough title",
				"content": "Content that clears the minimum bound",
				"tags":    []uint{tag.ID},
			})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Post created", env.Message)

		var got models.Post
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, models.DefaultThumbnail, got.Thumbnail)

		var links int64
		require.NoError(t, db.Model(&models.PostTag{}).Where("post_id = ?", got.ID).Count(&links).Error)
		assert.Equal(t, int64(1), links)
	})

	t.Run("unknown tag rejected", func(t *testing.T) {
		resp, env := doJSON(t, app, http.MethodPost, "/api/post/", authHeader(t, srv, author),
			map[string]interface{}{
				"title":   "A long enough title",
				"content": "Content that clears the minimum bound",
				"tags":    []uint{777},
			})
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Tags not found", env.Message)
	})

	t.Run("validation bounds", func(t *testing.T) {
		resp, env := doJSON(t, app, http.MethodPost, "/api/post/", authHeader(t, srv, author),
			map[string]interface{}{
				"title":   "short",
				"content": "tiny text of enough length",
				"tags":    []uint{tag.ID},
			})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, env.Message, "Title must be at least 10 characters long")
	})
}

func TestGetPosts(t *testing.T) {
	app, _, db := newTestApp(t)
	author := createTestUser(t, db, "listauthor")
	createTestPost(t, db, author, "Published post number one")
	draft := createTestPost(t, db, author, "A draft post stays hidden")
	require.NoError(t, db.Model(draft).UpdateColumn("is_draft", true).Error)

	resp, env := doJSON(t, app, http.MethodGet, "/api/post/", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var posts []models.Post
	require.NoError(t, json.Unmarshal(env.Data, &posts))
	require.Len(t, posts, 1)
	assert.Equal(t, "Published post number one", posts[0].Title)
	assert.Empty(t, posts[0].Content)
	require.NotNil(t, env.Total)
	assert.Equal(t, int64(1), *env.Total)
}

func TestGetPostIncrementsTagScores(t *testing.T) {
	app, _, db := newTestApp(t)
	author := createTestUser(t, db, "scoreauthor")
	tag := createTestTag(t, db, "vscode")
	post := createTestPost(t, db, author, "Editors and their keybindings", tag)

	for i := 0; i < 2; i++ {
		resp, _ := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/post/%d", post.ID), "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	var got models.Tag
	require.NoError(t, db.First(&got, tag.ID).Error)
	assert.Equal(t, int64(2), got.Score)
}

func TestGetPostDecoration(t *testing.T) {
	app, srv, db := newTestApp(t)
	author := createTestUser(t, db, "decorauthor")
	viewer := createTestUser(t, db, "decorviewer")
	tag := createTestTag(t, db, "frontend")
	post := createTestPost(t, db, author, "Decorated post with viewer", tag)
	require.NoError(t, db.Create(&models.Like{UserID: viewer.ID, PostID: post.ID}).Error)

	resp, env := doJSON(t, app, http.MethodGet,
		fmt.Sprintf("/api/post/%d", post.ID), authHeader(t, srv, viewer), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got models.Post
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, 1, got.LikesCount)
	assert.True(t, got.Liked)
	assert.False(t, got.Saved)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "frontend", got.Tags[0].Title)
	require.NotNil(t, got.Author)
	assert.Equal(t, author.Username, got.Author.Username)
}

func TestGetHotPost(t *testing.T) {
	app, _, db := newTestApp(t)
	author := createTestUser(t, db, "hotauthor")
	fans := []*models.User{
		createTestUser(t, db, "hotfanone"),
		createTestUser(t, db, "hotfantwo"),
	}
	createTestPost(t, db, author, "A post nobody liked yet")
	hot := createTestPost(t, db, author, "The most liked post wins")
	for _, fan := range fans {
		require.NoError(t, db.Create(&models.Like{UserID: fan.ID, PostID: hot.ID}).Error)
	}

	resp, env := doJSON(t, app, http.MethodGet, "/api/post/hot", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var posts []models.Post
	require.NoError(t, json.Unmarshal(env.Data, &posts))
	require.Len(t, posts, 1)
	assert.Equal(t, hot.ID, posts[0].ID)
	assert.Equal(t, 2, posts[0].LikesCount)
}

func TestUpdatePost(t *testing.T) {
	app, srv, db := newTestApp(t)
	author := createTestUser(t, db, "editauthor")
	stranger := createTestUser(t, db, "editstranger")
	tag := createTestTag(t, db, "devops")
	post := createTestPost(t, db, author, "Original title before edit", tag)
	target := fmt.Sprintf("/api/post/%d", post.ID)

	t.Run("stranger forbidden", func(t *testing.T) {
		resp, env := doJSON(t, app, http.MethodPut, target, authHeader(t, srv, stranger),
			map[string]interface{}{"title": "Hijacked title attempt"})
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "You are not the author of this post", env.Message)
	})

	t.Run("owner updates", func(t *testing.T) {
		resp, env := doJSON(t, app, http.MethodPut, target, authHeader(t, srv, author),
			map[string]interface{}{"title": "Updated title after edit"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Post updated", env.Message)

		var got models.Post
		require.NoError(t, db.First(&got, post.ID).Error)
		assert.Equal(t, "Updated title after edit", got.Title)
	})

	t.Run("protected fields rejected", func(t *testing.T) {
		resp, env := doJSON(t, app, http.MethodPut, target, authHeader(t, srv, author),
			map[string]interface{}{"likes": 100})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, env.Message, "not allowed")
	})
}

func TestDeletePostCascades(t *testing.T) {
	app, srv, db := newTestApp(t)
	author := createTestUser(t, db, "delauthor")
	fan := createTestUser(t, db, "delfan")
	tag := createTestTag(t, db, "security")
	post := createTestPost(t, db, author, "Post scheduled for deletion", tag)

	comment := models.Comment{Content: "a comment", AuthorID: fan.ID, PostID: post.ID}
	require.NoError(t, db.Create(&comment).Error)
	require.NoError(t, db.Create(&models.CommentLike{UserID: author.ID, CommentID: comment.ID}).Error)
	require.NoError(t, db.Create(&models.Like{UserID: fan.ID, PostID: post.ID}).Error)
	require.NoError(t, db.Create(&models.Save{UserID: fan.ID, PostID: post.ID}).Error)

	resp, env := doJSON(t, app, http.MethodDelete,
		fmt.Sprintf("/api/post/%d", post.ID), authHeader(t, srv, author), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Post deleted", env.Message)

	for _, check := range []struct {
		name  string
		model interface{}
	}{
		{"posts", &models.Post{}},
		{"comments", &models.Comment{}},
		{"comment likes", &models.CommentLike{}},
		{"likes", &models.Like{}},
		{"saves", &models.Save{}},
		{"tag links", &models.PostTag{}},
	} {
		var n int64
		require.NoError(t, db.Model(check.model).Count(&n).Error)
		assert.Zero(t, n, "%s should be empty", check.name)
	}
}

func TestLikeAndSaveToggles(t *testing.T) {
	app, srv, db := newTestApp(t)
	author := createTestUser(t, db, "toggleauthor")
	fan := createTestUser(t, db, "togglefan")
	post := createTestPost(t, db, author, "A post to like and save")
	auth := authHeader(t, srv, fan)

	likeURL := fmt.Sprintf("/api/post/like?post_id=%d", post.ID)
	saveURL := fmt.Sprintf("/api/post/save?post_id=%d", post.ID)

	countRows := func(model interface{}) int64 {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		return n
	}

	_, env := doJSON(t, app, http.MethodPut, likeURL, auth, nil)
	assert.Equal(t, "Post liked", env.Message)
	assert.Equal(t, int64(1), countRows(&models.Like{}))

	_, env = doJSON(t, app, http.MethodPut, likeURL, auth, nil)
	assert.Equal(t, "Post unliked", env.Message)
	assert.Equal(t, int64(0), countRows(&models.Like{}))

	_, env = doJSON(t, app, http.MethodPut, saveURL, auth, nil)
	assert.Equal(t, "Post saved", env.Message)
	assert.Equal(t, int64(1), countRows(&models.Save{}))

	_, env = doJSON(t, app, http.MethodPut, saveURL, auth, nil)
	assert.Equal(t, "Post unsaved", env.Message)
	assert.Equal(t, int64(0), countRows(&models.Save{}))

	resp, env := doJSON(t, app, http.MethodPut, "/api/post/like?post_id=31337", auth, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Post not found", env.Message)
}

func TestGetPostsByTag(t *testing.T) {
	app, _, db := newTestApp(t)
	author := createTestUser(t, db, "tagfeedauthor")
	tag := createTestTag(t, db, "databases")
	other := createTestTag(t, db, "javascript")
	tagged := createTestPost(t, db, author, "Post carrying the right tag", tag)
	createTestPost(t, db, author, "Post carrying another tag", other)

	resp, env := doJSON(t, app, http.MethodGet,
		fmt.Sprintf("/api/post/tag?tag_id=%d", tag.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var posts []models.Post
	require.NoError(t, json.Unmarshal(env.Data, &posts))
	require.Len(t, posts, 1)
	assert.Equal(t, tagged.ID, posts[0].ID)
}
