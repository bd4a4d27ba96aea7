package service

import (
	"testing"

	"tekblog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleFollow(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRelationshipService(db)
	alice := seedUser(t, db, "alicefollows")
	bob := seedUser(t, db, "bobfollowed")

	follows := func() int64 {
		var n int64
		require.NoError(t, db.Model(&models.Follow{}).Count(&n).Error)
		return n
	}

	state, err := svc.ToggleFollow(testCtx(), alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, ToggleApplied, state)
	assert.Equal(t, int64(1), follows())

	var edge models.Follow
	require.NoError(t, db.First(&edge).Error)
	assert.Equal(t, alice.ID, edge.FollowerID)
	assert.Equal(t, bob.ID, edge.FolloweeID)

	state, err = svc.ToggleFollow(testCtx(), alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, ToggleRemoved, state)
	assert.Zero(t, follows())

	t.Run("self follow rejected", func(t *testing.T) {
		_, err := svc.ToggleFollow(testCtx(), alice.ID, alice.ID)
		require.Error(t, err)
		assert.Equal(t, "You can not follow yourself", err.Error())
		assert.Zero(t, follows())
	})

	t.Run("target must exist", func(t *testing.T) {
		_, err := svc.ToggleFollow(testCtx(), alice.ID, 9999)
		require.Error(t, err)
		assert.Equal(t, "User not found", err.Error())
	})

	t.Run("directional edges are independent", func(t *testing.T) {
		_, err := svc.ToggleFollow(testCtx(), alice.ID, bob.ID)
		require.NoError(t, err)
		_, err = svc.ToggleFollow(testCtx(), bob.ID, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), follows())
	})
}

func TestToggleLikeAndSave(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRelationshipService(db)
	reader := seedUser(t, db, "likingreader")
	author := seedUser(t, db, "likedauthor")
	post := seedPost(t, db, author, "A post worth liking")

	var likes, saves int64

	state, err := svc.ToggleLike(testCtx(), reader.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, ToggleApplied, state)

	state, err = svc.ToggleSave(testCtx(), reader.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, ToggleApplied, state)

	require.NoError(t, db.Model(&models.Like{}).Count(&likes).Error)
	require.NoError(t, db.Model(&models.Save{}).Count(&saves).Error)
	assert.Equal(t, int64(1), likes)
	assert.Equal(t, int64(1), saves)

	// Unliking leaves the save untouched; the sets are independent.
	state, err = svc.ToggleLike(testCtx(), reader.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, ToggleRemoved, state)

	require.NoError(t, db.Model(&models.Like{}).Count(&likes).Error)
	require.NoError(t, db.Model(&models.Save{}).Count(&saves).Error)
	assert.Zero(t, likes)
	assert.Equal(t, int64(1), saves)

	t.Run("post must exist", func(t *testing.T) {
		_, err := svc.ToggleLike(testCtx(), reader.ID, 9999)
		require.Error(t, err)
		assert.Equal(t, "Post not found", err.Error())
	})
}
