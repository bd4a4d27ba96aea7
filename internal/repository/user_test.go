package repository

import (
	"context"
	"testing"

	"tekblog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchGuestsFollowerCounts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := seedGuest(t, db, "devalice")
	bob := seedGuest(t, db, "devbob")
	carol := seedGuest(t, db, "devcarol")

	admin := &models.User{
		Username: "devadmin",
		Email:    "devadmin@example.com",
		Name:     "Test devadmin",
		Role:     models.RoleAdmin,
	}
	require.NoError(t, db.Create(admin).Error)

	require.NoError(t, db.Create(&models.Follow{FollowerID: bob.ID, FolloweeID: alice.ID}).Error)
	require.NoError(t, db.Create(&models.Follow{FollowerID: carol.ID, FolloweeID: alice.ID}).Error)
	require.NoError(t, db.Create(&models.Follow{FollowerID: alice.ID, FolloweeID: bob.ID}).Error)

	users, meta, err := repo.SearchGuests(ctx, "dev", 1, 10)
	require.NoError(t, err)

	assert.Equal(t, int64(3), meta.Total)
	require.Len(t, users, 3)

	byUsername := make(map[string]models.User, len(users))
	for _, u := range users {
		byUsername[u.Username] = u
	}
	assert.NotContains(t, byUsername, "devadmin")
	assert.Equal(t, 2, byUsername["devalice"].FollowersCount)
	assert.Equal(t, 1, byUsername["devbob"].FollowersCount)
	assert.Equal(t, 0, byUsername["devcarol"].FollowersCount)
}
