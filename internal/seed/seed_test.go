package seed

import (
	"testing"

	"tekblog/internal/database"
	"tekblog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestCreateUser(t *testing.T) {
	db := setupTestDB(t)
	seeder := NewSeeder(db)

	user, err := seeder.CreateUser()
	require.NoError(t, err)
	assert.NotEmpty(t, user.Username)
	assert.Equal(t, models.RoleGuest, user.Role)

	var cred models.Credential
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&cred).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(cred.Password), []byte(DefaultPassword)))
}

func TestCreateAdmin(t *testing.T) {
	db := setupTestDB(t)
	seeder := NewSeeder(db)

	admin, err := seeder.CreateAdmin("sysadmin")
	require.NoError(t, err)
	assert.Equal(t, "sysadmin", admin.Username)
	assert.Equal(t, models.RoleAdmin, admin.Role)
}

func TestSeedAllAndClearAll(t *testing.T) {
	db := setupTestDB(t)
	seeder := NewSeeder(db)

	require.NoError(t, seeder.SeedAll(6, 10))

	counts := func(model interface{}) int64 {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		return n
	}

	assert.Equal(t, int64(6), counts(&models.User{}))
	assert.Equal(t, int64(10), counts(&models.Post{}))
	assert.Equal(t, int64(6), counts(&models.Tag{}))
	assert.NotZero(t, counts(&models.PostTag{}))
	assert.Equal(t, counts(&models.User{}), counts(&models.Credential{}))

	// Persisted comment counters agree with the comment rows.
	var commentRows int64
	require.NoError(t, db.Model(&models.Comment{}).Count(&commentRows).Error)
	var counterSum int64
	require.NoError(t, db.Model(&models.Post{}).
		Select("COALESCE(SUM(comments_count), 0)").Scan(&counterSum).Error)
	assert.Equal(t, commentRows, counterSum)

	require.NoError(t, seeder.ClearAll())
	assert.Zero(t, counts(&models.User{}))
	assert.Zero(t, counts(&models.Post{}))
	assert.Zero(t, counts(&models.Comment{}))
	assert.Zero(t, counts(&models.Credential{}))
}
