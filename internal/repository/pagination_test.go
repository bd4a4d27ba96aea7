package repository

import (
	"regexp"
	"testing"

	"tekblog/internal/database"
	"tekblog/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
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

func seedTags(t *testing.T, db *gorm.DB, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, db.Create(&models.Tag{
			Title: "tag" + string(rune('a'+i)),
			Score: int64(n - i),
		}).Error)
	}
}

func TestPaginate(t *testing.T) {
	db := setupTestDB(t)
	seedTags(t, db, 5)

	t.Run("first page", func(t *testing.T) {
		var tags []models.Tag
		meta, err := Paginate(db.Model(&models.Tag{}).Order("score DESC"), 1, 2, &tags)
		require.NoError(t, err)
		assert.Equal(t, int64(5), meta.Total)
		assert.Equal(t, 1, meta.Page)
		assert.Equal(t, 3, meta.Pages)
		require.Len(t, tags, 2)
		assert.Equal(t, int64(5), tags[0].Score)
	})

	t.Run("last page is partial", func(t *testing.T) {
		var tags []models.Tag
		meta, err := Paginate(db.Model(&models.Tag{}).Order("score DESC"), 3, 2, &tags)
		require.NoError(t, err)
		assert.Equal(t, 3, meta.Pages)
		assert.Len(t, tags, 1)
	})

	t.Run("out of range page is empty", func(t *testing.T) {
		var tags []models.Tag
		meta, err := Paginate(db.Model(&models.Tag{}), 10, 2, &tags)
		require.NoError(t, err)
		assert.Empty(t, tags)
		assert.Equal(t, int64(5), meta.Total)
	})

	t.Run("zero values fall back to defaults", func(t *testing.T) {
		var tags []models.Tag
		meta, err := Paginate(db.Model(&models.Tag{}), 0, 0, &tags)
		require.NoError(t, err)
		assert.Equal(t, 1, meta.Page)
		assert.Len(t, tags, 5)
	})

	t.Run("limit is capped", func(t *testing.T) {
		var tags []models.Tag
		meta, err := Paginate(db.Model(&models.Tag{}), 1, 100000, &tags)
		require.NoError(t, err)
		assert.Equal(t, 1, meta.Pages)
	})

	t.Run("empty result still has one page", func(t *testing.T) {
		var tags []models.Tag
		meta, err := Paginate(db.Model(&models.Tag{}).Where("score > ?", 1000), 1, 10, &tags)
		require.NoError(t, err)
		assert.Zero(t, meta.Total)
		assert.Equal(t, 1, meta.Pages)
	})
}

func TestPaginateCountFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}),
		&gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "tags"`)).
		WillReturnError(assert.AnError)

	var tags []models.Tag
	_, err = Paginate(db.Model(&models.Tag{}), 1, 10, &tags)
	require.Error(t, err)

	appErr := models.AsAppError(err)
	assert.Equal(t, models.KindUpstreamFailure, appErr.Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}
