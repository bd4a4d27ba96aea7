package repository

import (
	"context"
	"strings"

	"tekblog/internal/cache"
	"tekblog/internal/models"

	"gorm.io/gorm"
)

// TagRepository defines persistence operations for tags and their monotonic
// popularity score.
type TagRepository interface {
	Create(ctx context.Context, tag *models.Tag) error
	GetByIDs(ctx context.Context, ids []uint) ([]models.Tag, error)
	ListByScore(ctx context.Context, page, limit int) ([]models.Tag, models.PageMeta, error)
	Search(ctx context.Context, q string, page, limit int) ([]models.Tag, models.PageMeta, error)
	IncrementScores(ctx context.Context, ids []uint) error
	ListWithTopPosts(ctx context.Context, tagCount, postsPerTag int) ([]models.Tag, error)
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository returns a new TagRepository implementation.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) Create(ctx context.Context, tag *models.Tag) error {
	if err := r.db.WithContext(ctx).Create(tag).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Tag already exists")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateTopTags(ctx)
	return nil
}

func (r *tagRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.Tag, error) {
	var tags []models.Tag
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}

func (r *tagRepository) ListByScore(ctx context.Context, page, limit int) ([]models.Tag, models.PageMeta, error) {
	query := r.db.WithContext(ctx).Model(&models.Tag{}).Order("score DESC")
	var tags []models.Tag
	meta, err := Paginate(query, page, limit, &tags)
	if err != nil {
		return nil, models.PageMeta{}, err
	}
	return tags, meta, nil
}

func (r *tagRepository) Search(ctx context.Context, q string, page, limit int) ([]models.Tag, models.PageMeta, error) {
	pattern := "%" + strings.ToLower(q) + "%"
	query := r.db.WithContext(ctx).Model(&models.Tag{}).
		Where("LOWER(title) LIKE ?", pattern).
		Order("score DESC")
	var tags []models.Tag
	meta, err := Paginate(query, page, limit, &tags)
	if err != nil {
		return nil, models.PageMeta{}, err
	}
	return tags, meta, nil
}

// IncrementScores bumps every listed tag's score by one. Scores only ever
// increase; there is no decrement path.
func (r *tagRepository) IncrementScores(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(&models.Tag{}).
		Where("id IN ?", ids).
		UpdateColumn("score", gorm.Expr("score + 1")).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateTopTags(ctx)
	return nil
}

// ListWithTopPosts returns the highest-scoring tags, each carrying a short
// preview of posts that use it. The preview is served cache-aside; tag
// creation and score bumps invalidate it.
func (r *tagRepository) ListWithTopPosts(ctx context.Context, tagCount, postsPerTag int) ([]models.Tag, error) {
	var tags []models.Tag
	err := cache.Aside(ctx, cache.TopTagsKey(tagCount, postsPerTag), &tags, cache.TopTagsTTL, func() error {
		if err := r.db.WithContext(ctx).
			Order("score DESC").Limit(tagCount).Find(&tags).Error; err != nil {
			return models.NewInternalError(err)
		}

		for i := range tags {
			var posts []models.Post
			err := r.db.WithContext(ctx).Model(&models.Post{}).
				Select("posts.id, posts.title, posts.comments_count").
				Joins("JOIN post_tags ON post_tags.post_id = posts.id").
				Where("post_tags.tag_id = ? AND posts.is_draft = ?", tags[i].ID, false).
				Order("posts.comments_count DESC").
				Limit(postsPerTag).
				Find(&posts).Error
			if err != nil {
				return models.NewInternalError(err)
			}
			tags[i].Posts = posts
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}
