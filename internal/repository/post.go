package repository

import (
	"context"
	"errors"
	"strings"

	"tekblog/internal/cache"
	"tekblog/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines persistence operations for posts, their tag links,
// and the computed like/save decorations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post, tagIDs []uint) error
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error)
	ListPublished(ctx context.Context, page, limit int, viewerID uint) ([]models.Post, models.PageMeta, error)
	ListByAuthor(ctx context.Context, authorID uint, page, limit int) ([]models.Post, models.PageMeta, error)
	ListByTag(ctx context.Context, tagID uint, page, limit int) ([]models.Post, models.PageMeta, error)
	Hottest(ctx context.Context) ([]models.Post, error)
	Search(ctx context.Context, q string, page, limit int) ([]models.Post, models.PageMeta, error)
	Update(ctx context.Context, post *models.Post, tagIDs []uint) error
	DeleteCascade(ctx context.Context, post *models.Post) error
	UpdateStatus(ctx context.Context, post *models.Post, status models.ActiveStatus) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository returns a new PostRepository implementation.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// listProjection excludes content and moderation fields from listings so
// responses stay bounded; full content is only served by GetByID.
const listProjection = "id, title, thumbnail, is_draft, author_id, comments_count, created_at, updated_at"

func (r *postRepository) Create(ctx context.Context, post *models.Post, tagIDs []uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		return replaceTagLinks(tx, post.ID, tagIDs)
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// GetByID serves the post row and its author preview cache-aside; the
// tallies and the viewer's own flags are per-request and never cached.
func (r *postRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		if err := r.db.WithContext(ctx).Preload("Author").First(&post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post not found")
			}
			return models.NewInternalError(err)
		}
		if post.Author != nil {
			sanitizeAuthor(post.Author)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := r.decorate(ctx, []*models.Post{&post}, viewerID); err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) ListPublished(ctx context.Context, page, limit int, viewerID uint) ([]models.Post, models.PageMeta, error) {
	query := r.db.WithContext(ctx).Model(&models.Post{}).
		Select(listProjection).
		Where("is_draft = ?", false).
		Order("created_at DESC")
	return r.paginateAndDecorate(ctx, query, page, limit, viewerID)
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint, page, limit int) ([]models.Post, models.PageMeta, error) {
	query := r.db.WithContext(ctx).Model(&models.Post{}).
		Select(listProjection).
		Where("author_id = ?", authorID).
		Order("created_at DESC")
	return r.paginateAndDecorate(ctx, query, page, limit, authorID)
}

func (r *postRepository) ListByTag(ctx context.Context, tagID uint, page, limit int) ([]models.Post, models.PageMeta, error) {
	query := r.db.WithContext(ctx).Model(&models.Post{}).
		Select("posts.id, posts.title, posts.thumbnail, posts.is_draft, posts.author_id, posts.comments_count, posts.created_at, posts.updated_at").
		Joins("JOIN post_tags ON post_tags.post_id = posts.id").
		Where("post_tags.tag_id = ? AND posts.is_draft = ?", tagID, false).
		Order("posts.created_at DESC")
	return r.paginateAndDecorate(ctx, query, page, limit, 0)
}

// Hottest returns the most-liked published post, ties broken by comment
// count and recency.
func (r *postRepository) Hottest(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Select("posts.id, posts.title, posts.thumbnail, posts.is_draft, posts.author_id, posts.comments_count, posts.created_at, posts.updated_at, COUNT(likes.id) AS like_tally").
		Joins("LEFT JOIN likes ON likes.post_id = posts.id").
		Where("posts.is_draft = ?", false).
		Group("posts.id").
		Order("like_tally DESC, posts.comments_count DESC, posts.created_at DESC").
		Limit(1).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.decorateSlice(ctx, posts, 0); err != nil {
		return nil, err
	}
	return posts, nil
}

// Search lists published posts whose title contains q, most-liked first,
// ties broken by recency. The like tally is a correlated subquery rather
// than a join so the query stays ungrouped and paginates cleanly.
func (r *postRepository) Search(ctx context.Context, q string, page, limit int) ([]models.Post, models.PageMeta, error) {
	pattern := "%" + strings.ToLower(q) + "%"
	query := r.db.WithContext(ctx).Model(&models.Post{}).
		Select(listProjection).
		Where("is_draft = ?", false).
		Where("LOWER(title) LIKE ?", pattern).
		Order("(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) DESC, posts.created_at DESC")
	return r.paginateAndDecorate(ctx, query, page, limit, 0)
}

func (r *postRepository) Update(ctx context.Context, post *models.Post, tagIDs []uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(post).Error; err != nil {
			return err
		}
		if tagIDs != nil {
			if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostTag{}).Error; err != nil {
				return err
			}
			return replaceTagLinks(tx, post.ID, tagIDs)
		}
		return nil
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

// DeleteCascade removes the post and everything hanging off it (comments,
// comment likes, post likes, saves, and tag links) in one transaction, so a
// partially-deleted post can never be observed.
func (r *postRepository) DeleteCascade(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var commentIDs []uint
		if err := tx.Model(&models.Comment{}).Where("post_id = ?", post.ID).
			Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if len(commentIDs) > 0 {
			if err := tx.Where("comment_id IN ?", commentIDs).Delete(&models.CommentLike{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Save{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, post.ID).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

func (r *postRepository) UpdateStatus(ctx context.Context, post *models.Post, status models.ActiveStatus) error {
	if err := r.db.WithContext(ctx).Model(post).
		UpdateColumn("active_status", status).Error; err != nil {
		return models.NewInternalError(err)
	}
	post.ActiveStatus = status
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

func (r *postRepository) paginateAndDecorate(ctx context.Context, query *gorm.DB, page, limit int, viewerID uint) ([]models.Post, models.PageMeta, error) {
	var posts []models.Post
	meta, err := Paginate(query, page, limit, &posts)
	if err != nil {
		return nil, models.PageMeta{}, err
	}
	if err := r.decorateSlice(ctx, posts, viewerID); err != nil {
		return nil, models.PageMeta{}, err
	}
	return posts, meta, nil
}

func (r *postRepository) decorateSlice(ctx context.Context, posts []models.Post, viewerID uint) error {
	ptrs := make([]*models.Post, len(posts))
	for i := range posts {
		ptrs[i] = &posts[i]
	}
	return r.decorate(ctx, ptrs, viewerID)
}

// decorate fills the computed fields (like/save tallies, the viewer's
// membership flags, ordered tags, and author previews) with batch queries.
func (r *postRepository) decorate(ctx context.Context, posts []*models.Post, viewerID uint) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]uint, len(posts))
	byID := make(map[uint]*models.Post, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
		byID[p.ID] = p
	}

	type tally struct {
		PostID uint
		N      int
	}

	var likeTallies []tally
	if err := r.db.WithContext(ctx).Model(&models.Like{}).
		Select("post_id, COUNT(*) AS n").Where("post_id IN ?", ids).
		Group("post_id").Scan(&likeTallies).Error; err != nil {
		return models.NewInternalError(err)
	}
	for _, t := range likeTallies {
		byID[t.PostID].LikesCount = t.N
	}

	var saveTallies []tally
	if err := r.db.WithContext(ctx).Model(&models.Save{}).
		Select("post_id, COUNT(*) AS n").Where("post_id IN ?", ids).
		Group("post_id").Scan(&saveTallies).Error; err != nil {
		return models.NewInternalError(err)
	}
	for _, t := range saveTallies {
		byID[t.PostID].SavesCount = t.N
	}

	if viewerID != 0 {
		var likedIDs []uint
		if err := r.db.WithContext(ctx).Model(&models.Like{}).
			Where("user_id = ? AND post_id IN ?", viewerID, ids).
			Pluck("post_id", &likedIDs).Error; err != nil {
			return models.NewInternalError(err)
		}
		for _, id := range likedIDs {
			byID[id].Liked = true
		}

		var savedIDs []uint
		if err := r.db.WithContext(ctx).Model(&models.Save{}).
			Where("user_id = ? AND post_id IN ?", viewerID, ids).
			Pluck("post_id", &savedIDs).Error; err != nil {
			return models.NewInternalError(err)
		}
		for _, id := range savedIDs {
			byID[id].Saved = true
		}
	}

	type taggedRow struct {
		PostID uint
		ID     uint
		Title  string
		Score  int64
	}
	var tagRows []taggedRow
	if err := r.db.WithContext(ctx).Model(&models.PostTag{}).
		Select("post_tags.post_id, tags.id, tags.title, tags.score").
		Joins("JOIN tags ON tags.id = post_tags.tag_id").
		Where("post_tags.post_id IN ?", ids).
		Order("post_tags.post_id, post_tags.position").
		Scan(&tagRows).Error; err != nil {
		return models.NewInternalError(err)
	}
	for _, row := range tagRows {
		post := byID[row.PostID]
		post.Tags = append(post.Tags, models.Tag{ID: row.ID, Title: row.Title, Score: row.Score})
	}

	// Author previews for listings that selected a projection without Preload.
	var authorIDs []uint
	for _, p := range posts {
		if p.Author == nil && p.AuthorID != 0 {
			authorIDs = append(authorIDs, p.AuthorID)
		}
	}
	if len(authorIDs) > 0 {
		var authors []models.User
		if err := r.db.WithContext(ctx).
			Select("id, username, name, avatar").
			Where("id IN ?", authorIDs).Find(&authors).Error; err != nil {
			return models.NewInternalError(err)
		}
		authorsByID := make(map[uint]*models.User, len(authors))
		for i := range authors {
			authorsByID[authors[i].ID] = &authors[i]
		}
		for _, p := range posts {
			if p.Author == nil {
				p.Author = authorsByID[p.AuthorID]
			}
		}
	}

	return nil
}

// sanitizeAuthor trims a preloaded author down to its public preview fields.
func sanitizeAuthor(author *models.User) {
	*author = models.User{
		ID:       author.ID,
		Username: author.Username,
		Name:     author.Name,
		Avatar:   author.Avatar,
	}
}

func replaceTagLinks(tx *gorm.DB, postID uint, tagIDs []uint) error {
	for i, tagID := range tagIDs {
		link := models.PostTag{PostID: postID, TagID: tagID, Position: i}
		if err := tx.Create(&link).Error; err != nil {
			return err
		}
	}
	return nil
}
