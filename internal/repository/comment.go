package repository

import (
	"context"
	"errors"

	"tekblog/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository defines persistence operations for comments. The
// denormalized comments_count on the parent post is adjusted inside the same
// transaction as every comment write and is clamped at zero, so it always
// equals the number of live comments except during the write itself.
type CommentRepository interface {
	CreateWithCount(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint, page, limit int, viewerID uint) ([]models.Comment, models.PageMeta, error)
	Update(ctx context.Context, comment *models.Comment) error
	DeleteWithCount(ctx context.Context, comment *models.Comment) error
	ToggleLike(ctx context.Context, userID, commentID uint) (bool, error)
	Decorate(ctx context.Context, comments []*models.Comment, viewerID uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository returns a new CommentRepository implementation.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// CreateWithCount inserts the comment and increments the post's counter in
// one transaction.
func (r *commentRepository) CreateWithCount(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", comment.PostID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + 1")).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment not found")
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

// ListByPost returns top-level comments newest first, each with its children
// and per-viewer liked flag filled in.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint, page, limit int, viewerID uint) ([]models.Comment, models.PageMeta, error) {
	query := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("post_id = ? AND parent_id IS NULL", postID).
		Order("created_at DESC")

	var comments []models.Comment
	meta, err := Paginate(query, page, limit, &comments)
	if err != nil {
		return nil, models.PageMeta{}, err
	}

	ptrs := make([]*models.Comment, len(comments))
	for i := range comments {
		ptrs[i] = &comments[i]
	}
	if err := r.Decorate(ctx, ptrs, viewerID); err != nil {
		return nil, models.PageMeta{}, err
	}
	return comments, meta, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Save(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// DeleteWithCount removes the comment, its children, and their likes, and
// decrements the post counter by the number of rows actually deleted,
// floored at zero.
func (r *commentRepository) DeleteWithCount(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := []uint{comment.ID}
		var childIDs []uint
		if err := tx.Model(&models.Comment{}).Where("parent_id = ?", comment.ID).
			Pluck("id", &childIDs).Error; err != nil {
			return err
		}
		ids = append(ids, childIDs...)

		if err := tx.Where("comment_id IN ?", ids).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}

		res := tx.Where("id IN ?", ids).Delete(&models.Comment{})
		if res.Error != nil {
			return res.Error
		}

		return tx.Model(&models.Post{}).Where("id = ?", comment.PostID).
			UpdateColumn("comments_count",
				gorm.Expr("CASE WHEN comments_count >= ? THEN comments_count - ? ELSE 0 END",
					res.RowsAffected, res.RowsAffected)).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ToggleLike flips the viewer's membership in the comment's liker set.
// Returns true when the like was applied, false when removed. Membership is
// read inside the transaction immediately before mutating so a retried
// toggle cannot double-apply.
func (r *commentRepository) ToggleLike(ctx context.Context, userID, commentID uint) (bool, error) {
	var applied bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.CommentLike
		err := tx.Where("user_id = ? AND comment_id = ?", userID, commentID).
			First(&existing).Error
		switch {
		case err == nil:
			applied = false
			return tx.Delete(&existing).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			applied = true
			like := models.CommentLike{UserID: userID, CommentID: commentID}
			return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error
		default:
			return err
		}
	})
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return applied, nil
}

// Decorate fills children, like tallies, and the viewer's liked flags.
func (r *commentRepository) Decorate(ctx context.Context, comments []*models.Comment, viewerID uint) error {
	if len(comments) == 0 {
		return nil
	}

	ids := make([]uint, len(comments))
	byID := make(map[uint]*models.Comment, len(comments))
	for i, cm := range comments {
		ids[i] = cm.ID
		byID[cm.ID] = cm
	}

	var children []models.Comment
	if err := r.db.WithContext(ctx).
		Where("parent_id IN ?", ids).Order("created_at").
		Find(&children).Error; err != nil {
		return models.NewInternalError(err)
	}
	allIDs := ids
	childPtrs := make(map[uint]*models.Comment, len(children))
	for i := range children {
		child := &children[i]
		allIDs = append(allIDs, child.ID)
		childPtrs[child.ID] = child
	}

	type tally struct {
		CommentID uint
		N         int
	}
	var tallies []tally
	if err := r.db.WithContext(ctx).Model(&models.CommentLike{}).
		Select("comment_id, COUNT(*) AS n").Where("comment_id IN ?", allIDs).
		Group("comment_id").Scan(&tallies).Error; err != nil {
		return models.NewInternalError(err)
	}
	counts := make(map[uint]int, len(tallies))
	for _, t := range tallies {
		counts[t.CommentID] = t.N
	}

	liked := make(map[uint]bool)
	if viewerID != 0 {
		var likedIDs []uint
		if err := r.db.WithContext(ctx).Model(&models.CommentLike{}).
			Where("user_id = ? AND comment_id IN ?", viewerID, allIDs).
			Pluck("comment_id", &likedIDs).Error; err != nil {
			return models.NewInternalError(err)
		}
		for _, id := range likedIDs {
			liked[id] = true
		}
	}

	for i := range children {
		child := &children[i]
		child.LikesCount = counts[child.ID]
		child.Liked = liked[child.ID]
	}
	for _, cm := range comments {
		cm.LikesCount = counts[cm.ID]
		cm.Liked = liked[cm.ID]
	}
	for i := range children {
		child := children[i]
		if parent, ok := byID[*child.ParentID]; ok {
			parent.Children = append(parent.Children, child)
		}
	}

	// Author previews for rendering without a second round-trip per comment.
	var authorIDs []uint
	seen := make(map[uint]bool)
	collect := func(cm *models.Comment) {
		if cm.Author == nil && !seen[cm.AuthorID] {
			seen[cm.AuthorID] = true
			authorIDs = append(authorIDs, cm.AuthorID)
		}
	}
	for _, cm := range comments {
		collect(cm)
		for i := range cm.Children {
			collect(&cm.Children[i])
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
		for _, cm := range comments {
			cm.Author = authorsByID[cm.AuthorID]
			for i := range cm.Children {
				cm.Children[i].Author = authorsByID[cm.Children[i].AuthorID]
			}
		}
	}

	return nil
}
