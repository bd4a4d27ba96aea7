// Package service implements the business rules that span multiple entities:
// relationship toggles, moderation transitions, and search composition.
package service

import (
	"context"
	"errors"

	"tekblog/internal/cache"
	"tekblog/internal/models"
	"tekblog/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ToggleState is the resulting state of a toggle operation.
type ToggleState string

const (
	ToggleApplied ToggleState = "applied"
	ToggleRemoved ToggleState = "removed"
)

// RelationshipService maintains the follow graph and the like/save sets.
//
// Every toggle runs in a single transaction and reads current membership
// immediately before mutating, so retrying a toggle after a timeout flips the
// relation at most once per distinct prior state. Each relation is one
// join-table row, which keeps both sides of the bidirectional invariants in
// a single write.
type RelationshipService struct {
	db *gorm.DB
}

// NewRelationshipService returns a new RelationshipService.
func NewRelationshipService(db *gorm.DB) *RelationshipService {
	return &RelationshipService{db: db}
}

// ToggleFollow flips whether actor follows target. Self-follow is rejected
// before any state is touched.
func (s *RelationshipService) ToggleFollow(ctx context.Context, actorID, targetID uint) (ToggleState, error) {
	ctx, span := observability.StartSpan(ctx, "RelationshipService.ToggleFollow")
	defer span.End()

	if actorID == targetID {
		return "", models.NewInvalidOperationError("You can not follow yourself")
	}

	if err := s.requireUser(ctx, targetID); err != nil {
		return "", err
	}

	var state ToggleState
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Follow
		err := tx.Where("follower_id = ? AND followee_id = ?", actorID, targetID).
			First(&existing).Error
		switch {
		case err == nil:
			state = ToggleRemoved
			return tx.Delete(&existing).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			state = ToggleApplied
			follow := models.Follow{FollowerID: actorID, FolloweeID: targetID}
			return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&follow).Error
		default:
			return err
		}
	})
	if err != nil {
		return "", models.NewInternalError(err)
	}

	cache.InvalidateUser(ctx, actorID)
	cache.InvalidateUser(ctx, targetID)
	observability.RelationshipToggles.WithLabelValues("follow", string(state)).Inc()
	return state, nil
}

// ToggleLike flips the actor's membership in the post's liker set.
func (s *RelationshipService) ToggleLike(ctx context.Context, actorID, postID uint) (ToggleState, error) {
	return s.togglePostMark(ctx, actorID, postID, "like")
}

// ToggleSave flips the actor's membership in the post's saver set.
func (s *RelationshipService) ToggleSave(ctx context.Context, actorID, postID uint) (ToggleState, error) {
	return s.togglePostMark(ctx, actorID, postID, "save")
}

func (s *RelationshipService) togglePostMark(ctx context.Context, actorID, postID uint, kind string) (ToggleState, error) {
	ctx, span := observability.StartSpan(ctx, "RelationshipService.TogglePostMark")
	defer span.End()
	span.SetAttributes(attribute.String("toggle.kind", kind))

	if err := s.requirePost(ctx, postID); err != nil {
		return "", err
	}

	var state ToggleState
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if kind == "like" {
			var existing models.Like
			err := tx.Where("user_id = ? AND post_id = ?", actorID, postID).First(&existing).Error
			switch {
			case err == nil:
				state = ToggleRemoved
				return tx.Delete(&existing).Error
			case errors.Is(err, gorm.ErrRecordNotFound):
				state = ToggleApplied
				mark := models.Like{UserID: actorID, PostID: postID}
				return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&mark).Error
			default:
				return err
			}
		}

		var existing models.Save
		err := tx.Where("user_id = ? AND post_id = ?", actorID, postID).First(&existing).Error
		switch {
		case err == nil:
			state = ToggleRemoved
			return tx.Delete(&existing).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			state = ToggleApplied
			mark := models.Save{UserID: actorID, PostID: postID}
			return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&mark).Error
		default:
			return err
		}
	})
	if err != nil {
		return "", models.NewInternalError(err)
	}

	cache.InvalidateUser(ctx, actorID)
	cache.InvalidatePost(ctx, postID)
	observability.RelationshipToggles.WithLabelValues(kind, string(state)).Inc()
	return state, nil
}

func (s *RelationshipService) requireUser(ctx context.Context, id uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).Count(&count).Error; err != nil {
		return models.NewInternalError(err)
	}
	if count == 0 {
		return models.NewNotFoundError("User not found")
	}
	return nil
}

func (s *RelationshipService) requirePost(ctx context.Context, id uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).Count(&count).Error; err != nil {
		return models.NewInternalError(err)
	}
	if count == 0 {
		return models.NewNotFoundError("Post not found")
	}
	return nil
}
