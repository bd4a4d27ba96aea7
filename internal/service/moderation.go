package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tekblog/internal/cache"
	"tekblog/internal/mailer"
	"tekblog/internal/models"
	"tekblog/internal/observability"

	"gorm.io/gorm"
)

// ModerationOutcome reports the result of a moderation transition. The
// database state change and the email notification are tracked separately:
// the state change is never rolled back because a mail server was down.
type ModerationOutcome struct {
	Status   models.ActiveStatus
	Notified bool
}

// ModerationService drives the ACTIVE / BLOCKED / REMOVED state machine for
// users and posts. REMOVED is terminal; block is a toggle between ACTIVE and
// BLOCKED; return always lands on ACTIVE.
type ModerationService struct {
	db     *gorm.DB
	mail   mailer.Mailer
	logger *observability.Logger
}

// NewModerationService returns a new ModerationService.
func NewModerationService(db *gorm.DB, mail mailer.Mailer) *ModerationService {
	return &ModerationService{db: db, mail: mail, logger: observability.GlobalLogger}
}

// ToggleBlockUser flips a user between ACTIVE and BLOCKED.
func (s *ModerationService) ToggleBlockUser(ctx context.Context, userID uint) (*ModerationOutcome, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	next, err := toggleBlockTarget(user.ActiveStatus)
	if err != nil {
		return nil, err
	}
	if err := s.setUserStatus(ctx, user, next); err != nil {
		return nil, err
	}
	notified := s.notify(user.Email, statusSubject("account", next),
		fmt.Sprintf("Hi %s, your account has been %s by a moderator.", user.Username, strings.ToLower(string(next))))
	observability.ModerationTransitions.WithLabelValues("user", string(next)).Inc()
	return &ModerationOutcome{Status: next, Notified: notified}, nil
}

// RemoveUser transitions a user to REMOVED. The reason is mailed to the user
// on a best effort basis.
func (s *ModerationService) RemoveUser(ctx context.Context, userID uint, reason string) (*ModerationOutcome, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, models.NewMissingFieldsError("Missing fields: reason")
	}
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.ActiveStatus == models.StatusRemoved {
		return nil, models.NewInvalidOperationError("User is already removed")
	}
	if err := s.setUserStatus(ctx, user, models.StatusRemoved); err != nil {
		return nil, err
	}
	notified := s.notify(user.Email, "Your account has been removed",
		fmt.Sprintf("Hi %s, your account has been removed. Reason: %s", user.Username, reason))
	observability.ModerationTransitions.WithLabelValues("user", string(models.StatusRemoved)).Inc()
	return &ModerationOutcome{Status: models.StatusRemoved, Notified: notified}, nil
}

// ReturnUser transitions a user back to ACTIVE from any state.
func (s *ModerationService) ReturnUser(ctx context.Context, userID uint) (*ModerationOutcome, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.ActiveStatus == models.StatusActive {
		return nil, models.NewInvalidOperationError("User is already active")
	}
	if err := s.setUserStatus(ctx, user, models.StatusActive); err != nil {
		return nil, err
	}
	notified := s.notify(user.Email, "Your account has been restored",
		fmt.Sprintf("Hi %s, your account is active again.", user.Username))
	observability.ModerationTransitions.WithLabelValues("user", string(models.StatusActive)).Inc()
	return &ModerationOutcome{Status: models.StatusActive, Notified: notified}, nil
}

// ToggleBlockPost flips a post between ACTIVE and BLOCKED.
func (s *ModerationService) ToggleBlockPost(ctx context.Context, postID uint) (*ModerationOutcome, error) {
	post, author, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	next, err := toggleBlockTarget(post.ActiveStatus)
	if err != nil {
		return nil, err
	}
	if err := s.setPostStatus(ctx, post, next); err != nil {
		return nil, err
	}
	notified := s.notify(author.Email, statusSubject("post", next),
		fmt.Sprintf("Hi %s, your post %q has been %s by a moderator.", author.Username, post.Title, strings.ToLower(string(next))))
	observability.ModerationTransitions.WithLabelValues("post", string(next)).Inc()
	return &ModerationOutcome{Status: next, Notified: notified}, nil
}

// RemovePost transitions a post to REMOVED with a mandatory reason.
func (s *ModerationService) RemovePost(ctx context.Context, postID uint, reason string) (*ModerationOutcome, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, models.NewMissingFieldsError("Missing fields: reason")
	}
	post, author, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.ActiveStatus == models.StatusRemoved {
		return nil, models.NewInvalidOperationError("Post is already removed")
	}
	if err := s.setPostStatus(ctx, post, models.StatusRemoved); err != nil {
		return nil, err
	}
	notified := s.notify(author.Email, "Your post has been removed",
		fmt.Sprintf("Hi %s, your post %q has been removed. Reason: %s", author.Username, post.Title, reason))
	observability.ModerationTransitions.WithLabelValues("post", string(models.StatusRemoved)).Inc()
	return &ModerationOutcome{Status: models.StatusRemoved, Notified: notified}, nil
}

// ReturnPost transitions a post back to ACTIVE.
func (s *ModerationService) ReturnPost(ctx context.Context, postID uint) (*ModerationOutcome, error) {
	post, author, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.ActiveStatus == models.StatusActive {
		return nil, models.NewInvalidOperationError("Post is already active")
	}
	if err := s.setPostStatus(ctx, post, models.StatusActive); err != nil {
		return nil, err
	}
	notified := s.notify(author.Email, "Your post has been restored",
		fmt.Sprintf("Hi %s, your post %q is active again.", author.Username, post.Title))
	observability.ModerationTransitions.WithLabelValues("post", string(models.StatusActive)).Inc()
	return &ModerationOutcome{Status: models.StatusActive, Notified: notified}, nil
}

func toggleBlockTarget(current models.ActiveStatus) (models.ActiveStatus, error) {
	switch current {
	case models.StatusActive:
		return models.StatusBlocked, nil
	case models.StatusBlocked:
		return models.StatusActive, nil
	default:
		return "", models.NewInvalidOperationError("Removed content can not be blocked")
	}
}

func statusSubject(entity string, status models.ActiveStatus) string {
	if status == models.StatusActive {
		return fmt.Sprintf("Your %s has been unblocked", entity)
	}
	return fmt.Sprintf("Your %s has been blocked", entity)
}

// notify sends the mail and reports whether it went out. A failure is logged
// and counted but never bubbles up as an error.
func (s *ModerationService) notify(to, subject, body string) bool {
	if err := s.mail.Send(to, subject, body); err != nil {
		s.logger.Warn("moderation notification failed", "to", to, "subject", subject, "error", err)
		observability.MailDispatchFailures.WithLabelValues("moderation").Inc()
		return false
	}
	return true
}

func (s *ModerationService) loadUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("User not found")
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (s *ModerationService) loadPost(ctx context.Context, id uint) (*models.Post, *models.User, error) {
	var post models.Post
	err := s.db.WithContext(ctx).First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, models.NewNotFoundError("Post not found")
	}
	if err != nil {
		return nil, nil, models.NewInternalError(err)
	}
	var author models.User
	if err := s.db.WithContext(ctx).First(&author, post.AuthorID).Error; err != nil {
		return nil, nil, models.NewInternalError(err)
	}
	return &post, &author, nil
}

func (s *ModerationService) setUserStatus(ctx context.Context, user *models.User, status models.ActiveStatus) error {
	if err := s.db.WithContext(ctx).Model(user).
		UpdateColumn("active_status", status).Error; err != nil {
		return models.NewInternalError(err)
	}
	user.ActiveStatus = status
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

func (s *ModerationService) setPostStatus(ctx context.Context, post *models.Post, status models.ActiveStatus) error {
	if err := s.db.WithContext(ctx).Model(post).
		UpdateColumn("active_status", status).Error; err != nil {
		return models.NewInternalError(err)
	}
	post.ActiveStatus = status
	cache.InvalidatePost(ctx, post.ID)
	return nil
}
