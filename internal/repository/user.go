package repository

import (
	"context"
	"errors"
	"strings"

	"tekblog/internal/cache"
	"tekblog/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users and credentials.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	CreateWithCredential(ctx context.Context, user *models.User, passwordHash string) error
	Update(ctx context.Context, user *models.User) error
	GetCredential(ctx context.Context, userID uint) (*models.Credential, error)
	UpdateCredential(ctx context.Context, cred *models.Credential) error
	CountRelations(ctx context.Context, user *models.User) error
	LoadMarkedPosts(ctx context.Context, user *models.User) error
	ListFollowSide(ctx context.Context, userID uint, side string) ([]models.User, error)
	SearchGuests(ctx context.Context, q string, page, limit int) ([]models.User, models.PageMeta, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User not found")
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// CreateWithCredential inserts the user and its credential in one
// transaction so a failed credential write cannot leave an account without a
// password.
func (r *userRepository) CreateWithCredential(ctx context.Context, user *models.User, passwordHash string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		cred := models.Credential{UserID: user.ID, Password: passwordHash}
		return tx.Create(&cred).Error
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("User already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("User already exists")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

func (r *userRepository) GetCredential(ctx context.Context, userID uint) (*models.Credential, error) {
	var cred models.Credential
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&cred).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &cred, nil
}

func (r *userRepository) UpdateCredential(ctx context.Context, cred *models.Credential) error {
	if err := r.db.WithContext(ctx).Save(cred).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// CountRelations fills the computed follower/following counters.
func (r *userRepository) CountRelations(ctx context.Context, user *models.User) error {
	var followers, following int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("followee_id = ?", user.ID).Count(&followers).Error; err != nil {
		return models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", user.ID).Count(&following).Error; err != nil {
		return models.NewInternalError(err)
	}
	user.FollowersCount = int(followers)
	user.FollowingCount = int(following)
	return nil
}

// LoadMarkedPosts fills the liked/saved post ID lists for the user's own
// profile view.
func (r *userRepository) LoadMarkedPosts(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ?", user.ID).Order("created_at").
		Pluck("post_id", &user.LikedPostIDs).Error; err != nil {
		return models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Model(&models.Save{}).
		Where("user_id = ?", user.ID).Order("created_at").
		Pluck("post_id", &user.SavedPostIDs).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ListFollowSide returns the users on one side of the follow graph.
// side must be "followers" or "following".
func (r *userRepository) ListFollowSide(ctx context.Context, userID uint, side string) ([]models.User, error) {
	join := r.db.WithContext(ctx).Model(&models.User{}).
		Select("users.id, users.username, users.name, users.avatar, users.bio, users.major")
	switch side {
	case "followers":
		join = join.Joins("JOIN follows ON follows.follower_id = users.id").
			Where("follows.followee_id = ?", userID)
	case "following":
		join = join.Joins("JOIN follows ON follows.followee_id = users.id").
			Where("follows.follower_id = ?", userID)
	default:
		return nil, models.NewValidationError("t must be followers or following")
	}

	var users []models.User
	if err := join.Order("follows.created_at DESC").Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// SearchGuests finds non-admin users whose username or name contains q,
// case-insensitively, with the public profile projection and each user's
// follower count.
func (r *userRepository) SearchGuests(ctx context.Context, q string, page, limit int) ([]models.User, models.PageMeta, error) {
	pattern := "%" + strings.ToLower(q) + "%"
	query := r.db.WithContext(ctx).Model(&models.User{}).
		Select("id, username, name, avatar, bio, major, created_at").
		Where("role = ?", models.RoleGuest).
		Where("LOWER(username) LIKE ? OR LOWER(name) LIKE ?", pattern, pattern)

	var users []models.User
	meta, err := Paginate(query, page, limit, &users)
	if err != nil {
		return nil, models.PageMeta{}, err
	}

	if len(users) > 0 {
		ids := make([]uint, len(users))
		byID := make(map[uint]*models.User, len(users))
		for i := range users {
			ids[i] = users[i].ID
			byID[users[i].ID] = &users[i]
		}

		var counts []struct {
			FolloweeID uint
			N          int
		}
		if err := r.db.WithContext(ctx).Model(&models.Follow{}).
			Select("followee_id, COUNT(*) AS n").
			Where("followee_id IN ?", ids).
			Group("followee_id").
			Scan(&counts).Error; err != nil {
			return nil, models.PageMeta{}, models.NewInternalError(err)
		}
		for _, row := range counts {
			byID[row.FolloweeID].FollowersCount = row.N
		}
	}

	return users, meta, nil
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505; SQLite says "UNIQUE constraint failed"
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
