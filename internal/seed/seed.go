// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"tekblog/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is assigned to every seeded account.
const DefaultPassword = "password123"

// Seeder populates the database with generated users, posts, tags, and the
// relationships between them.
type Seeder struct {
	db   *gorm.DB
	rand *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:   db,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll wipes every seeded table. Child tables go first so foreign
// references never dangle mid-cleanup.
func (s *Seeder) ClearAll() error {
	tables := []interface{}{
		&models.CommentLike{},
		&models.Comment{},
		&models.Like{},
		&models.Save{},
		&models.PostTag{},
		&models.Post{},
		&models.Follow{},
		&models.Report{},
		&models.Credential{},
		&models.Tag{},
		&models.User{},
	}
	for _, table := range tables {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
			return fmt.Errorf("clearing %T: %w", table, err)
		}
	}
	log.Println("database cleared")
	return nil
}

// CreateUser builds and persists a user with a credential. Overrides may
// adjust the generated user before saving.
func (s *Seeder) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: gofakeit.LetterN(4) + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Name:     gofakeit.Name(),
		Bio:      gofakeit.Sentence(8),
		Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		Major:    gofakeit.JobTitle(),
		Role:     models.RoleGuest,
	}
	for _, override := range overrides {
		override(user)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return tx.Create(&models.Credential{UserID: user.ID, Password: string(hash)}).Error
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CreateAdmin persists an administrator account.
func (s *Seeder) CreateAdmin(username string) (*models.User, error) {
	return s.CreateUser(func(u *models.User) {
		u.Username = username
		u.Role = models.RoleAdmin
	})
}

// CreateTags persists a fixed set of topic tags and returns them.
func (s *Seeder) CreateTags(titles []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(titles))
	for _, title := range titles {
		tag := models.Tag{Title: title}
		if err := s.db.Create(&tag).Error; err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// CreatePost persists a post by the given author carrying the given tags.
func (s *Seeder) CreatePost(author *models.User, tags []models.Tag, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		Title:     gofakeit.Sentence(6),
		Content:   gofakeit.Paragraph(2, 4, 8, "\n"),
		Thumbnail: fmt.Sprintf("https://picsum.photos/seed/%s/800/400", gofakeit.UUID()),
		AuthorID:  author.ID,
	}
	daysBack := s.rand.Intn(90)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack) * 24 * time.Hour)
	for _, override := range overrides {
		override(post)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		for i, tag := range tags {
			link := models.PostTag{PostID: post.ID, TagID: tag.ID, Position: i}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// SeedAll builds a connected data set: users, tags, posts, follows,
// comments, likes, and saves.
func (s *Seeder) SeedAll(numUsers, numPosts int) error {
	users := make([]*models.User, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		user, err := s.CreateUser()
		if err != nil {
			return fmt.Errorf("seeding users: %w", err)
		}
		users = append(users, user)
	}

	tags, err := s.CreateTags([]string{"golang", "javascript", "databases", "devops", "security", "frontend"})
	if err != nil {
		return fmt.Errorf("seeding tags: %w", err)
	}

	posts := make([]*models.Post, 0, numPosts)
	for i := 0; i < numPosts; i++ {
		author := users[s.rand.Intn(len(users))]
		count := 1 + s.rand.Intn(3)
		picked := make([]models.Tag, 0, count)
		for _, j := range s.rand.Perm(len(tags))[:count] {
			picked = append(picked, tags[j])
		}
		post, err := s.CreatePost(author, picked)
		if err != nil {
			return fmt.Errorf("seeding posts: %w", err)
		}
		posts = append(posts, post)
	}

	if err := s.seedFollows(users); err != nil {
		return fmt.Errorf("seeding follows: %w", err)
	}
	if err := s.seedEngagement(users, posts); err != nil {
		return fmt.Errorf("seeding engagement: %w", err)
	}

	log.Printf("seeded %d users, %d posts, %d tags", len(users), len(posts), len(tags))
	return nil
}

func (s *Seeder) seedFollows(users []*models.User) error {
	for _, follower := range users {
		count := s.rand.Intn(len(users) / 2)
		for _, j := range s.rand.Perm(len(users))[:count] {
			followee := users[j]
			if followee.ID == follower.ID {
				continue
			}
			follow := models.Follow{FollowerID: follower.ID, FolloweeID: followee.ID}
			if err := s.db.Create(&follow).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) seedEngagement(users []*models.User, posts []*models.Post) error {
	for _, post := range posts {
		likers := s.rand.Intn(len(users))
		for _, j := range s.rand.Perm(len(users))[:likers] {
			like := models.Like{UserID: users[j].ID, PostID: post.ID}
			if err := s.db.Create(&like).Error; err != nil {
				return err
			}
		}

		commenters := s.rand.Intn(5)
		for i := 0; i < commenters; i++ {
			author := users[s.rand.Intn(len(users))]
			comment := models.Comment{
				Content:  gofakeit.Sentence(12),
				AuthorID: author.ID,
				PostID:   post.ID,
			}
			err := s.db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Create(&comment).Error; err != nil {
					return err
				}
				return tx.Model(&models.Post{}).Where("id = ?", post.ID).
					UpdateColumn("comments_count", gorm.Expr("comments_count + 1")).Error
			})
			if err != nil {
				return err
			}
		}

		if s.rand.Intn(3) == 0 {
			saver := users[s.rand.Intn(len(users))]
			save := models.Save{UserID: saver.ID, PostID: post.ID}
			if err := s.db.Create(&save).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
