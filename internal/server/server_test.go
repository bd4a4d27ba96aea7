package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"tekblog/internal/config"
	"tekblog/internal/database"
	"tekblog/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// envelope mirrors models.Envelope with raw data for per-test decoding.
type envelope struct {
	Success     bool            `json:"success"`
	Message     string          `json:"message"`
	Code        int             `json:"code"`
	Data        json.RawMessage `json:"data"`
	AccessToken string          `json:"accessToken"`
	Total       *int64          `json:"total"`
	Page        *int            `json:"page"`
	Pages       *int            `json:"pages"`
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestApp(t *testing.T) (*fiber.App, *Server, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	cfg := &config.Config{
		Port:           "0",
		Env:            "test",
		JWTSecret:      "test-secret",
		JWTExpiryHours: 1,
	}
	srv, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupRoutes(app)
	return app, srv, db
}

func createTestUser(t *testing.T, db *gorm.DB, username string, overrides ...func(*models.User)) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Name:     "Test " + username,
		Avatar:   models.DefaultAvatar,
		Role:     models.RoleGuest,
	}
	for _, override := range overrides {
		override(user)
	}
	require.NoError(t, db.Create(user).Error)

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Credential{UserID: user.ID, Password: string(hash)}).Error)
	return user
}

func createTestTag(t *testing.T, db *gorm.DB, title string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Title: title}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

func createTestPost(t *testing.T, db *gorm.DB, author *models.User, title string, tags ...*models.Tag) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:    title,
		Content:  "Content for " + title,
		AuthorID: author.ID,
	}
	require.NoError(t, db.Create(post).Error)
	for i, tag := range tags {
		link := models.PostTag{PostID: post.ID, TagID: tag.ID, Position: i}
		require.NoError(t, db.Create(&link).Error)
	}
	return post
}

func authHeader(t *testing.T, srv *Server, user *models.User) string {
	t.Helper()
	token, err := srv.generateToken(user.ID)
	require.NoError(t, err)
	return "Bearer " + token
}

func doJSON(t *testing.T, app *fiber.App, method, target, auth string, body interface{}) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func TestAuthRequiredRejectsMissingToken(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp, env := doJSON(t, app, http.MethodGet, "/api/user/", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.False(t, env.Success)
	require.Equal(t, "Access denied. No token provided.", env.Message)
}

func TestAdminRequiredRejectsGuests(t *testing.T) {
	app, srv, db := newTestApp(t)
	guest := createTestUser(t, db, "guestone")

	resp, env := doJSON(t, app, http.MethodGet, "/api/admin/report", authHeader(t, srv, guest), nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, "You are not admin.", env.Message)
}

func TestHealthEndpoints(t *testing.T) {
	app, _, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
