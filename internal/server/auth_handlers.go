package server

import (
	"strconv"
	"time"

	"tekblog/internal/models"
	"tekblog/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type signupRequest struct {
	Username string `json:"username" validate:"required,min=6,max=20,alphanum"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Bio      string `json:"bio" validate:"omitempty,min=10,max=200"`
	Avatar   string `json:"avatar"`
	Major    string `json:"major" validate:"required"`
}

type signinRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// generateToken issues an HMAC-signed access token with the user's ID as
// subject.
func (s *Server) generateToken(userID uint) (string, error) {
	expiry := time.Duration(s.config.JWTExpiryHours) * time.Hour
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(expiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// Signup registers a new account. The user and its credential are created in
// one transaction, and every violated validation rule is reported at once.
func (s *Server) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	if err := validation.Struct(req); err != nil {
		return models.RespondWithError(c, err)
	}

	ctx := c.UserContext()
	existing, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if existing != nil {
		return models.RespondWithError(c,
			models.NewInvalidOperationError("User already exists"))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	user := models.User{
		Username: req.Username,
		Email:    req.Email,
		Name:     req.Name,
		Bio:      req.Bio,
		Avatar:   req.Avatar,
		Major:    req.Major,
		Role:     models.RoleGuest,
	}
	if user.Avatar == "" {
		user.Avatar = models.DefaultAvatar
	}

	if err := s.userRepo.CreateWithCredential(ctx, &user, string(hash)); err != nil {
		return models.RespondWithError(c, err)
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	return models.RespondWithToken(c, fiber.StatusOK, "User created", token, user)
}

// Signin authenticates by username and password.
func (s *Server) Signin(c *fiber.Ctx) error {
	var req signinRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	ctx := c.UserContext()
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if user == nil {
		return models.RespondWithError(c,
			models.NewInvalidOperationError("User does not exist"))
	}

	cred, err := s.userRepo.GetCredential(ctx, user.ID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if cred == nil {
		return models.RespondWithError(c,
			models.NewInvalidOperationError("User does not exist"))
	}

	if bcrypt.CompareHashAndPassword([]byte(cred.Password), []byte(req.Password)) != nil {
		return models.RespondWithError(c,
			models.NewInvalidOperationError("Wrong password"))
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	return models.RespondWithToken(c, fiber.StatusOK, "User logged in", token, user)
}
