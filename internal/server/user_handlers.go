package server

import (
	"tekblog/internal/models"
	"tekblog/internal/service"
	"tekblog/internal/validation"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type updateUserRequest struct {
	Username *string `json:"username"`
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Bio      *string `json:"bio"`
	Avatar   *string `json:"avatar"`
	Major    *string `json:"major"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// GetCurrentUser returns the caller's own profile, including the computed
// relationship counters and marked post lists.
func (s *Server) GetCurrentUser(c *fiber.Ctx) error {
	ctx := c.UserContext()
	user, err := s.userRepo.GetByID(ctx, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if err := s.userRepo.CountRelations(ctx, user); err != nil {
		return models.RespondWithError(c, err)
	}
	if err := s.userRepo.LoadMarkedPosts(ctx, user); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "User", user)
}

// UpdateCurrentUser applies a partial profile update. Only changed fields
// are validated; protected fields are rejected by the route's field gate.
func (s *Server) UpdateCurrentUser(c *fiber.Ctx) error {
	var req updateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	ctx := c.UserContext()
	user, err := s.userRepo.GetByID(ctx, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}

	if req.Username != nil {
		if err := validation.Var("Username", *req.Username, "required,min=6,max=20,alphanum"); err != nil {
			return models.RespondWithError(c, err)
		}
		user.Username = *req.Username
	}
	if req.Name != nil {
		if err := validation.Var("Name", *req.Name, "required,min=3,max=50"); err != nil {
			return models.RespondWithError(c, err)
		}
		user.Name = *req.Name
	}
	if req.Email != nil {
		if err := validation.Var("Email", *req.Email, "required,email"); err != nil {
			return models.RespondWithError(c, err)
		}
		if *req.Email != user.Email {
			user.IsEmailVerified = false
		}
		user.Email = *req.Email
	}
	if req.Bio != nil {
		if err := validation.Var("Bio", *req.Bio, "omitempty,min=10,max=200"); err != nil {
			return models.RespondWithError(c, err)
		}
		user.Bio = *req.Bio
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}
	if req.Major != nil {
		user.Major = *req.Major
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "User updated", user)
}

// ChangePassword verifies the old password and stores a fresh hash.
func (s *Server) ChangePassword(c *fiber.Ctx) error {
	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	if err := validation.Struct(req); err != nil {
		return models.RespondWithError(c, err)
	}

	ctx := c.UserContext()
	cred, err := s.userRepo.GetCredential(ctx, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if cred == nil {
		return models.RespondWithError(c,
			models.NewInvalidOperationError("User does not exist"))
	}

	if bcrypt.CompareHashAndPassword([]byte(cred.Password), []byte(req.OldPassword)) != nil {
		return models.RespondWithError(c,
			models.NewInvalidOperationError("Incorrect old password"))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}
	cred.Password = string(hash)
	if err := s.userRepo.UpdateCredential(ctx, cred); err != nil {
		return models.RespondWithError(c, err)
	}

	return models.Respond(c, fiber.StatusOK, "Success", nil)
}

// FollowUser toggles whether the caller follows the target user.
func (s *Server) FollowUser(c *fiber.Ctx) error {
	targetID, err := parseID(c.Params("user_id"), "user_id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	state, err := s.relationships.ToggleFollow(c.UserContext(), currentUserID(c), targetID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	message := "Followed"
	if state == service.ToggleRemoved {
		message = "Unfollowed"
	}
	return models.Respond(c, fiber.StatusOK, message, nil)
}

// GetFollow lists one side of a user's follow graph, selected by the t
// query parameter.
func (s *Server) GetFollow(c *fiber.Ctx) error {
	userID, err := parseID(c.Params("user_id"), "user_id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	t := c.Query("t")
	if t == "" {
		return models.RespondWithError(c, models.NewMissingFieldsError("Missing t"))
	}
	if t != "followers" && t != "following" {
		return models.RespondWithError(c,
			models.NewValidationError("t must be followers or following"))
	}

	ctx := c.UserContext()
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return models.RespondWithError(c, err)
	}

	users, err := s.userRepo.ListFollowSide(ctx, userID, t)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Follow", users)
}

// GetUserByID returns a public profile with relationship counters.
func (s *Server) GetUserByID(c *fiber.Ctx) error {
	userID, err := parseID(c.Params("user_id"), "user_id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	ctx := c.UserContext()
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if err := s.userRepo.CountRelations(ctx, user); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "User", user)
}
