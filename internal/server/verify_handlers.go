package server

import (
	"fmt"

	"tekblog/internal/cache"
	"tekblog/internal/models"
	"tekblog/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SendVerifyEmail issues a fresh verification token for the caller's address
// and mails the confirmation link. The token lives in Redis for 24 hours;
// delivery is fire and forget.
func (s *Server) SendVerifyEmail(c *fiber.Ctx) error {
	ctx := c.UserContext()
	user, err := s.userRepo.GetByID(ctx, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if user.IsEmailVerified {
		return models.RespondWithError(c,
			models.NewInvalidOperationError("Email already verified"))
	}

	token := uuid.NewString()
	if err := cache.SetString(ctx, cache.VerifyTokenKey(user.Email), token, cache.VerifyTokenTTL); err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	link := fmt.Sprintf("%s/api/verify/email?email=%s&token=%s", s.config.BaseURL, user.Email, token)
	body := fmt.Sprintf("Dear %s,\n\nPlease confirm your email via this link:\n\n%s\n\nRegards,\nTekBlog Team", user.Name, link)

	go func(to, body string) {
		if err := s.mail.Send(to, "Verify email for TekBlog account", body); err != nil {
			observability.GlobalLogger.Warn("verification mail failed", "to", to, "error", err)
			observability.MailDispatchFailures.WithLabelValues("verify").Inc()
		}
	}(user.Email, body)

	return models.Respond(c, fiber.StatusOK, "Email sent", nil)
}

// VerifyEmail confirms an address from the mailed link. The token must match
// the one stored for the address and expires with its Redis TTL.
func (s *Server) VerifyEmail(c *fiber.Ctx) error {
	email := c.Query("email")
	token := c.Query("token")
	if email == "" || token == "" {
		return models.RespondWithError(c,
			models.NewMissingFieldsError("Missing fields: email, token"))
	}

	ctx := c.UserContext()
	stored, err := cache.GetString(ctx, cache.VerifyTokenKey(email))
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}
	if stored == "" || stored != token {
		return models.RespondWithError(c, models.NewValidationError(
			"Unable to verify email. Please try again or contact us for support"))
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if user == nil {
		return models.RespondWithError(c,
			models.NewInvalidOperationError("User doesn't exist"))
	}

	user.IsEmailVerified = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return models.RespondWithError(c, err)
	}
	cache.Invalidate(ctx, cache.VerifyTokenKey(email))

	return models.Respond(c, fiber.StatusOK, "Email verified", nil)
}
