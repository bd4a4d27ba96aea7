package server

import (
	"tekblog/internal/models"
	"tekblog/internal/service"

	"github.com/gofiber/fiber/v2"
)

type removeRequest struct {
	Reason string `json:"reason"`
}

// moderationMessage picks the response message for a completed transition.
// A failed notification never fails the request; it is surfaced as a
// warning because the state change has already been committed.
func moderationMessage(out *service.ModerationOutcome, applied string) string {
	if !out.Notified {
		return "State changed but notification failed"
	}
	return applied
}

// GetReports lists all reports with their reporter and target previews.
func (s *Server) GetReports(c *fiber.Ctx) error {
	reports, err := s.reportRepo.List(c.UserContext())
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Reports", reports)
}

// GetReport returns a single report by ID.
func (s *Server) GetReport(c *fiber.Ctx) error {
	reportID, err := parseID(c.Params("id"), "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	report, err := s.reportRepo.GetByID(c.UserContext(), reportID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Report", report)
}

// BlockUser toggles a user between ACTIVE and BLOCKED.
func (s *Server) BlockUser(c *fiber.Ctx) error {
	userID, err := parseID(c.Query("user_id"), "user_id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	out, err := s.moderation.ToggleBlockUser(c.UserContext(), userID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	applied := "User blocked"
	if out.Status == models.StatusActive {
		applied = "User unblocked"
	}
	return models.Respond(c, fiber.StatusOK, moderationMessage(out, applied),
		fiber.Map{"activeStatus": out.Status})
}

// BlockPost toggles a post between ACTIVE and BLOCKED.
func (s *Server) BlockPost(c *fiber.Ctx) error {
	postID, err := parseID(c.Query("post_id"), "post_id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	out, err := s.moderation.ToggleBlockPost(c.UserContext(), postID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	applied := "Post blocked"
	if out.Status == models.StatusActive {
		applied = "Post unblocked"
	}
	return models.Respond(c, fiber.StatusOK, moderationMessage(out, applied),
		fiber.Map{"activeStatus": out.Status})
}

// RemoveUser transitions a user to REMOVED with a mandatory reason.
func (s *Server) RemoveUser(c *fiber.Ctx) error {
	userID, err := parseID(c.Query("user_id"), "user_id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var req removeRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	out, err := s.moderation.RemoveUser(c.UserContext(), userID, req.Reason)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, moderationMessage(out, "Success"),
		fiber.Map{"activeStatus": out.Status})
}

// RemovePost transitions a post to REMOVED with a mandatory reason.
func (s *Server) RemovePost(c *fiber.Ctx) error {
	postID, err := parseID(c.Query("post_id"), "post_id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var req removeRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	out, err := s.moderation.RemovePost(c.UserContext(), postID, req.Reason)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, moderationMessage(out, "Success"),
		fiber.Map{"activeStatus": out.Status})
}

// ReturnUser transitions a user back to ACTIVE.
func (s *Server) ReturnUser(c *fiber.Ctx) error {
	userID, err := parseID(c.Query("user_id"), "user_id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	out, err := s.moderation.ReturnUser(c.UserContext(), userID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, moderationMessage(out, "Success"),
		fiber.Map{"activeStatus": out.Status})
}

// ReturnPost transitions a post back to ACTIVE.
func (s *Server) ReturnPost(c *fiber.Ctx) error {
	postID, err := parseID(c.Query("post_id"), "post_id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	out, err := s.moderation.ReturnPost(c.UserContext(), postID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, moderationMessage(out, "Success"),
		fiber.Map{"activeStatus": out.Status})
}
