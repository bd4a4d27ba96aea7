package server

import (
	"tekblog/internal/models"
	"tekblog/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type createTagRequest struct {
	Title string `json:"title" validate:"required,min=3,max=20"`
}

// CreateTag creates a tag with a zero score. Titles are unique.
func (s *Server) CreateTag(c *fiber.Ctx) error {
	var req createTagRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	if err := validation.Struct(req); err != nil {
		return models.RespondWithError(c, err)
	}

	tag := models.Tag{Title: req.Title}
	if err := s.tagRepo.Create(c.UserContext(), &tag); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, "Tag created", tag)
}

// GetTags lists all tags sorted by score, most popular first.
func (s *Server) GetTags(c *fiber.Ctx) error {
	page, limit := parsePagination(c)
	tags, meta, err := s.tagRepo.ListByScore(c.UserContext(), page, limit)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondPage(c, "All tags", tags, meta)
}

// GetSomeTags returns the top tags, each with a short preview of its posts.
func (s *Server) GetSomeTags(c *fiber.Ctx) error {
	tags, err := s.tagRepo.ListWithTopPosts(c.UserContext(), 5, 3)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Some tags", tags)
}
