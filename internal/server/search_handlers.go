package server

import (
	"tekblog/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Search runs a unified search over tags, users, or posts.
func (s *Server) Search(c *fiber.Ctx) error {
	page, limit := parsePagination(c)
	data, meta, err := s.search.Search(c.UserContext(), c.Query("type"), c.Query("q"), page, limit)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondPage(c, "Search result", data, meta)
}
