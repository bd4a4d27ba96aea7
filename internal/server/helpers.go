package server

import (
	"strconv"

	"tekblog/internal/models"

	"github.com/gofiber/fiber/v2"
)

// currentUserID returns the authenticated caller's ID; AuthRequired must
// have run on the route.
func currentUserID(c *fiber.Ctx) uint {
	return c.Locals("userID").(uint)
}

// parseID parses a route or query parameter as an entity ID.
func parseID(raw, name string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewValidationError("Invalid " + name)
	}
	return uint(id), nil
}

// parsePagination reads page and limit from the query string. Missing or
// malformed values silently fall back to the defaults.
func parsePagination(c *fiber.Ctx) (page, limit int) {
	page = 1
	limit = 10
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}
	return page, limit
}
