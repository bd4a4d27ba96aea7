package middleware

import (
	"encoding/json"
	"strings"

	"tekblog/internal/models"

	"github.com/gofiber/fiber/v2"
)

// bodyFields parses the request body as a shallow JSON object. A nil map is
// returned for empty or non-object bodies; the gates treat that as "nothing
// present".
func bodyFields(c *fiber.Ctx) map[string]json.RawMessage {
	body := c.Body()
	if len(body) == 0 {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil
	}
	return fields
}

// fieldPresent reports whether the raw JSON value counts as provided.
// Absent, null, "", 0 and false are treated as missing; arrays and objects
// always count as present, even empty ones, so an empty list still has to
// pass the route's own validation rather than being silently dropped here.
func fieldPresent(raw json.RawMessage, ok bool) bool {
	if !ok || len(raw) == 0 {
		return false
	}
	s := strings.TrimSpace(string(raw))
	switch s {
	case "null", `""`, "0", "false":
		return false
	}
	return true
}

// MustHaveFields rejects the request with a MissingFields error when any of
// the named body fields is absent. It runs before validation and before any
// storage lookup.
func MustHaveFields(fields ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := bodyFields(c)
		var missing []string
		for _, field := range fields {
			raw, ok := body[field]
			if !fieldPresent(raw, ok) {
				missing = append(missing, field)
			}
		}
		if len(missing) > 0 {
			return models.RespondWithError(c,
				models.NewMissingFieldsError("Missing fields: "+strings.Join(missing, ", ")))
		}
		return c.Next()
	}
}

// DoNotAllowFields rejects the request when the body tries to write any of
// the named server-owned fields. The disallow-list runs once per route,
// before persistence, so protected fields never reach a repository.
func DoNotAllowFields(fields ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := bodyFields(c)
		for _, field := range fields {
			raw, ok := body[field]
			if fieldPresent(raw, ok) {
				return models.RespondWithError(c,
					models.NewValidationError("Field "+field+" is not allowed"))
			}
		}
		return c.Next()
	}
}
