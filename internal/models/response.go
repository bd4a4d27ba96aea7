package models

import (
	"github.com/gofiber/fiber/v2"
)

// Envelope is the response body shape shared by every endpoint.
type Envelope struct {
	Success     bool        `json:"success"`
	Message     string      `json:"message"`
	Code        int         `json:"code"`
	Data        interface{} `json:"data,omitempty"`
	AccessToken string      `json:"accessToken,omitempty"`

	// Pagination metadata, present on listing responses only.
	Total *int64 `json:"total,omitempty"`
	Page  *int   `json:"page,omitempty"`
	Pages *int   `json:"pages,omitempty"`
}

// PageMeta carries engine-provided pagination metadata alongside a page of
// documents.
type PageMeta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
}

// Respond writes a success envelope with the given status, message, and data.
func Respond(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(Envelope{
		Success: true,
		Message: message,
		Code:    status,
		Data:    data,
	})
}

// RespondWithToken writes a success envelope that additionally carries an
// access token.
func RespondWithToken(c *fiber.Ctx, status int, message, token string, data interface{}) error {
	return c.Status(status).JSON(Envelope{
		Success:     true,
		Message:     message,
		Code:        status,
		Data:        data,
		AccessToken: token,
	})
}

// RespondPage writes a success envelope for a paginated listing.
func RespondPage(c *fiber.Ctx, message string, data interface{}, meta PageMeta) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{
		Success: true,
		Message: message,
		Code:    fiber.StatusOK,
		Data:    data,
		Total:   &meta.Total,
		Page:    &meta.Page,
		Pages:   &meta.Pages,
	})
}

// RespondWithError translates err into the response envelope. Business-rule
// failures carry their mapped status; anything else surfaces as a 500 with
// the raw error text.
func RespondWithError(c *fiber.Ctx, err error) error {
	appErr := AsAppError(err)
	return c.Status(appErr.Status()).JSON(Envelope{
		Success: false,
		Message: appErr.Message,
		Code:    appErr.Status(),
	})
}
