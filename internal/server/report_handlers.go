package server

import (
	"tekblog/internal/models"
	"tekblog/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type createReportRequest struct {
	Title      string                  `json:"title" validate:"required,min=10,max=200"`
	Content    string                  `json:"content" validate:"required,min=10"`
	ObjectType models.ReportObjectType `json:"objectType"`
	Object     *uint                   `json:"object"`
}

// CreateReport files a complaint against a user, post, comment, or the
// application itself. Except for APPLICATION reports, the target must exist
// at filing time.
func (s *Server) CreateReport(c *fiber.Ctx) error {
	var req createReportRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	if err := validation.Struct(req); err != nil {
		return models.RespondWithError(c, err)
	}
	if !models.ValidReportObjectType(req.ObjectType) {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid object type"))
	}

	ctx := c.UserContext()
	report := models.Report{
		Title:      req.Title,
		Content:    req.Content,
		ObjectType: req.ObjectType,
		ReporterID: currentUserID(c),
	}

	if req.ObjectType != models.ReportObjectApplication {
		if req.Object == nil {
			return models.RespondWithError(c,
				models.NewMissingFieldsError("Missing fields: object"))
		}
		exists, err := s.reportRepo.TargetExists(ctx, req.ObjectType, *req.Object)
		if err != nil {
			return models.RespondWithError(c, err)
		}
		if !exists {
			return models.RespondWithError(c,
				models.NewNotFoundError("Report target not found"))
		}
		report.ObjectID = req.Object
	}

	if err := s.reportRepo.Create(ctx, &report); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, "Report created", report)
}
