package repository

import (
	"context"
	"errors"

	"tekblog/internal/models"

	"gorm.io/gorm"
)

// ReportRepository defines persistence operations for moderation reports and
// resolves their polymorphic targets through a per-kind lookup.
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	List(ctx context.Context) ([]models.Report, error)
	GetByID(ctx context.Context, id uint) (*models.Report, error)
	TargetExists(ctx context.Context, objectType models.ReportObjectType, id uint) (bool, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository returns a new ReportRepository implementation.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *reportRepository) List(ctx context.Context) ([]models.Report, error) {
	var reports []models.Report
	if err := r.db.WithContext(ctx).
		Preload("Reporter").
		Order("created_at DESC").
		Find(&reports).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for i := range reports {
		if reports[i].Reporter != nil {
			sanitizeAuthor(reports[i].Reporter)
		}
		if err := r.resolveObject(ctx, &reports[i]); err != nil {
			return nil, err
		}
	}
	return reports, nil
}

func (r *reportRepository) GetByID(ctx context.Context, id uint) (*models.Report, error) {
	var report models.Report
	if err := r.db.WithContext(ctx).Preload("Reporter").First(&report, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Report not found")
		}
		return nil, models.NewInternalError(err)
	}
	if report.Reporter != nil {
		sanitizeAuthor(report.Reporter)
	}
	if err := r.resolveObject(ctx, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// TargetExists checks the referenced row in the collection named by the
// discriminator. APPLICATION reports have no target and always pass.
func (r *reportRepository) TargetExists(ctx context.Context, objectType models.ReportObjectType, id uint) (bool, error) {
	model, ok := targetModel(objectType)
	if !ok {
		return true, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// resolveObject fills the report's target preview per kind. A dangling
// reference (target deleted after reporting) leaves Object nil rather than
// failing the listing.
func (r *reportRepository) resolveObject(ctx context.Context, report *models.Report) error {
	if report.ObjectID == nil {
		return nil
	}

	switch report.ObjectType {
	case models.ReportObjectUser:
		var user models.User
		if err := r.db.WithContext(ctx).
			Select("id, username, name, avatar").
			First(&user, *report.ObjectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return models.NewInternalError(err)
		}
		report.Object = user
	case models.ReportObjectPost:
		var post models.Post
		if err := r.db.WithContext(ctx).
			Select("id, title, author_id").
			First(&post, *report.ObjectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return models.NewInternalError(err)
		}
		report.Object = post
	case models.ReportObjectComment:
		var comment models.Comment
		if err := r.db.WithContext(ctx).
			Select("id, content, author_id, post_id").
			First(&comment, *report.ObjectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return models.NewInternalError(err)
		}
		report.Object = comment
	}
	return nil
}

func targetModel(objectType models.ReportObjectType) (interface{}, bool) {
	switch objectType {
	case models.ReportObjectUser:
		return &models.User{}, true
	case models.ReportObjectPost:
		return &models.Post{}, true
	case models.ReportObjectComment:
		return &models.Comment{}, true
	default:
		return nil, false
	}
}
