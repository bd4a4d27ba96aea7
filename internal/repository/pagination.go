// Package repository implements the data access layer for the application.
package repository

import (
	"tekblog/internal/models"

	"gorm.io/gorm"
)

const maxPageLimit = 100

// Paginate runs the query twice, once for the total count and once for the
// requested page, and returns engine-provided metadata. Callers never do
// page math themselves.
func Paginate(query *gorm.DB, page, limit int, dest interface{}) (models.PageMeta, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return models.PageMeta{}, models.NewInternalError(err)
	}

	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Find(dest).Error; err != nil {
		return models.PageMeta{}, models.NewInternalError(err)
	}

	pages := int(total) / limit
	if int(total)%limit != 0 || pages == 0 {
		pages++
	}

	return models.PageMeta{Total: total, Page: page, Pages: pages}, nil
}
