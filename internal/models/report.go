package models

import (
	"time"
)

// ReportObjectType discriminates what a report points at.
type ReportObjectType string

const (
	ReportObjectUser        ReportObjectType = "USER"
	ReportObjectPost        ReportObjectType = "POST"
	ReportObjectComment     ReportObjectType = "COMMENT"
	ReportObjectApplication ReportObjectType = "APPLICATION"
)

// ValidReportObjectType reports whether t belongs to the closed discriminator set.
func ValidReportObjectType(t ReportObjectType) bool {
	switch t {
	case ReportObjectUser, ReportObjectPost, ReportObjectComment, ReportObjectApplication:
		return true
	}
	return false
}

// Report is a user-filed complaint about a user, post, comment, or the
// application itself. The target is a tagged reference: ObjectType names the
// collection, ObjectID the row. APPLICATION reports carry no object.
type Report struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	Title      string           `gorm:"not null" json:"title"`
	Content    string           `gorm:"type:text;not null" json:"content"`
	ObjectType ReportObjectType `gorm:"not null" json:"objectType"`
	ObjectID   *uint            `json:"objectId,omitempty"`
	ReporterID uint             `gorm:"not null;index" json:"reporterId"`
	Reporter   *User            `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`

	// Object is the resolved target preview, filled per kind by the admin
	// listing. Its concrete shape depends on ObjectType.
	Object interface{} `gorm:"-" json:"object,omitempty"`
}
