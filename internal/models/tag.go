package models

// Tag is a topic label attached to posts. Score is a popularity counter that
// only ever increases; it is bumped each time a post carrying the tag is read.
type Tag struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Title string `gorm:"uniqueIndex;not null" json:"title"`
	Score int64  `gorm:"not null;default:0" json:"score"`

	// Populated by the tags-with-posts preview query only.
	Posts []Post `gorm:"-" json:"posts,omitempty"`
}
