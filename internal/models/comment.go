package models

import (
	"time"
)

// Comment represents a comment on a post. One level of threading is allowed:
// a comment may reference a parent, but never a grandparent.
//
// Whether the current viewer liked a comment is derived from CommentLike rows
// per request; a persisted per-viewer flag cannot be correct for more than
// one viewer.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	AuthorID  uint      `gorm:"not null;index" json:"authorId"`
	Author    *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	PostID    uint      `gorm:"not null;index" json:"postId"`
	ParentID  *uint     `gorm:"index" json:"parentId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Computed per query, not persisted.
	Children   []Comment `gorm:"-" json:"children,omitempty"`
	LikesCount int       `gorm:"-" json:"likesCount"`
	Liked      bool      `gorm:"-" json:"liked"`
}

// CommentLike marks that a user liked a comment. The pair is unique, exactly
// like post likes.
type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_clike_user_comment" json:"userId"`
	CommentID uint      `gorm:"not null;uniqueIndex:idx_clike_user_comment" json:"commentId"`
	CreatedAt time.Time `json:"createdAt"`
}
