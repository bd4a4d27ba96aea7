package models

import (
	"time"
)

// DefaultThumbnail is assigned to posts created without a thumbnail.
const DefaultThumbnail = "https://images.unsplash.com/photo-1542831371-29b0f74f9713?ixlib=rb-4.0.3&ixid=M3wxMjA3fDB8MHxzZWFyY2h8M3x8Y29kaW5nfGVufDB8fDB8fHww&w=1000&q=80"

// Post represents a blog post.
//
// CommentsCount is the only persisted denormalized counter; it is adjusted in
// the same transaction as the comment write and clamped at zero. Likes and
// saves are join-table rows (Like, Save) so a toggle is one insert or delete
// and double-counting is impossible.
type Post struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	Title         string       `gorm:"not null" json:"title"`
	Content       string       `gorm:"type:text;not null" json:"content,omitempty"`
	Thumbnail     string       `json:"thumbnail"`
	IsDraft       bool         `gorm:"default:false" json:"isDraft"`
	ActiveStatus  ActiveStatus `gorm:"default:ACTIVE" json:"activeStatus,omitempty"`
	AuthorID      uint         `gorm:"not null;index" json:"authorId"`
	Author        *User        `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CommentsCount int          `gorm:"not null;default:0" json:"commentsCount"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`

	// Computed per query, not persisted.
	Tags       []Tag     `gorm:"-" json:"tags,omitempty"`
	LikesCount int       `gorm:"-" json:"likesCount"`
	SavesCount int       `gorm:"-" json:"savesCount"`
	Liked      bool      `gorm:"-" json:"liked"`
	Saved      bool      `gorm:"-" json:"saved"`
	Comments   []Comment `gorm:"-" json:"comments,omitempty"`
}

// Like marks that a user liked a post. The (UserID, PostID) pair is unique.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_like_user_post" json:"userId"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_like_user_post" json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Save marks that a user saved a post. The (UserID, PostID) pair is unique.
type Save struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_save_user_post" json:"userId"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_save_user_post" json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostTag links a post to a tag, preserving the order tags were submitted in.
type PostTag struct {
	ID       uint `gorm:"primaryKey" json:"-"`
	PostID   uint `gorm:"not null;uniqueIndex:idx_post_tag" json:"postId"`
	TagID    uint `gorm:"not null;uniqueIndex:idx_post_tag;index" json:"tagId"`
	Position int  `gorm:"not null;default:0" json:"position"`
}
