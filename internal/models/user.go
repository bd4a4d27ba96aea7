// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// UserRole distinguishes ordinary accounts from administrators.
type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleGuest UserRole = "GUEST"
)

// ActiveStatus is the moderation lifecycle state shared by users and posts.
// ACTIVE and BLOCKED toggle; REMOVED is terminal.
type ActiveStatus string

const (
	StatusActive  ActiveStatus = "ACTIVE"
	StatusBlocked ActiveStatus = "BLOCKED"
	StatusRemoved ActiveStatus = "REMOVED"
)

// DefaultAvatar is assigned to accounts created without an avatar.
const DefaultAvatar = "https://secure.gravatar.com/avatar/98d6687c39c37e423d5d80b06ffd65e4?d=https%3A%2F%2Favatar-management--avatars.us-west-2.prod.public.atl-paas.net%2Fdefault-avatar-0.png"

// User represents an account on the platform.
//
// Follower/following and liked/saved relationships live in join tables
// (Follow, Like, Save); they are never stored as arrays on the user row, so
// both sides of each relationship are a single record and cannot drift apart.
type User struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	Username        string       `gorm:"uniqueIndex;not null" json:"username"`
	Email           string       `gorm:"uniqueIndex;not null" json:"email"`
	Name            string       `gorm:"not null" json:"name"`
	Bio             string       `json:"bio"`
	Avatar          string       `json:"avatar"`
	Major           string       `json:"major"`
	Role            UserRole     `gorm:"default:GUEST" json:"role"`
	ActiveStatus    ActiveStatus `gorm:"default:ACTIVE" json:"activeStatus"`
	IsEmailVerified bool         `gorm:"default:false" json:"isEmailVerified"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`

	// Computed per query, not persisted.
	FollowersCount int    `gorm:"-" json:"followersCount"`
	FollowingCount int    `gorm:"-" json:"followingCount"`
	LikedPostIDs   []uint `gorm:"-" json:"likedPosts,omitempty"`
	SavedPostIDs   []uint `gorm:"-" json:"savedPosts,omitempty"`
}

// Credential holds the bcrypt password digest for a user. It is created in
// the same transaction as the user at signup and is never serialized.
type Credential struct {
	ID       uint   `gorm:"primaryKey" json:"-"`
	UserID   uint   `gorm:"uniqueIndex;not null" json:"-"`
	Password string `gorm:"not null" json:"-"`
}

// Follow is one edge of the follow graph. A single row encodes both
// "follower follows followee" and "followee is followed by follower".
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_follower_followee" json:"followerId"`
	FolloweeID uint      `gorm:"not null;uniqueIndex:idx_follower_followee" json:"followeeId"`
	CreatedAt  time.Time `json:"createdAt"`
}
