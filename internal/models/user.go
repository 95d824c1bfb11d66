// Package models contains data structures for the application's domain models.
package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Role is the authorization role of a user.
type Role string

const (
	// RoleUser is the default role.
	RoleUser Role = "user"
	// RoleAdmin grants access to moderation operations.
	RoleAdmin Role = "admin"
)

// DefaultAvatarURL is assigned to accounts created without an avatar.
const DefaultAvatarURL = "https://images.unsplash.com/photo-1535713875002-d1d0cf377fde?w=150&h=150&fit=crop&crop=face"

// User represents an account in the users collection.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"passwordHash"`
	Avatar       string     `json:"avatar"`
	Bio          string     `json:"bio"`
	Website      string     `json:"website,omitempty"`
	Role         Role       `json:"role"`
	Followers    []string   `json:"followers"`
	Following    []string   `json:"following"`
	PostsCount   int        `json:"postsCount"`
	Banned       bool       `json:"banned"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsFollowing reports whether u follows the user with targetID.
func (u *User) IsFollowing(targetID string) bool {
	return slices.Contains(u.Following, targetID)
}

// Snapshot captures the author fields embedded in posts and comments.
func (u *User) Snapshot() AuthorSnapshot {
	return AuthorSnapshot{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
}

// AuthorSnapshot is a denormalized copy of a user frozen at write time.
// It is never re-synced when the user later edits their profile.
type AuthorSnapshot struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// TaggedUser is the snapshot stored for users tagged in a post.
type TaggedUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// NewID returns a new opaque entity identifier.
func NewID() string {
	return uuid.NewString()
}

// AddID appends id to ids unless already present.
func AddID(ids []string, id string) []string {
	if slices.Contains(ids, id) {
		return ids
	}
	return append(ids, id)
}

// RemoveID returns ids without any occurrence of id.
func RemoveID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
