package models

import (
	"slices"
	"time"
)

// MediaType describes the kind of media attached to a post or message.
type MediaType string

const (
	MediaNone  MediaType = ""
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// Media limits per post.
const (
	MaxPostImages = 5
	MaxPostVideos = 1
)

// Post represents an entry in the posts collection. Comments are embedded.
type Post struct {
	ID          string         `json:"id"`
	Author      AuthorSnapshot `json:"author"`
	Caption     string         `json:"caption"`
	MediaURLs   []string       `json:"mediaUrls"`
	MediaType   MediaType      `json:"mediaType"`
	Likes       []string       `json:"likes"`
	Comments    []Comment      `json:"comments"`
	TaggedUsers []TaggedUser   `json:"taggedUsers"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   *time.Time     `json:"updatedAt,omitempty"`
}

// LikedBy reports whether userID has liked the post.
func (p *Post) LikedBy(userID string) bool {
	return slices.Contains(p.Likes, userID)
}

// Engagement is the likes+comments count used by the trending sort.
func (p *Post) Engagement() int {
	return len(p.Likes) + len(p.Comments)
}

// Comment is owned by exactly one Post.
type Comment struct {
	ID        string         `json:"id"`
	Author    AuthorSnapshot `json:"author"`
	Text      string         `json:"text"`
	CreatedAt time.Time      `json:"createdAt"`
	Likes     []string       `json:"likes"`
}
