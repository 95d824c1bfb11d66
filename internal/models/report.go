package models

import "time"

// Report flags a post for admin review.
type Report struct {
	ID         string    `json:"id"`
	PostID     string    `json:"postId"`
	ReporterID string    `json:"reporterId"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"createdAt"`
}

// SavedItems holds the post and product ids a user bookmarked.
type SavedItems struct {
	Posts    []string `json:"posts"`
	Products []string `json:"products"`
}

// RecentSearch is a user snapshot remembered by the search box.
type RecentSearch struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// MaxRecentSearches caps the recent searches list.
const MaxRecentSearches = 5
