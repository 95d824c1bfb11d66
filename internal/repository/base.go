// Package repository implements the data access layer on top of the record
// store. Every mutation reads a whole collection, changes it in memory and
// writes it back in one versioned write.
package repository

import (
	"context"
	"time"

	"socialvibe/internal/models"
	"socialvibe/internal/observability"

	"golang.org/x/crypto/bcrypt"
)

// Collection names, prefixed by the store to form medium keys.
const (
	CollectionUsers          = "users"
	CollectionPosts          = "posts"
	CollectionProducts       = "products"
	CollectionMessages       = "messages"
	CollectionReports        = "reports"
	CollectionRecentSearches = "recent_searches"
	savedItemsPrefix         = "saved_items_"
)

// SavedItemsName is the per-user saved items document name.
func SavedItemsName(userID string) string {
	return savedItemsPrefix + userID
}

// Clock returns the current time.
type Clock func() time.Time

type options struct {
	now           Clock
	bcryptCost    int
	defaultAvatar string
}

// Option configures a repository.
type Option func(*options)

// WithClock replaces time.Now for timestamps.
func WithClock(now Clock) Option {
	return func(o *options) { o.now = now }
}

// WithBcryptCost sets the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(o *options) { o.bcryptCost = cost }
}

// WithDefaultAvatar sets the avatar assigned to new accounts.
func WithDefaultAvatar(url string) Option {
	return func(o *options) { o.defaultAvatar = url }
}

func buildOptions(opts []Option) options {
	o := options{
		now:           time.Now,
		bcryptCost:    bcrypt.DefaultCost,
		defaultAvatar: models.DefaultAvatarURL,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.defaultAvatar == "" {
		o.defaultAvatar = models.DefaultAvatarURL
	}
	return o
}

// traceRepo starts a repository span and returns a function ending it with err.
func traceRepo(ctx context.Context, repo, method string) (context.Context, func(*error)) {
	ctx, span := observability.StartRepositorySpan(ctx, repo, method)
	return ctx, func(errp *error) {
		var err error
		if errp != nil {
			err = *errp
		}
		observability.EndSpan(span, err)
	}
}
