package repository

import (
	"context"
	"slices"

	"socialvibe/internal/models"
	"socialvibe/internal/recordstore"
)

// SavedItemsRepository keeps each user's bookmarked posts and products.
type SavedItemsRepository interface {
	Get(ctx context.Context, userID string) (models.SavedItems, error)
	TogglePost(ctx context.Context, userID, postID string) (bool, error)
	ToggleProduct(ctx context.Context, userID, productID string) (bool, error)
}

type savedItemsRepository struct {
	store *recordstore.Store
}

// NewSavedItemsRepository returns a SavedItemsRepository storing one document per user.
func NewSavedItemsRepository(store *recordstore.Store) SavedItemsRepository {
	return &savedItemsRepository{store: store}
}

func (r *savedItemsRepository) doc(userID string) *recordstore.Document[models.SavedItems] {
	return recordstore.NewDocument[models.SavedItems](r.store, SavedItemsName(userID))
}

func normalizeSaved(s models.SavedItems) models.SavedItems {
	if s.Posts == nil {
		s.Posts = []string{}
	}
	if s.Products == nil {
		s.Products = []string{}
	}
	return s
}

// Get returns the user's saved items. Corrupt content reads as empty.
func (r *savedItemsRepository) Get(ctx context.Context, userID string) (models.SavedItems, error) {
	saved, _, err := r.doc(userID).Get(ctx)
	if err != nil && !models.HasCode(err, models.CodeParseError) {
		return models.SavedItems{}, err
	}
	return normalizeSaved(saved), nil
}

func toggle(ids []string, id string) ([]string, bool) {
	if slices.Contains(ids, id) {
		return models.RemoveID(ids, id), false
	}
	return append(ids, id), true
}

// TogglePost saves or unsaves a post and returns whether it is now saved.
func (r *savedItemsRepository) TogglePost(ctx context.Context, userID, postID string) (bool, error) {
	var saved bool
	err := r.doc(userID).Mutate(ctx, func(s models.SavedItems) (models.SavedItems, error) {
		s = normalizeSaved(s)
		s.Posts, saved = toggle(s.Posts, postID)
		return s, nil
	})
	return saved, err
}

// ToggleProduct saves or unsaves a product and returns whether it is now saved.
func (r *savedItemsRepository) ToggleProduct(ctx context.Context, userID, productID string) (bool, error) {
	var saved bool
	err := r.doc(userID).Mutate(ctx, func(s models.SavedItems) (models.SavedItems, error) {
		s = normalizeSaved(s)
		s.Products, saved = toggle(s.Products, productID)
		return s, nil
	})
	return saved, err
}
