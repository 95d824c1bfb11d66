package repository

import (
	"context"
	"slices"

	"socialvibe/internal/models"
	"socialvibe/internal/recordstore"
)

// RecentSearchRepository remembers the last users picked from search.
type RecentSearchRepository interface {
	Add(ctx context.Context, entry models.RecentSearch) error
	List(ctx context.Context) ([]models.RecentSearch, error)
	Clear(ctx context.Context) error
}

type recentSearchRepository struct {
	searches *recordstore.Collection[models.RecentSearch]
}

// NewRecentSearchRepository returns a RecentSearchRepository shared by the store.
func NewRecentSearchRepository(store *recordstore.Store) RecentSearchRepository {
	return &recentSearchRepository{
		searches: recordstore.NewCollection[models.RecentSearch](store, CollectionRecentSearches),
	}
}

// Add moves entry to the front, dropping older duplicates and anything past
// MaxRecentSearches.
func (r *recentSearchRepository) Add(ctx context.Context, entry models.RecentSearch) error {
	return r.searches.Mutate(ctx, func(list []models.RecentSearch) ([]models.RecentSearch, error) {
		list = slices.DeleteFunc(list, func(s models.RecentSearch) bool { return s.ID == entry.ID })
		list = append([]models.RecentSearch{entry}, list...)
		if len(list) > models.MaxRecentSearches {
			list = list[:models.MaxRecentSearches]
		}
		return list, nil
	})
}

func (r *recentSearchRepository) List(ctx context.Context) ([]models.RecentSearch, error) {
	list, _, err := r.searches.Load(ctx)
	return list, err
}

func (r *recentSearchRepository) Clear(ctx context.Context) error {
	return r.searches.Mutate(ctx, func([]models.RecentSearch) ([]models.RecentSearch, error) {
		return []models.RecentSearch{}, nil
	})
}
