package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"socialvibe/internal/models"
	"socialvibe/internal/recordstore"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// steppingClock returns a clock that advances one minute per call.
func steppingClock() Clock {
	var mu sync.Mutex
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Minute)
		return t
	}
}

type testRepos struct {
	store    *recordstore.Store
	users    UserRepository
	posts    PostRepository
	products ProductRepository
	messages MessageRepository
	reports  ReportRepository
	saved    SavedItemsRepository
	recent   RecentSearchRepository
}

func newTestRepos(t *testing.T) *testRepos {
	t.Helper()
	store := recordstore.NewStore(recordstore.NewMemoryMedium(0))
	opts := []Option{WithClock(steppingClock()), WithBcryptCost(bcrypt.MinCost)}
	users := NewUserRepository(store, opts...)
	return &testRepos{
		store:    store,
		users:    users,
		posts:    NewPostRepository(store, users, opts...),
		products: NewProductRepository(store, users, opts...),
		messages: NewMessageRepository(store, opts...),
		reports:  NewReportRepository(store, opts...),
		saved:    NewSavedItemsRepository(store),
		recent:   NewRecentSearchRepository(store),
	}
}

func mustCreateUser(t *testing.T, users UserRepository, username string) *models.User {
	t.Helper()
	u, err := users.Create(context.Background(), username, username+"@example.com", "password")
	require.NoError(t, err)
	return u
}
