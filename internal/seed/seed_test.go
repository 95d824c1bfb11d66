package seed

import (
	"context"
	"testing"

	"socialvibe/internal/models"
	"socialvibe/internal/recordstore"
	"socialvibe/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newRepos() Repos {
	store := recordstore.NewStore(recordstore.NewMemoryMedium(0))
	users := repository.NewUserRepository(store, repository.WithBcryptCost(bcrypt.MinCost))
	return Repos{
		Users:    users,
		Posts:    repository.NewPostRepository(store, users),
		Products: repository.NewProductRepository(store, users),
		Messages: repository.NewMessageRepository(store),
		Reports:  repository.NewReportRepository(store),
	}
}

func TestSeeder_Run(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repos := newRepos()
	s := NewSeeder(repos, 42)

	sum, err := s.Run(ctx, Options{NumUsers: 8, NumPosts: 20, NumProducts: 5, NumMessages: 10})
	require.NoError(t, err)
	assert.Equal(t, 8, sum.Users)
	assert.Equal(t, 20, sum.Posts)
	assert.Equal(t, 5, sum.Products)
	assert.Equal(t, 1, sum.Reports)

	users, err := repos.Users.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 8)

	// Seeded data keeps the follow graph symmetric and counters in step.
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	total := 0
	for _, u := range users {
		for _, id := range u.Following {
			assert.Contains(t, byID[id].Followers, u.ID)
		}
		total += u.PostsCount
	}
	assert.Equal(t, 20, total)

	_, err = repos.Users.FindByCredentials(ctx, users[0].Email, DefaultPassword)
	assert.NoError(t, err)
}

func TestSeeder_Run_NoUsers(t *testing.T) {
	t.Parallel()
	sum, err := NewSeeder(newRepos(), 1).Run(context.Background(), Options{NumPosts: 10})
	require.NoError(t, err)
	assert.Equal(t, Summary{}, sum)
}

func TestApplyFixture(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repos := newRepos()

	fx, err := LoadFixture("testdata/demo.yml")
	require.NoError(t, err)

	sum, err := NewSeeder(repos, 1).ApplyFixture(ctx, fx)
	require.NoError(t, err)
	assert.Equal(t, Summary{Users: 4, Follows: 3, Posts: 2, Likes: 3, Comments: 1, Products: 1}, sum)

	admin, err := repos.Users.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())

	_, err = repos.Users.FindByCredentials(ctx, "spam@example.com", DefaultPassword)
	assert.ErrorIs(t, err, models.ErrAccountBanned)

	sarah, err := repos.Users.GetByUsername(ctx, "sarah_j")
	require.NoError(t, err)
	assert.Len(t, sarah.Followers, 2)
	assert.Equal(t, 1, sarah.PostsCount)
}

func TestParseFixture(t *testing.T) {
	t.Parallel()

	_, err := ParseFixture([]byte("users:\n  - username: a\n    nickname: b\n"))
	assert.Error(t, err)

	fx, err := ParseFixture(nil)
	require.NoError(t, err)
	assert.Empty(t, fx.Users)

	_, err = NewSeeder(newRepos(), 1).ApplyFixture(context.Background(), &Fixture{
		Follows: []FixtureFollow{{From: "ghost", To: "nobody"}},
	})
	assert.Error(t, err)
}
