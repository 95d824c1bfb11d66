package repository

import (
	"context"
	"sync"
	"testing"

	"socialvibe/internal/models"
	"socialvibe/internal/recordstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUserRepository_Create(t *testing.T) {
	t.Parallel()
	r := newTestRepos(t)
	ctx := context.Background()

	u, err := r.users.Create(ctx, "alice", "alice@example.com", "secret")
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.Equal(t, models.DefaultAvatarURL, u.Avatar)
	assert.Empty(t, u.Followers)
	assert.Empty(t, u.Following)
	assert.Zero(t, u.PostsCount)
	assert.False(t, u.Banned)
	assert.NotEqual(t, "secret", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret")))
}

func TestUserRepository_Create_Duplicate(t *testing.T) {
	t.Parallel()
	r := newTestRepos(t)
	ctx := context.Background()
	original := mustCreateUser(t, r.users, "alice")

	tests := []struct {
		name     string
		username string
		email    string
	}{
		{"Same Username", "alice", "other@example.com"},
		{"Same Email", "bob", "alice@example.com"},
		{"Both", "alice", "alice@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.users.Create(ctx, tt.username, tt.email, "pw")
			assert.ErrorIs(t, err, models.ErrDuplicateUser)
		})
	}

	users, err := r.users.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, *original, users[0])
}

func TestUserRepository_Create_Validation(t *testing.T) {
	t.Parallel()
	r := newTestRepos(t)

	_, err := r.users.Create(context.Background(), " ", "a@example.com", "pw")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestUserRepository_FindByCredentials(t *testing.T) {
	t.Parallel()
	r := newTestRepos(t)
	ctx := context.Background()

	alice := mustCreateUser(t, r.users, "alice")
	mallory := mustCreateUser(t, r.users, "mallory")
	_, err := r.users.SetBanned(ctx, mallory.ID, true)
	require.NoError(t, err)

	tests := []struct {
		name    string
		email   string
		pass    string
		wantErr error
		wantID  string
	}{
		{"Success", "alice@example.com", "password", nil, alice.ID},
		{"Wrong Password", "alice@example.com", "nope", models.ErrInvalidCredentials, ""},
		{"Unknown Email", "ghost@example.com", "password", models.ErrInvalidCredentials, ""},
		{"Email Is Case Sensitive", "ALICE@example.com", "password", models.ErrInvalidCredentials, ""},
		{"Banned Wrong Password", "mallory@example.com", "nope", models.ErrInvalidCredentials, ""},
		{"Banned Right Password", "mallory@example.com", "password", models.ErrAccountBanned, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := r.users.FindByCredentials(ctx, tt.email, tt.pass)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, u)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, u.ID)
		})
	}
}

func TestUserRepository_FollowSymmetry(t *testing.T) {
	t.Parallel()
	r := newTestRepos(t)
	ctx := context.Background()
	a := mustCreateUser(t, r.users, "a")
	b := mustCreateUser(t, r.users, "b")

	require.NoError(t, r.users.Follow(ctx, a.ID, b.ID))
	require.NoError(t, r.users.Follow(ctx, a.ID, b.ID))

	gotA, err := r.users.GetByID(ctx, a.ID)
	require.NoError(t, err)
	gotB, err := r.users.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, gotA.Following)
	assert.Equal(t, []string{a.ID}, gotB.Followers)

	require.NoError(t, r.users.Unfollow(ctx, a.ID, b.ID))
	require.NoError(t, r.users.Unfollow(ctx, a.ID, b.ID))

	gotA, err = r.users.GetByID(ctx, a.ID)
	require.NoError(t, err)
	gotB, err = r.users.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.NotContains(t, gotA.Following, b.ID)
	assert.NotContains(t, gotB.Followers, a.ID)
}

func TestUserRepository_Follow_Errors(t *testing.T) {
	t.Parallel()
	r := newTestRepos(t)
	ctx := context.Background()
	a := mustCreateUser(t, r.users, "a")

	assert.ErrorIs(t, r.users.Follow(ctx, a.ID, a.ID), models.ErrValidation)
	assert.ErrorIs(t, r.users.Follow(ctx, a.ID, "missing"), models.ErrNotFound)
	assert.ErrorIs(t, r.users.Follow(ctx, "missing", a.ID), models.ErrNotFound)
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	t.Parallel()
	r := newTestRepos(t)
	ctx := context.Background()
	alice := mustCreateUser(t, r.users, "alice")
	mustCreateUser(t, r.users, "bob")

	var mu sync.Mutex
	var changed []models.User
	r.users.OnChange(func(_ context.Context, u models.User) {
		mu.Lock()
		defer mu.Unlock()
		changed = append(changed, u)
	})

	bio := "hello"
	updated, err := r.users.UpdateProfile(ctx, alice.ID, ProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "hello", updated.Bio)
	assert.Equal(t, "alice", updated.Username)
	assert.Equal(t, alice.CreatedAt, updated.CreatedAt)
	require.NotNil(t, updated.UpdatedAt)

	taken := "bob"
	_, err = r.users.UpdateProfile(ctx, alice.ID, ProfileUpdate{Username: &taken})
	assert.ErrorIs(t, err, models.ErrDuplicateUser)

	// Keeping one's own username is not a duplicate.
	own := "alice"
	_, err = r.users.UpdateProfile(ctx, alice.ID, ProfileUpdate{Username: &own})
	assert.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, changed, 2)
	assert.Equal(t, "hello", changed[0].Bio)
}

func TestUserRepository_ChangePassword(t *testing.T) {
	t.Parallel()
	r := newTestRepos(t)
	ctx := context.Background()
	alice := mustCreateUser(t, r.users, "alice")

	notified := false
	r.users.OnChange(func(context.Context, models.User) { notified = true })

	err := r.users.ChangePassword(ctx, alice.ID, "wrong", "new-password")
	assert.ErrorIs(t, err, models.ErrIncorrectPassword)

	require.NoError(t, r.users.ChangePassword(ctx, alice.ID, "password", "new-password"))
	assert.False(t, notified)

	_, err = r.users.FindByCredentials(ctx, "alice@example.com", "password")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	_, err = r.users.FindByCredentials(ctx, "alice@example.com", "new-password")
	assert.NoError(t, err)
}

func TestUserRepository_Search(t *testing.T) {
	t.Parallel()
	r := newTestRepos(t)
	ctx := context.Background()
	for _, name := range []string{"Alice", "malice", "bob", "ALIBABA"} {
		mustCreateUser(t, r.users, name)
	}

	got, err := r.users.Search(ctx, "ali", 0)
	require.NoError(t, err)
	var names []string
	for _, u := range got {
		names = append(names, u.Username)
	}
	assert.Equal(t, []string{"Alice", "malice", "ALIBABA"}, names)

	got, err = r.users.Search(ctx, "ali", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = r.users.Search(ctx, "  ", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUserRepository_FollowersSkipDeleted(t *testing.T) {
	t.Parallel()
	r := newTestRepos(t)
	ctx := context.Background()
	a := mustCreateUser(t, r.users, "a")
	b := mustCreateUser(t, r.users, "b")
	c := mustCreateUser(t, r.users, "c")
	require.NoError(t, r.users.Follow(ctx, b.ID, a.ID))
	require.NoError(t, r.users.Follow(ctx, c.ID, a.ID))
	require.NoError(t, r.users.Delete(ctx, c.ID))

	followers, err := r.users.Followers(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, b.ID, followers[0].ID)

	// The dangling edge is kept on the remaining user.
	got, err := r.users.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Contains(t, got.Followers, c.ID)

	following, err := r.users.Following(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, a.ID, following[0].ID)
}

func TestUserRepository_SetRole(t *testing.T) {
	t.Parallel()
	r := newTestRepos(t)
	ctx := context.Background()
	a := mustCreateUser(t, r.users, "a")

	u, err := r.users.SetRole(ctx, a.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())

	_, err = r.users.SetRole(ctx, a.ID, "root")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestUserRepository_PersistsOnSQLite(t *testing.T) {
	medium, err := recordstore.OpenSQLite(":memory:")
	require.NoError(t, err)
	defer func() { _ = medium.Close() }()

	ctx := context.Background()
	store := recordstore.NewStore(medium)
	first := NewUserRepository(store, WithBcryptCost(bcrypt.MinCost))
	created, err := first.Create(ctx, "alice", "alice@example.com", "pw")
	require.NoError(t, err)

	second := NewUserRepository(recordstore.NewStore(medium), WithBcryptCost(bcrypt.MinCost))
	got, err := second.FindByCredentials(ctx, "alice@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
}
