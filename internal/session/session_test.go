package session

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

func setup(t *testing.T) (*recordstore.Store, repository.UserRepository, *Manager) {
	t.Helper()
	store := recordstore.NewStore(recordstore.NewMemoryMedium(0))
	users := repository.NewUserRepository(store, repository.WithBcryptCost(bcrypt.MinCost))
	m, err := NewManager(context.Background(), store, users)
	require.NoError(t, err)
	return store, users, m
}

func TestManager_RegisterLoginLogout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, _, m := setup(t)

	assert.Equal(t, StateAnonymous, m.State())
	_, err := m.RequireUser()
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	s, err := m.Register(ctx, "alice", "alice@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, m.State())
	assert.Equal(t, "alice", s.Username)
	assert.Equal(t, models.RoleUser, s.Role)

	require.NoError(t, m.Logout(ctx))
	require.NoError(t, m.Logout(ctx))
	assert.Equal(t, StateAnonymous, m.State())

	s, err = m.Login(ctx, "alice@example.com", "pw")
	require.NoError(t, err)
	current, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, s, current)
}

func TestManager_LoginFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, users, m := setup(t)

	u, err := users.Create(ctx, "mallory", "mallory@example.com", "pw")
	require.NoError(t, err)
	_, err = users.SetBanned(ctx, u.ID, true)
	require.NoError(t, err)

	_, err = m.Login(ctx, "mallory@example.com", "bad")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	assert.Equal(t, StateAnonymous, m.State())

	_, err = m.Login(ctx, "mallory@example.com", "pw")
	assert.ErrorIs(t, err, models.ErrAccountBanned)
	assert.Equal(t, "This account has been banned.", models.UserMessage(err))
	assert.Equal(t, StateAnonymous, m.State())

	_, err = m.Register(ctx, "mallory", "new@example.com", "pw")
	assert.ErrorIs(t, err, models.ErrDuplicateUser)
	assert.Equal(t, StateAnonymous, m.State())
}

func TestManager_Restore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, users, m := setup(t)

	s, err := m.Register(ctx, "alice", "alice@example.com", "pw")
	require.NoError(t, err)

	restored, err := NewManager(ctx, store, users)
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, restored.State())
	current, ok := restored.Current()
	require.True(t, ok)
	assert.Equal(t, s, current)

	data, _, err := store.ReadRaw(ctx, DocumentName)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "passwordHash")
}

func TestManager_RestoreCorrupt(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, users, _ := setup(t)

	_, err := store.WriteRaw(ctx, DocumentName, []byte(`{"id":`), 0)
	require.NoError(t, err)

	m, err := NewManager(ctx, store, users)
	require.NoError(t, err)
	assert.Equal(t, StateAnonymous, m.State())
}

func TestManager_RefreshOnUserChange(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, users, m := setup(t)

	alice, err := m.Register(ctx, "alice", "alice@example.com", "pw")
	require.NoError(t, err)
	bob, err := users.Create(ctx, "bob", "bob@example.com", "pw")
	require.NoError(t, err)

	bio := "new bio"
	_, err = users.UpdateProfile(ctx, alice.ID, repository.ProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	require.NoError(t, users.Follow(ctx, alice.ID, bob.ID))

	current, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, "new bio", current.Bio)
	assert.Equal(t, []string{bob.ID}, current.Following)

	// Changes to other users leave the session alone.
	other := "robert"
	_, err = users.UpdateProfile(ctx, bob.ID, repository.ProfileUpdate{Username: &other})
	require.NoError(t, err)
	current, _ = m.Current()
	assert.Equal(t, "alice", current.Username)

	// The refreshed snapshot is what a restart restores.
	restored, err := NewManager(ctx, store, users)
	require.NoError(t, err)
	persisted, ok := restored.Current()
	require.True(t, ok)
	assert.Equal(t, "new bio", persisted.Bio)
}
