package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"socialvibe/internal/config"
	"socialvibe/internal/models"
	"socialvibe/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig(driver string) *config.Config {
	return &config.Config{
		Env:             "test",
		StoreDriver:     driver,
		StoreKeyPrefix:  "socialvibe_",
		StoreQuotaBytes: 1 << 20,
		BcryptCost:      bcrypt.MinCost,
		LogLevel:        "error",
		RedisNamespace:  "socialvibe:",
	}
}

func exercise(t *testing.T, rt *Runtime) {
	t.Helper()
	ctx := context.Background()

	s, err := rt.Session.Register(ctx, "alice", "alice@example.com", "pw")
	require.NoError(t, err)
	_, err = rt.Posts.Create(ctx, models.AuthorSnapshot{ID: s.ID, Username: s.Username, Avatar: s.Avatar},
		repository.CreatePostInput{Caption: "hello"})
	require.NoError(t, err)

	stats, err := rt.Moderation.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalUsers)
	assert.Equal(t, 1, stats.TotalPosts)

	current, ok := rt.Session.Current()
	require.True(t, ok)
	assert.Equal(t, 1, current.PostsCount)
}

func TestInitRuntime_Drivers(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		rt, err := InitRuntime(context.Background(), testConfig(config.DriverMemory))
		require.NoError(t, err)
		defer func() { _ = rt.Close(context.Background()) }()
		exercise(t, rt)
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := testConfig(config.DriverSQLite)
		cfg.StorePath = filepath.Join(t.TempDir(), "nested", "store.db")

		rt, err := InitRuntime(context.Background(), cfg)
		require.NoError(t, err)
		exercise(t, rt)
		require.NoError(t, rt.Close(context.Background()))

		// A second runtime on the same file restores the session.
		rt, err = InitRuntime(context.Background(), cfg)
		require.NoError(t, err)
		defer func() { _ = rt.Close(context.Background()) }()
		current, ok := rt.Session.Current()
		require.True(t, ok)
		assert.Equal(t, "alice", current.Username)
	})

	t.Run("redis", func(t *testing.T) {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		defer mr.Close()

		cfg := testConfig(config.DriverRedis)
		cfg.RedisURL = "redis://" + mr.Addr()

		rt, err := InitRuntime(context.Background(), cfg)
		require.NoError(t, err)
		defer func() { _ = rt.Close(context.Background()) }()
		exercise(t, rt)
		assert.True(t, mr.Exists("socialvibe:socialvibe_users"))
	})
}

func TestOpenMedium_UnknownDriver(t *testing.T) {
	t.Parallel()
	_, err := OpenMedium(context.Background(), testConfig("cassandra"))
	assert.Error(t, err)
}
