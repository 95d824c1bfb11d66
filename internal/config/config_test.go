package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		expectError bool
	}{
		{"memory in development", Config{Env: "development", StoreDriver: DriverMemory}, false},
		{"memory in production", Config{Env: "production", StoreDriver: DriverMemory}, true},
		{"sqlite without path", Config{Env: "development", StoreDriver: DriverSQLite}, true},
		{"sqlite with path", Config{Env: "development", StoreDriver: DriverSQLite, StorePath: "x.db"}, false},
		{"postgres without url", Config{Env: "test", StoreDriver: DriverPostgres}, true},
		{"redis with url", Config{Env: "prod", StoreDriver: DriverRedis, RedisURL: "redis://localhost:6379"}, false},
		{"unknown driver", Config{Env: "test", StoreDriver: "etcd"}, true},
		{"negative quota", Config{Env: "test", StoreDriver: DriverMemory, StoreQuotaBytes: -1}, true},
		{"bcrypt cost too high", Config{Env: "test", StoreDriver: DriverMemory, BcryptCost: 99}, true},
		{"weak bcrypt in production", Config{Env: "production", StoreDriver: DriverRedis, RedisURL: "r", BcryptCost: 4}, true},
		{"sampler out of range", Config{Env: "test", StoreDriver: DriverMemory, TracingSamplerRatio: 2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	defer viper.Reset()
	defer os.Unsetenv("APP_ENV")
	defer os.Unsetenv("STORE_DRIVER")
	defer os.Unsetenv("STORE_QUOTA_BYTES")

	os.Setenv("APP_ENV", "test")
	os.Setenv("STORE_DRIVER", "  MEMORY ")
	os.Setenv("STORE_QUOTA_BYTES", "1024")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, int64(1024), cfg.StoreQuotaBytes)
	assert.Equal(t, "socialvibe_", cfg.StoreKeyPrefix)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_MissingProfile(t *testing.T) {
	defer viper.Reset()
	defer os.Unsetenv("APP_ENV")

	os.Setenv("APP_ENV", "staging-does-not-exist")

	_, err := LoadConfig()
	assert.Error(t, err)
}
