package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcess_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("TMDB_API_KEY", "k")

	var cfg Config
	require.NoError(t, Process(&cfg))

	assert.Equal(t, "memory", cfg.StorageDriver)
	assert.Equal(t, "k", cfg.TMDBAPIKey)
	assert.Equal(t, "https://api.themoviedb.org/3", cfg.TMDBBaseURL)
	assert.Equal(t, "https://image.tmdb.org/t/p", cfg.TMDBImageBaseURL)
	assert.Equal(t, 10*time.Second, cfg.CatalogTimeout)
	assert.Equal(t, ":8080", cfg.HTTPPort)
	assert.Equal(t, time.Second, cfg.AuthSimulatedLatency)
	assert.Equal(t, 500*time.Millisecond, cfg.ProfileLatency())
	assert.Equal(t, 500*time.Millisecond, cfg.SearchDebounce)
	assert.False(t, cfg.AuthVerifyPassword)
	assert.False(t, cfg.IsProduction())
}

func TestProcess_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "SQLite")
	t.Setenv("AUTH_SIMULATED_LATENCY", "0s")
	t.Setenv("AUTH_VERIFY_PASSWORD", "true")
	t.Setenv("ENV", "production")
	t.Setenv("SESSION_SECRET", "s3cret")

	var cfg Config
	require.NoError(t, Process(&cfg))

	assert.Equal(t, "sqlite", cfg.StorageDriver)
	assert.Zero(t, cfg.AuthSimulatedLatency)
	assert.True(t, cfg.AuthVerifyPassword)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "s3cret", cfg.SessionSecret)
}

func TestProcess_ProductionRequiresSessionSecret(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("SESSION_SECRET", "")

	var cfg Config
	err := Process(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"memory ok", Config{StorageDriver: "memory"}, ""},
		{"postgres needs url", Config{StorageDriver: "postgres"}, "DATABASE_URL"},
		{"postgres ok", Config{StorageDriver: "postgres", DatabaseURL: "postgres://x"}, ""},
		{"mongo needs uri", Config{StorageDriver: "mongo"}, "MONGO_URI"},
		{"unknown driver", Config{StorageDriver: "redis"}, "unknown STORAGE_DRIVER"},
		{"dev secret outside production", Config{StorageDriver: "memory", SessionSecret: DevSessionSecret}, ""},
		{"dev secret in production", Config{StorageDriver: "memory", Env: "production", SessionSecret: DevSessionSecret}, "SESSION_SECRET"},
		{"empty secret in production", Config{StorageDriver: "memory", Env: "Production"}, "SESSION_SECRET"},
		{"production secret ok", Config{StorageDriver: "memory", Env: "production", SessionSecret: "s3cret"}, ""},
		{"negative latency", Config{StorageDriver: "memory", AuthSimulatedLatency: -time.Second}, "AUTH_SIMULATED_LATENCY"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
