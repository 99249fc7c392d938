package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"ENVIRONMENT", "LANGUAGE", "MONGODB_DATABASE", "STATUSWATCH_INTERVAL_MINUTES",
		"STATUSWATCH_NOTIFY_ON_FIRST_SIGHT", "STATUSWATCH_PRUNE_SNAPSHOTS", "SESSION_TTL_HOURS",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment)
	assert.Equal(t, "hr", cfg.Language)
	assert.Equal(t, "menza_dev", cfg.MongoDBDatabase)
	assert.Equal(t, MinWatchIntervalMinutes, cfg.WatchIntervalMinutes)
	assert.Equal(t, 24*30, cfg.SessionTTLHours)
	assert.True(t, cfg.NotifyOnFirstSight)
	assert.True(t, cfg.PruneSnapshots)
}

func TestLoadProduction(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("MONGODB_DATABASE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction)
	assert.Equal(t, "menza", cfg.MongoDBDatabase)
}

func TestWatchIntervalIsClamped(t *testing.T) {
	tests := []struct {
		value string
		want  int
	}{
		{"1", MinWatchIntervalMinutes},
		{"15", 15},
		{"60", 60},
		{"soon", MinWatchIntervalMinutes},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("STATUSWATCH_INTERVAL_MINUTES", tt.value)

			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.WatchIntervalMinutes)
		})
	}
}

func TestBooleanFlags(t *testing.T) {
	t.Setenv("STATUSWATCH_NOTIFY_ON_FIRST_SIGHT", "off")
	t.Setenv("STATUSWATCH_PRUNE_SNAPSHOTS", "maybe")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.NotifyOnFirstSight)
	assert.True(t, cfg.PruneSnapshots)
}

func TestValidate(t *testing.T) {
	cfg := &Config{SnapshotDBPath: "snapshots.db"}
	assert.EqualError(t, cfg.ValidateBot(), "DISCORD_TOKEN environment variable is required")

	cfg.DiscordToken = "token"
	assert.EqualError(t, cfg.ValidateWatcher(), "JWT_SECRET environment variable is required")

	cfg.JWTSecret = "secret"
	assert.NoError(t, cfg.ValidateBot())
	assert.NoError(t, cfg.ValidateWatcher())

	cfg.SnapshotDBPath = ""
	assert.Error(t, cfg.ValidateWatcher())
}
