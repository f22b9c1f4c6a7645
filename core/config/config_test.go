package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SERVER_PORT", "8081")
	t.Setenv("MEETING_TIMEOUT", "2s")
	t.Setenv("DATABASE_HOST", "db.internal")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 2*time.Second, cfg.Meeting.Timeout)
	assert.Equal(t, 60*time.Second, cfg.Cache.PublicSlotsTTL)
	assert.False(t, cfg.ZoomEnabled())
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestValidate_StorageNeedsBucket(t *testing.T) {
	cfg := &Config{
		Server:  ServerConfig{Port: 7070},
		JWT:     JWTConfig{Secret: "s"},
		Storage: StorageConfig{Enabled: true},
	}
	assert.ErrorContains(t, cfg.Validate(), "STORAGE_BUCKET")
}

func TestGetSafe(t *testing.T) {
	Set(nil)
	_, ok := GetSafe()
	assert.False(t, ok)
	assert.Panics(t, func() { Get() })

	Set(&Config{Server: ServerConfig{Port: 1}})
	defer Set(nil)
	cfg, ok := GetSafe()
	assert.True(t, ok)
	assert.Equal(t, 1, cfg.Server.Port)
}
