package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	content := `PORT=:8080
ENVIRONMENT=production
VERSION=1.2.3
POSTGRES_HOST=db.internal
POSTGRES_PORT=5432
POSTGRES_USER=bloglist
POSTGRES_PASSWORD=secret
POSTGRES_DB=bloglist
RABBITMQ_HOST=mq.internal
RABBITMQ_PORT=5672
RABBITMQ_USER=guest
RABBITMQ_PASSWORD=guest
AUTH_TOKEN_SECRET=super-secret
AUTH_TOKEN_TTL=12h
RATE_LIMIT_RPS=5
RATE_LIMIT_BURST=10
RATE_LIMIT_ENABLED=false
`

	path := filepath.Join(t.TempDir(), ".env")
	err := os.WriteFile(path, []byte(content), 0o644)
	require.NoError(t, err)

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "1.2.3", cfg.Version)
	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, "bloglist", cfg.DBUser)
	assert.Equal(t, "secret", cfg.DBPassword)
	assert.Equal(t, "bloglist", cfg.DBName)
	assert.Equal(t, "mq.internal", cfg.MQHost)
	assert.Equal(t, "guest", cfg.MQUser)
	assert.Equal(t, "super-secret", cfg.AuthSecret)
	assert.Equal(t, 12*time.Hour, cfg.AuthTokenTTL)
	assert.Equal(t, float64(5), cfg.LimiterRPS)
	assert.Equal(t, 10, cfg.LimiterBurst)
	assert.False(t, cfg.LimiterEnabled)
}

func TestLoadConfigDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	err := os.WriteFile(path, []byte("AUTH_TOKEN_SECRET=super-secret\n"), 0o644)
	require.NoError(t, err)

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":4000", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 24*time.Hour, cfg.AuthTokenTTL)
	assert.Equal(t, float64(2), cfg.LimiterRPS)
	assert.Equal(t, 4, cfg.LimiterBurst)
	assert.True(t, cfg.LimiterEnabled)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.env"))
	assert.Error(t, err)
}
