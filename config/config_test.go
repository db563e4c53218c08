package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "tasks.db", cfg.DBPath)
	assert.Equal(t, 30*24*time.Hour, cfg.TokenLifetime)
	assert.True(t, cfg.UsingDevSecret())
	assert.False(t, cfg.RelayEnabled())
	assert.Equal(t, "task-notifications", cfg.RedisChannel)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"PORT":           "8080",
		"DB_PATH":        "/tmp/x.db",
		"JWT_SECRET_KEY": "s3cret",
		"JWT_ISSUER":     "issuer",
		"TOKEN_LIFETIME": "1h",
		"REDIS_ADDR":     " localhost:6379 ",
		"REDIS_CHANNEL":  "chan",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, "s3cret", cfg.JWTSecretKey)
	assert.False(t, cfg.UsingDevSecret())
	assert.Equal(t, "issuer", cfg.JWTIssuer)
	assert.Equal(t, time.Hour, cfg.TokenLifetime)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.True(t, cfg.RelayEnabled())
	assert.Equal(t, "chan", cfg.RedisChannel)
}

func TestFromEnv_InvalidLifetime(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "not a duration", value: "forever"},
		{name: "negative", value: "-1h"},
		{name: "zero", value: "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(envMap(map[string]string{"TOKEN_LIFETIME": tt.value}))
			assert.Error(t, err)
		})
	}
}
