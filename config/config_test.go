package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAppliesDefaults(t *testing.T) {
	Set(AppConfig{JWTSecret: "secret"})
	got := Get()

	assert.Equal(t, "8080", got.AppPort)
	assert.Equal(t, "release", got.GinMode)
	assert.Equal(t, 60, got.RateLimitPerMinute)
	assert.Equal(t, []string{"*"}, got.AllowedOrigins)
	assert.Equal(t, "storage/uploads", got.UploadsDir)
	assert.Equal(t, "/storage", got.UploadsBaseURL)
	assert.Equal(t, 900, got.WeatherCacheTTLSecs)
	assert.Equal(t, "https://api.openweathermap.org/data/2.5/weather", got.WeatherBaseURL)
	assert.Equal(t, 6379, got.RedisPort)
}

func TestSetKeepsExplicitValues(t *testing.T) {
	Set(AppConfig{
		JWTSecret:           "secret",
		AppPort:             "9999",
		WeatherCacheTTLSecs: 60,
		AllowedOrigins:      []string{"https://example.com"},
	})
	got := Get()

	assert.Equal(t, "9999", got.AppPort)
	assert.Equal(t, 60, got.WeatherCacheTTLSecs)
	assert.Equal(t, []string{"https://example.com"}, got.AllowedOrigins)
}

func TestLoadJSONConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"app": {"AppPort": "9001", "JWTSecret": "file-secret", "RateLimitPerMinute": 30},
		"weather": {"APIKey": "owm-key", "CacheTTLSecs": 300},
		"uploads": {"Dir": "data/files", "BaseURL": "/files"},
		"redis": {"RedisHost": "redis.internal", "RedisPort": 6380}
	}`), 0o644))

	var out AppConfig
	require.NoError(t, loadJSONConfig(path, &out))

	assert.Equal(t, "9001", out.AppPort)
	assert.Equal(t, "file-secret", out.JWTSecret)
	assert.Equal(t, 30, out.RateLimitPerMinute)
	assert.Equal(t, "owm-key", out.WeatherAPIKey)
	assert.Equal(t, 300, out.WeatherCacheTTLSecs)
	assert.Equal(t, "data/files", out.UploadsDir)
	assert.Equal(t, "/files", out.UploadsBaseURL)
	assert.Equal(t, "redis.internal", out.RedisHost)
	assert.Equal(t, 6380, out.RedisPort)
}

func TestLoadJSONConfigMissingFileIsIgnored(t *testing.T) {
	var out AppConfig
	require.NoError(t, loadJSONConfig(filepath.Join(t.TempDir(), "absent.json"), &out))
	assert.Equal(t, AppConfig{}, out)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a , b ,, "))
}
