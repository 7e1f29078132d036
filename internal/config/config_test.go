package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Momager", cfg.AppName)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8086", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, DefaultCookieKey, cfg.CookieKey)
	assert.Equal(t, time.Hour, cfg.WeatherCacheTTL)
	assert.Equal(t, time.Hour, cfg.PasswordResetExpiry)
	assert.Equal(t, 15*time.Minute, cfg.SessionCleanupInterval)
	assert.Equal(t, "fs", cfg.ContentSource)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		expected func(*Config)
	}{
		{
			name:    "port override",
			envVars: map[string]string{"PORT": "9000"},
			expected: func(cfg *Config) {
				assert.Equal(t, "9000", cfg.Port)
			},
		},
		{
			name: "database override",
			envVars: map[string]string{
				"DB_DRIVER":     "mysql",
				"DB_CONNECTION": "momager:secret@tcp(localhost:3306)/momager?parseTime=true",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, "mysql", cfg.DBDriver)
				assert.Equal(t, "momager:secret@tcp(localhost:3306)/momager?parseTime=true", cfg.DBConnection)
			},
		},
		{
			name:    "trusted proxies list",
			envVars: map[string]string{"TRUSTED_PROXIES": "10.0.0.0/8,127.0.0.1"},
			expected: func(cfg *Config) {
				assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.TrustedProxies)
			},
		},
		{
			name:    "duration override",
			envVars: map[string]string{"WEATHER_CACHE_TTL": "3h"},
			expected: func(cfg *Config) {
				assert.Equal(t, 3*time.Hour, cfg.WeatherCacheTTL)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			require.NoError(t, err)
			tt.expected(cfg)
		})
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
	}{
		{name: "unknown env", envVars: map[string]string{"APP_ENV": "staging"}},
		{name: "unknown driver", envVars: map[string]string{"DB_DRIVER": "oracle"}},
		{name: "s3 without bucket", envVars: map[string]string{"CONTENT_SOURCE": "s3"}},
		{name: "production without resend key", envVars: map[string]string{"APP_ENV": "production", "COOKIE_KEY": "x"}},
		{name: "production with default cookie key", envVars: map[string]string{"APP_ENV": "production", "RESEND_API_KEY": "re_123"}},
		{name: "bad duration", envVars: map[string]string{"WEATHER_CACHE_TTL": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestSanitized(t *testing.T) {
	cfg := &Config{
		AppName:      "Momager",
		AppEnv:       "production",
		CookieKey:    "top-secret",
		ResendAPIKey: "re_123",
		S3SecretKey:  "s3-secret",
		DBConnection: "user:pass@tcp(db)/momager",
	}

	safe := cfg.Sanitized()
	assert.Equal(t, "Momager", safe.AppName)
	assert.Empty(t, safe.CookieKey)
	assert.Empty(t, safe.ResendAPIKey)
	assert.Empty(t, safe.S3SecretKey)
	assert.Empty(t, safe.DBConnection)
}
