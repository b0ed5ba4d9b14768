package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"servicehours/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("SERVICEHOURS_TEST_DB", "slots.db")

	yamlContent := `
app:
  name: "servicehours"
  timezone: "Europe/London"
database:
  path: "${SERVICEHOURS_TEST_DB}"
cache:
  enabled: true
  ttl: "10m"
api:
  enabled: true
  auth:
    enabled: true
    api_keys:
      - key: "k1"
        extra: "e1"
        name: "widget"
        permissions: ["read:slots"]
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0o644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "slots.db", cfg.Database.Path)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL())
	assert.True(t, cfg.API.HTTP.Enabled)
	require.Len(t, cfg.API.Auth.APIKeys, 1)
	assert.Equal(t, "widget", cfg.API.Auth.APIKeys[0].Name)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/London", loc.String())
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "valid config",
			cfg:     Config{Database: DatabaseConfig{Path: "path"}},
			wantErr: false,
		},
		{
			name:    "missing database path",
			cfg:     Config{},
			wantErr: true,
		},
		{
			name: "unknown timezone",
			cfg: Config{
				App:      AppConfig{Timezone: "Mars/Olympus"},
				Database: DatabaseConfig{Path: "path"},
			},
			wantErr: true,
		},
		{
			name: "bad cache ttl",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Cache:    CacheConfig{TTL: "soon"},
			},
			wantErr: true,
		},
		{
			name: "bad warmer interval",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Warmer:   WarmerConfig{Interval: "hourly"},
			},
			wantErr: true,
		},
		{
			name: "bad backup interval",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Backup:   BackupConfig{Interval: "nightly"},
			},
			wantErr: true,
		},
		{
			name: "duplicate api key",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				API: APIConfig{Auth: APIAuthConfig{APIKeys: []APIClientKey{
					{Key: "k", Name: "a"},
					{Key: "k", Name: "b"},
				}}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	assert.Equal(t, "servicehours", cfg.App.Name)
	assert.Equal(t, 8081, cfg.API.GRPC.Port)
	assert.Equal(t, 8080, cfg.API.HTTP.Port)
	assert.Equal(t, "x-api-key", cfg.API.Auth.HeaderAPIKey)
	assert.Equal(t, "x-api-extra", cfg.API.Auth.HeaderExtra)
	assert.Equal(t, models.RateLimitBurst, cfg.API.RateLimit.Burst)
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL())
	assert.Equal(t, time.Hour, cfg.WarmInterval())
	assert.Equal(t, models.DefaultWarmDays, cfg.Warmer.Days)
	assert.Equal(t, 3, cfg.Warmer.MaxRetries)
	assert.Equal(t, 24*time.Hour, cfg.BackupInterval())
	assert.Equal(t, "backups", cfg.Backup.StoragePath)
}

func TestValidateAPIKeys(t *testing.T) {
	tests := []struct {
		name    string
		keys    []APIClientKey
		wantErr bool
	}{
		{name: "valid", keys: []APIClientKey{{Key: "a"}, {Key: "b"}}},
		{name: "empty key", keys: []APIClientKey{{Name: "x"}}, wantErr: true},
		{name: "duplicate", keys: []APIClientKey{{Key: "a"}, {Key: "a"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAPIKeys(tt.keys)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAPIKeys() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
