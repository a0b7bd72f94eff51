package configs_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i2y/jira-mcp/configs"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jira-mcp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	assert := assert.New(t)
	t.Setenv("JIRA_BASE_URL", "https://jira.example.com")

	cfg, err := configs.Load()
	require.NoError(t, err)

	assert.Equal("https://jira.example.com", cfg.BaseURL)
	assert.Equal(30*time.Second, cfg.HTTPClientTimeout)
	assert.Equal(":8080", cfg.ListenAddr)
	assert.Equal(":8081", cfg.AdminAddr)
	assert.Equal(5*time.Second, cfg.ShutdownTimeout)
	assert.Equal(slog.LevelInfo, cfg.ParsedLogLevel())
	assert.True(cfg.OtelExporterOtlpInsecure)
	assert.NoError(cfg.Validate())
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	path := writeConfigFile(t, `
base_url: https://file.example.com
email: file@example.com
headers:
  X-Atlassian-Token: no-check
`)

	t.Run("file values are used", func(t *testing.T) {
		assert := assert.New(t)
		t.Setenv("JIRA_CONFIG_FILE", path)
		t.Setenv("JIRA_API_TOKEN", "secret")

		cfg, err := configs.Load()
		require.NoError(t, err)

		assert.Equal("https://file.example.com", cfg.BaseURL)
		assert.Equal("file@example.com", cfg.Email)
		assert.Equal(map[string]string{"X-Atlassian-Token": "no-check"}, cfg.Headers)
		assert.Equal("secret", cfg.APIToken)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		assert := assert.New(t)
		t.Setenv("JIRA_CONFIG_FILE", path)
		t.Setenv("JIRA_BASE_URL", "https://env.example.com")
		t.Setenv("JIRA_HEADERS", "X-Env:1")
		t.Setenv("JIRA_HTTP_CLIENT_TIMEOUT", "2s")
		t.Setenv("JIRA_LOG_LEVEL", "DEBUG")

		cfg, err := configs.Load()
		require.NoError(t, err)

		assert.Equal("https://env.example.com", cfg.BaseURL)
		assert.Equal("file@example.com", cfg.Email)
		assert.Equal(map[string]string{"X-Env": "1"}, cfg.Headers)
		assert.Equal(2*time.Second, cfg.HTTPClientTimeout)
		assert.Equal(slog.LevelDebug, cfg.ParsedLogLevel())
	})
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		t.Setenv("JIRA_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
		_, err := configs.Load()
		assert.Error(t, err)
	})

	t.Run("malformed file", func(t *testing.T) {
		t.Setenv("JIRA_CONFIG_FILE", writeConfigFile(t, "base_url: [unclosed"))
		_, err := configs.Load()
		assert.Error(t, err)
	})

	t.Run("malformed duration", func(t *testing.T) {
		t.Setenv("JIRA_HTTP_CLIENT_TIMEOUT", "soon")
		_, err := configs.Load()
		assert.Error(t, err)
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() configs.Config {
		return configs.Config{BaseURL: "https://jira.example.com", HTTPClientTimeout: time.Second}
	}

	tests := []struct {
		name    string
		mutate  func(*configs.Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*configs.Config) {}},
		{name: "valid with context path", mutate: func(c *configs.Config) { c.BaseURL = "http://localhost:8080/jira" }},
		{name: "missing base URL", mutate: func(c *configs.Config) { c.BaseURL = "" }, wantErr: "JIRA_BASE_URL is required"},
		{name: "relative base URL", mutate: func(c *configs.Config) { c.BaseURL = "jira.example.com" }, wantErr: "absolute http(s) URL"},
		{name: "unsupported scheme", mutate: func(c *configs.Config) { c.BaseURL = "ftp://jira.example.com" }, wantErr: "absolute http(s) URL"},
		{name: "email without token", mutate: func(c *configs.Config) { c.Email = "jane@example.com" }, wantErr: "JIRA_API_TOKEN is required"},
		{name: "non-positive timeout", mutate: func(c *configs.Config) { c.HTTPClientTimeout = 0 }, wantErr: "must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_ParsedLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"Error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for level, want := range tests {
		cfg := configs.Config{LogLevel: level}
		assert.Equal(t, want, cfg.ParsedLogLevel(), "level %q", level)
	}
}
