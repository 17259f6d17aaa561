package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigToml = `
[development]
environment = "development"
host = "localhost"
port = 9000
log_level = "trace"
postgres_host = "localhost"
postgres_port = "5432"
postgres_db_name = "gymplan"
llm_provider = "gemini"
llm_model = "gemini-2.5-flash"
generation_timeout = "15s"

[production]
environment = "production"
host = "0.0.0.0"
port = 8080
log_level = "info"
llm_model = "gpt-4o-mini"
llm_temperature = 0.4
llm_max_tokens = 3000
generate_allowed_per_min = 3
catalog_cache_ttl = "1m"
`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(testConfigToml), 0o600))
	return path
}

func TestLoad_Development(t *testing.T) {
	cfg, err := Load("dev", writeTestConfig(t))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "gemini", cfg.LLMProvider)
	assert.Equal(t, 15*time.Second, cfg.GenerationTimeout)
	// defaults
	assert.Equal(t, defaultTemperature, cfg.LLMTemperature)
	assert.Equal(t, defaultMaxTokens, cfg.LLMMaxTokens)
	assert.Equal(t, 5, cfg.GenerateAllowedPerMin)
	assert.Equal(t, 30*time.Second, cfg.CatalogCacheTTL)
}

func TestLoad_Production(t *testing.T) {
	cfg, err := Load("production", writeTestConfig(t))
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLMProvider)
	assert.Equal(t, 0.4, cfg.LLMTemperature)
	assert.Equal(t, 3000, cfg.LLMMaxTokens)
	assert.Equal(t, defaultGenerationTimeout, cfg.GenerationTimeout)
	assert.Equal(t, 3, cfg.GenerateAllowedPerMin)
	assert.Equal(t, time.Minute, cfg.CatalogCacheTTL)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("staging", writeTestConfig(t))
	require.EqualError(t, err, "unknown env: staging")

	_, err = Load("dev", filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[development]\nport = 1\n"), 0o600))
	_, err = Load("prod", path)
	require.ErrorContains(t, err, "not found")
}
