package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("RECONCILER_DB_PATH", "test.db")
	t.Setenv("RECONCILER_PROCESSING_YEAR", "2025")
	t.Setenv("RECONCILER_CONFIDENCE_FLOOR", "55.5")
	t.Setenv("RECONCILER_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("AZURE_VISION_ENDPOINT", "https://vision.test")
	t.Setenv("AZURE_VISION_KEY", "secret")

	cfg := LoadFromEnv()
	require.NotNil(t, cfg)
	assert.Equal(t, "test.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 2025, cfg.Parsing.ProcessingYear)
	assert.Equal(t, 55.5, cfg.Matching.ConfidenceFloor)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.API.AllowedOrigins)
	assert.True(t, cfg.OCR.Azure.Enabled())
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	t.Setenv("RECONCILER_DB_PATH", "")
	t.Setenv("RECONCILER_CONFIDENCE_FLOOR", "")
	t.Setenv("AZURE_VISION_ENDPOINT", "")

	cfg := LoadFromEnv()
	assert.Equal(t, DefaultDatabasePath, cfg.Storage.DatabasePath)
	assert.Equal(t, DefaultConfidenceFloor, cfg.Matching.ConfidenceFloor)
	assert.Equal(t, DefaultAPIPort, cfg.API.Port)
	assert.Equal(t, "maven", cfg.Observability.Logging.Format)
	assert.False(t, cfg.OCR.Azure.Enabled())
}

func TestLoadOrEnv_FallbackToEnv(t *testing.T) {
	t.Setenv("RECONCILER_DB_PATH", "fallback.db")

	cfg := LoadOrEnvWithPath(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NotNil(t, cfg)
	assert.Equal(t, "fallback.db", cfg.Storage.DatabasePath)
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	configContent := `
storage:
  database_path: "${TEST_DB_PATH}"
parsing:
  processing_year: 2024
matching:
  confidence_floor: 45
api:
  port: 9000
ocr:
  azure:
    endpoint: "https://vision.test"
    api_key: "${TEST_AZURE_KEY}"
    enhance: true
observability:
  logging:
    level: debug
    format: json
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	t.Setenv("TEST_DB_PATH", "expanded.db")
	t.Setenv("TEST_AZURE_KEY", "expanded-key")

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "expanded.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 2024, cfg.Parsing.ProcessingYear)
	assert.Equal(t, 45.0, cfg.Matching.ConfidenceFloor)
	assert.Equal(t, 9000, cfg.API.Port)
	assert.Equal(t, "expanded-key", cfg.OCR.Azure.APIKey)
	assert.True(t, cfg.OCR.Azure.Enhance)
	assert.Equal(t, "json", cfg.Observability.Logging.Format)
}

func TestLoad_AppliesDefaultsToSparseFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("parsing:\n  processing_year: 2023\n"), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, DefaultDatabasePath, cfg.Storage.DatabasePath)
	assert.Equal(t, DefaultConfidenceFloor, cfg.Matching.ConfidenceFloor)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.API.AllowedOrigins)
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("storage: [unclosed"), 0644))

	_, err := Load(configPath)
	assert.Error(t, err)
}
