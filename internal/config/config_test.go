package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"caselens/internal/config"
)

func TestLoadConfig(t *testing.T) {
	os.Setenv("DB_HOST", "test-host")
	defer os.Unsetenv("DB_HOST")

	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.Equal(t, "test-host", cfg.DBHost)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.DrainInterval)
	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, 500, cfg.MaxChunkWords)
	assert.Equal(t, "por", cfg.OCRLanguage)
	assert.Equal(t, "file://migrations", cfg.MigrationPath)
}

func TestLoadConfig_FromEnvFile(t *testing.T) {
	content := []byte("DB_HOST=loaded-from-file")
	err := os.WriteFile(".env", content, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(".env")

	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.Equal(t, "loaded-from-file", cfg.DBHost)
}

func TestLoadConfig_DrainInterval(t *testing.T) {
	os.Setenv("DRAIN_INTERVAL", "30s")
	defer os.Unsetenv("DRAIN_INTERVAL")

	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.DrainInterval)
}

func TestLoadConfig_RejectsNonPositiveBatchSize(t *testing.T) {
	os.Setenv("BATCH_SIZE", "0")
	defer os.Unsetenv("BATCH_SIZE")

	_, err := config.Load()
	assert.ErrorIs(t, err, config.ErrMissingRequired)
}
