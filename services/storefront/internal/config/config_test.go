package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8010, cfg.HTTPPort)
	assert.Equal(t, "https://fakestoreapi.com/products", cfg.CatalogURL)
	assert.Equal(t, 0, cfg.CatalogMaxRetries)
	assert.Zero(t, cfg.CatalogTimeout)
	assert.Equal(t, BackendRedis, cfg.StorageBackend)
	assert.Zero(t, cfg.StorageTTL())
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTTL)
	assert.True(t, cfg.VoiceRecognitionEnabled)
	assert.False(t, cfg.VoiceTranscriptConsumerEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
}

func TestLoad_InvalidHTTPPort(t *testing.T) {
	t.Setenv("STOREFRONT_HTTP_PORT", "0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoad_UnknownBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "localstorage")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown STORAGE_BACKEND")
}

func TestLoad_PostgresBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "postgres")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("STORAGE_TTL_HOURS", "48")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, BackendPostgres, cfg.StorageBackend)
	assert.Equal(t, "db.internal", cfg.PostgresHost)
	assert.Equal(t, 48*time.Hour, cfg.StorageTTL())
}

func TestLoad_InvalidSessionTTL(t *testing.T) {
	t.Setenv("SESSION_IDLE_TTL", "0s")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_IDLE_TTL")
}

func TestLoad_InvalidOTELSampleRate(t *testing.T) {
	t.Setenv("OTEL_SAMPLE_RATE", "2.0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OTEL_SAMPLE_RATE must be between 0.0 and 1.0")
}

func TestLoad_InvalidRateLimit(t *testing.T) {
	t.Setenv("VOICE_RATE_LIMIT_BURST", "0")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "voice rate limit")
}

func TestLoad_CatalogOverrides(t *testing.T) {
	t.Setenv("CATALOG_URL", "http://catalog.local/products")
	t.Setenv("CATALOG_TIMEOUT", "3s")
	t.Setenv("CATALOG_MAX_RETRIES", "2")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "http://catalog.local/products", cfg.CatalogURL)
	assert.Equal(t, 3*time.Second, cfg.CatalogTimeout)
	assert.Equal(t, 2, cfg.CatalogMaxRetries)
}
