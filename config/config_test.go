package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaultsToOfflineMode(t *testing.T) {
	for _, key := range []string{"DATABASE_URL", "REDIS_ADDR", "KAFKA_BROKERS", "GCS_BUCKET", "CATALOG_CACHE_TTL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Empty(t, cfg.Database.URL)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Empty(t, cfg.Storage.Bucket)
	assert.Equal(t, 5*time.Minute, cfg.Business.CatalogCacheTTL)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("CATALOG_CACHE_TTL", "30s")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")

	cfg := Load()
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 30*time.Second, cfg.Business.CatalogCacheTTL)
	assert.Equal(t, "admin@example.com", cfg.Business.AdminEmail)
}
