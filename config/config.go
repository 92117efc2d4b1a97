package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Storage  StorageConfig
	Observ   ObservabilityConfig
	Business BusinessConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig selects the record store. An empty URL runs on the in-memory store.
type DatabaseConfig struct {
	URL string
}

// RedisConfig is optional; without it locking is in-process and the catalog is not cached
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig is optional; without brokers events are dropped and emails are sent inline
type KafkaConfig struct {
	Brokers            []string
	TopicEvents        string
	TopicNotifications string
	ConsumerGroup      string
}

// StorageConfig is the signature image bucket. An empty bucket keeps signatures inline.
type StorageConfig struct {
	Bucket          string
	CredentialsFile string
	PublicBaseURL   string
}

type ObservabilityConfig struct {
	JaegerEndpoint string
}

type BusinessConfig struct {
	AdminEmail      string
	CatalogCacheTTL time.Duration
}

func Load() *Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	cacheTTL, err := time.ParseDuration(getEnv("CATALOG_CACHE_TTL", "5m"))
	if err != nil {
		cacheTTL = 5 * time.Minute
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers:            splitList(getEnv("KAFKA_BROKERS", "")),
			TopicEvents:        getEnv("KAFKA_TOPIC_EVENTS", "estimate-events"),
			TopicNotifications: getEnv("KAFKA_TOPIC_NOTIFICATIONS", "estimate-notifications"),
			ConsumerGroup:      getEnv("KAFKA_CONSUMER_GROUP", "estimate-service-group"),
		},
		Storage: StorageConfig{
			Bucket:          getEnv("GCS_BUCKET", ""),
			CredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
			PublicBaseURL:   getEnv("GCS_PUBLIC_BASE", "https://storage.googleapis.com"),
		},
		Observ: ObservabilityConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", ""),
		},
		Business: BusinessConfig{
			AdminEmail:      getEnv("ADMIN_EMAIL", ""),
			CatalogCacheTTL: cacheTTL,
		},
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
