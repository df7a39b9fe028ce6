package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STOREFRONT_CONFIG", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, BackendMemory, cfg.Snapshot.Backend)
	assert.Empty(t, cfg.Orders.DBHost)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, 10*time.Second, cfg.Auth.Timeout)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_port: "9090"
request_timeout: 5s
snapshot:
  backend: redis
  redis_addr: cache:6379
kafka:
  brokers: [kafka-1:9092]
`), 0o644))

	t.Setenv("STOREFRONT_CONFIG", path)
	t.Setenv("HTTP_PORT", "9191")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6543")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9191", cfg.HTTPPort)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, BackendRedis, cfg.Snapshot.Backend)
	assert.Equal(t, "cache:6379", cfg.Snapshot.RedisAddr)
	assert.Equal(t, []string{"kafka-1:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "db", cfg.Orders.DBHost)
	assert.Equal(t, 6543, cfg.Orders.DBPort)
	assert.Equal(t, "postgres", cfg.Orders.DBUser)
}

func TestLoad_KafkaBrokerList(t *testing.T) {
	t.Setenv("STOREFRONT_CONFIG", "")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"backend", "SNAPSHOT_BACKEND", "sqlite"},
		{"db port", "DB_PORT", "five"},
		{"duration", "AUTH_TIMEOUT", "soon"},
		{"auto confirm", "AUTH_AUTO_CONFIRM", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("STOREFRONT_CONFIG", "")
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("STOREFRONT_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.Error(t, err)
}
