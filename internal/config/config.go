// Package config loads the storefront settings: built-in defaults, then an
// optional YAML file named by STOREFRONT_CONFIG, then environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Snapshot backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendCached = "cached"
)

type Config struct {
	HTTPPort string `yaml:"http_port"`
	GRPCPort string `yaml:"grpc_port"`

	RequestTimeout     time.Duration `yaml:"request_timeout"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`
	MaxRequestBodySize int64         `yaml:"max_request_body_size"`

	Log      LogConfig      `yaml:"log"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Orders   OrdersConfig   `yaml:"orders"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Auth     AuthConfig     `yaml:"auth"`
	Visitors VisitorConfig  `yaml:"visitors"`
}

type LogConfig struct {
	Mode  string `yaml:"mode"`
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type SnapshotConfig struct {
	Backend       string        `yaml:"backend"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisTTL      time.Duration `yaml:"redis_ttl"`
	RedisJitter   time.Duration `yaml:"redis_jitter"`
	MongoURI      string        `yaml:"mongo_uri"`
	MongoDBName   string        `yaml:"mongo_db_name"`
}

type CatalogConfig struct {
	DBPath         string `yaml:"db_path"`
	MigrationsPath string `yaml:"migrations_path"`
}

// OrdersConfig selects Postgres when DBHost is set; otherwise orders are
// kept in memory.
type OrdersConfig struct {
	DBHost         string `yaml:"db_host"`
	DBPort         int    `yaml:"db_port"`
	DBUser         string `yaml:"db_user"`
	DBPassword     string `yaml:"db_password"`
	DBName         string `yaml:"db_name"`
	MigrationsPath string `yaml:"migrations_path"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
}

// AuthConfig selects the HTTP identity gateway when APIURL is set; otherwise
// accounts live in memory and are signed with Secret.
type AuthConfig struct {
	APIURL      string        `yaml:"api_url"`
	Timeout     time.Duration `yaml:"timeout"`
	Secret      string        `yaml:"secret"`
	AutoConfirm bool          `yaml:"auto_confirm"`
}

type VisitorConfig struct {
	IdleTTL       time.Duration `yaml:"idle_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

func Default() *Config {
	return &Config{
		HTTPPort:           "8080",
		GRPCPort:           "50060",
		RequestTimeout:     30 * time.Second,
		ShutdownTimeout:    10 * time.Second,
		MaxRequestBodySize: 1 << 20, // 1MB
		Log: LogConfig{
			Mode:  "production",
			Level: "info",
		},
		Snapshot: SnapshotConfig{
			Backend:     BackendMemory,
			RedisAddr:   "localhost:6379",
			RedisTTL:    30 * 24 * time.Hour,
			RedisJitter: time.Hour,
			MongoURI:    "mongodb://localhost:27017",
			MongoDBName: "storefront",
		},
		Catalog: CatalogConfig{
			DBPath:         "./data/catalog.db",
			MigrationsPath: "./internal/catalog/migrations",
		},
		Orders: OrdersConfig{
			DBPort:         5432,
			DBUser:         "postgres",
			DBPassword:     "postgres",
			DBName:         "storefront",
			MigrationsPath: "./internal/orders/migrations",
		},
		Auth: AuthConfig{
			Timeout:     10 * time.Second,
			Secret:      "dev-secret",
			AutoConfirm: true,
		},
		Visitors: VisitorConfig{
			IdleTTL:       30 * time.Minute,
			SweepInterval: time.Minute,
		},
	}
}

// Load builds the configuration and validates it.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("STOREFRONT_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.HTTPPort = getEnv("HTTP_PORT", c.HTTPPort)
	c.GRPCPort = getEnv("GRPC_PORT", c.GRPCPort)

	c.Log.Mode = getEnv("LOG_MODE", c.Log.Mode)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.File = getEnv("LOG_FILE", c.Log.File)

	c.Snapshot.Backend = getEnv("SNAPSHOT_BACKEND", c.Snapshot.Backend)
	c.Snapshot.RedisAddr = getEnv("REDIS_ADDR", c.Snapshot.RedisAddr)
	c.Snapshot.RedisPassword = getEnv("REDIS_PASSWORD", c.Snapshot.RedisPassword)
	c.Snapshot.MongoURI = getEnv("MONGO_URI", c.Snapshot.MongoURI)
	c.Snapshot.MongoDBName = getEnv("MONGO_DB_NAME", c.Snapshot.MongoDBName)

	c.Catalog.DBPath = getEnv("CATALOG_DB_PATH", c.Catalog.DBPath)
	c.Catalog.MigrationsPath = getEnv("CATALOG_MIGRATIONS_PATH", c.Catalog.MigrationsPath)

	c.Orders.DBHost = getEnv("DB_HOST", c.Orders.DBHost)
	c.Orders.DBUser = getEnv("DB_USER", c.Orders.DBUser)
	c.Orders.DBPassword = getEnv("DB_PASSWORD", c.Orders.DBPassword)
	c.Orders.DBName = getEnv("DB_NAME", c.Orders.DBName)
	c.Orders.MigrationsPath = getEnv("MIGRATIONS_PATH", c.Orders.MigrationsPath)
	if v := os.Getenv("DB_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DB_PORT: %w", err)
		}
		c.Orders.DBPort = port
	}

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
	}

	c.Auth.APIURL = getEnv("AUTH_API_URL", c.Auth.APIURL)
	c.Auth.Secret = getEnv("AUTH_SECRET", c.Auth.Secret)
	if v := os.Getenv("AUTH_AUTO_CONFIRM"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid AUTH_AUTO_CONFIRM: %w", err)
		}
		c.Auth.AutoConfirm = b
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"REQUEST_TIMEOUT", &c.RequestTimeout},
		{"SHUTDOWN_TIMEOUT", &c.ShutdownTimeout},
		{"AUTH_TIMEOUT", &c.Auth.Timeout},
		{"SNAPSHOT_TTL", &c.Snapshot.RedisTTL},
		{"VISITOR_IDLE_TTL", &c.Visitors.IdleTTL},
	}
	for _, d := range durations {
		v := os.Getenv(d.key)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = parsed
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Snapshot.Backend {
	case BackendMemory, BackendRedis, BackendMongo, BackendCached:
	default:
		return fmt.Errorf("unknown snapshot backend %q", c.Snapshot.Backend)
	}
	if c.HTTPPort == "" {
		return fmt.Errorf("http port is required")
	}
	if c.RequestTimeout <= 0 || c.Auth.Timeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
