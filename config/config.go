package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Catalog backends.
const (
	BackendFile   = "file"
	BackendMongo  = "mongo"
	BackendSQLite = "sqlite"
)

// DefaultJWTSecret is used when JWT_SECRET is unset. It is public, so tokens
// signed with it prove nothing.
const DefaultJWTSecret = "your-secret-key"

type Config struct {
	Port      string `validate:"required"`
	LogLevel  string `validate:"oneof=debug info warn warning error"`
	LogFormat string `validate:"oneof=text json"`

	Backend       string `validate:"oneof=file mongo sqlite"`
	CatalogFile   string `validate:"required_if=Backend file"`
	MongoURI      string `validate:"required_if=Backend mongo"`
	MongoDatabase string `validate:"required_if=Backend mongo"`
	SQLitePath    string `validate:"required_if=Backend sqlite"`

	// RedisHost empty disables the response cache.
	RedisHost         string
	RedisPort         string
	RedisPassword     string
	RedisDB           int           `validate:"gte=0"`
	CacheTTL          time.Duration `validate:"gt=0"`
	CacheWarmInterval time.Duration `validate:"gte=0"`

	JWTSecret string `validate:"required"`
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() *Config {
	return &Config{
		Port:      getEnv("PORT", "3000"),
		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),

		Backend:       strings.ToLower(getEnv("CATALOG_BACKEND", BackendFile)),
		CatalogFile:   getEnv("CATALOG_FILE", "data/db.json"),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017/"),
		MongoDatabase: getEnv("MONGO_DATABASE", "art-waves"),
		SQLitePath:    getEnv("SQLITE_PATH", "data/catalog.db"),

		RedisHost:         getEnv("REDIS_HOST", ""),
		RedisPort:         getEnv("REDIS_PORT", "6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvAsInt("REDIS_DB", 0),
		CacheTTL:          getEnvAsDuration("CACHE_TTL", 5*time.Minute),
		CacheWarmInterval: getEnvAsDuration("CACHE_WARM_INTERVAL", 0),

		JWTSecret: getEnv("JWT_SECRET", DefaultJWTSecret),
	}
}

// Validate reports the first problem with the configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// CacheEnabled reports whether a Redis host is configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisHost != ""
}

// DefaultSecret reports whether tokens are verified with DefaultJWTSecret.
func (c *Config) DefaultSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go durations ("90s") and bare seconds ("90").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
