package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	apperrors "civicreport/internal/errors"
)

// EnvProduction is the APP_ENV value that enables production cookie attributes.
const EnvProduction = "production"

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort  string
	Environment string
	MySQLDSN    string
	ResetDB     bool
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	JWTSecret   string
	SwaggerHost string

	LogLevel  string
	LogFormat string

	HashWorkers       int
	Argon2MemoryKB    int
	Argon2Time        int
	Argon2Parallelism int

	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string
}

// Load builds Config from environment with sensible defaults.
// A missing JWT_SECRET is a fatal configuration error.
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		Environment: strings.ToLower(getEnv("APP_ENV", "development")),
		MySQLDSN:    getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/app?charset=utf8mb4&parseTime=True&loc=Local"),
		ResetDB:     os.Getenv("RESET_DB") == "true",
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:     getEnvInt("REDIS_DB", 0),
		RedisPass:   os.Getenv("REDIS_PASSWORD"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		SwaggerHost: os.Getenv("SWAGGER_HOST"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		HashWorkers:       getEnvInt("HASH_WORKERS", 1),
		Argon2MemoryKB:    getEnvInt("ARGON2_MEMORY_KB", 64*1024),
		Argon2Time:        getEnvInt("ARGON2_TIME", 3),
		Argon2Parallelism: getEnvInt("ARGON2_PARALLELISM", 2),

		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    getEnv("S3_BUCKET", "incidents"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),
	}

	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set: %w", apperrors.ErrConfigFatal)
	}
	if cfg.HashWorkers < 0 {
		return nil, fmt.Errorf("HASH_WORKERS must be >= 0, got %d: %w", cfg.HashWorkers, apperrors.ErrConfigFatal)
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}
