// Package config は環境変数 (と .env ファイル) からアプリケーション設定を読み込みます。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

type Config struct {
	AppPort string
	GinMode string

	// DB
	DBDriver    string
	DBUser      string
	DBPass      string
	DBHost      string
	DBPort      string
	DBName      string
	DatabaseURL string // postgres のみ

	LogLevel  string
	LogFormat string

	CORSAllowOrigins []string

	// Rate limit (REDIS_ADDR が空なら無効)
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	RateLimit       int
	RateLimitWindow time.Duration
}

// Default は環境変数を読まずに既定値だけの Config を返します。
func Default() *Config {
	return &Config{
		AppPort:          "8080",
		GinMode:          "release",
		DBDriver:         DriverMySQL,
		DBHost:           "127.0.0.1",
		DBPort:           "3306",
		DBName:           "todos",
		LogLevel:         "info",
		LogFormat:        "text",
		CORSAllowOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		RateLimit:        120,
		RateLimitWindow:  60 * time.Second,
	}
}

// Load は envFile (空なら .env) を読み込んだうえで環境変数から設定を組み立てます。
// ファイルが存在しない場合はエラーにしません。
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := Default()
	cfg.AppPort = getEnv("APP_PORT", cfg.AppPort)
	cfg.GinMode = getEnv("GIN_MODE", cfg.GinMode)

	cfg.DBDriver = strings.ToLower(getEnv("DB_DRIVER", cfg.DBDriver))
	cfg.DBUser = os.Getenv("DB_USER")
	cfg.DBPass = os.Getenv("DB_PASS")
	cfg.DBHost = getEnv("DB_HOST", cfg.DBHost)
	cfg.DBPort = getEnv("DB_PORT", cfg.DBPort)
	cfg.DBName = getEnv("DB_NAME", cfg.DBName)
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)

	if v := os.Getenv("CORS_ALLOW_ORIGINS"); v != "" {
		cfg.CORSAllowOrigins = splitList(v)
	}

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")

	var err error
	if cfg.RedisDB, err = getInt("REDIS_DB", cfg.RedisDB); err != nil {
		return nil, err
	}
	if cfg.RateLimit, err = getInt("RATE_LIMIT", cfg.RateLimit); err != nil {
		return nil, err
	}
	windowSeconds, err := getInt("RATE_LIMIT_WINDOW_SECONDS", int(cfg.RateLimitWindow/time.Second))
	if err != nil {
		return nil, err
	}
	cfg.RateLimitWindow = time.Duration(windowSeconds) * time.Second

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate は設定値の組み合わせを検証します。
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverMySQL:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want mysql or postgres)", c.DBDriver)
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("RATE_LIMIT must be positive, got %d", c.RateLimit)
	}
	if c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW_SECONDS must be positive, got %s", c.RateLimitWindow)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
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
