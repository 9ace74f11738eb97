package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Auth      AuthConfig
	CORS      CORSConfig
	Redis     RedisConfig
	UI        UIConfig
	RateLimit RateLimitConfig
	LogLevel  slog.Level
}

type ServerConfig struct {
	Host string
	Port string
}

type DBConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

type AuthConfig struct {
	JWTSecret    string
	JWTExpiry    time.Duration
	CookieSecure bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

// RedisConfig is optional; an empty Addr disables the email cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	EmailTTL time.Duration
}

type UIConfig struct {
	PageSize      int
	AuditPageSize int
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

func Load() (*Config, error) {
	jwtExpiry, err := time.ParseDuration(envOrDefault("PADDOCK_JWT_EXPIRY", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid PADDOCK_JWT_EXPIRY: %w", err)
	}

	emailTTL, err := time.ParseDuration(envOrDefault("PADDOCK_EMAIL_CACHE_TTL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid PADDOCK_EMAIL_CACHE_TTL: %w", err)
	}

	pageSize, err := envInt("PADDOCK_PAGE_SIZE", 5)
	if err != nil {
		return nil, err
	}
	auditPageSize, err := envInt("PADDOCK_AUDIT_PAGE_SIZE", 0)
	if err != nil {
		return nil, err
	}
	redisDB, err := envInt("PADDOCK_REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	burst, err := envInt("PADDOCK_RATE_LIMIT_BURST", 60)
	if err != nil {
		return nil, err
	}
	rps, err := strconv.ParseFloat(envOrDefault("PADDOCK_RATE_LIMIT_RPS", "30"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid PADDOCK_RATE_LIMIT_RPS: %w", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(envOrDefault("PADDOCK_LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid PADDOCK_LOG_LEVEL: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: envOrDefault("PADDOCK_HOST", "0.0.0.0"),
			Port: envOrDefault("PADDOCK_PORT", "8080"),
		},
		DB: DBConfig{
			Host:     envOrDefault("PADDOCK_DB_HOST", "localhost"),
			Port:     envOrDefault("PADDOCK_DB_PORT", "5432"),
			Name:     envOrDefault("PADDOCK_DB_NAME", "paddock"),
			User:     envOrDefault("PADDOCK_DB_USER", "paddock"),
			Password: envOrDefault("PADDOCK_DB_PASSWORD", "paddock"),
			SSLMode:  envOrDefault("PADDOCK_DB_SSLMODE", "disable"),
		},
		Auth: AuthConfig{
			JWTSecret:    envOrDefault("PADDOCK_JWT_SECRET", "change-me-in-production"),
			JWTExpiry:    jwtExpiry,
			CookieSecure: envOrDefault("PADDOCK_COOKIE_SECURE", "false") == "true",
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(envOrDefault("PADDOCK_CORS_ORIGINS", "http://localhost:3000")),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("PADDOCK_REDIS_ADDR"),
			Password: os.Getenv("PADDOCK_REDIS_PASSWORD"),
			DB:       redisDB,
			EmailTTL: emailTTL,
		},
		UI: UIConfig{
			PageSize:      pageSize,
			AuditPageSize: auditPageSize,
		},
		RateLimit: RateLimitConfig{
			RPS:   rps,
			Burst: burst,
		},
		LogLevel: level,
	}

	if cfg.UI.PageSize < 1 || cfg.UI.PageSize > 100 {
		return nil, fmt.Errorf("PADDOCK_PAGE_SIZE must be between 1 and 100")
	}
	if cfg.UI.AuditPageSize < 0 {
		return nil, fmt.Errorf("PADDOCK_AUDIT_PAGE_SIZE must not be negative")
	}

	return cfg, nil
}

func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
