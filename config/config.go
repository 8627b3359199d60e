// server/config/config.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTP     HTTPConfig
	Database DatabaseConfig
	Session  SessionConfig
	Log      LogConfig
	Auth     AuthConfig
}

type HTTPConfig struct {
	Addr        string
	PublicDir   string
	CORSOrigins string
}

type DatabaseConfig struct {
	URL string
}

type SessionConfig struct {
	Backend      string // postgres | redis | memory
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
	RedisAddr    string
}

type LogConfig struct {
	Level  string
	Format string // console | json
}

type AuthConfig struct {
	BcryptCost int
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTP: HTTPConfig{
			Addr:        getEnv("NOTES_ADDR", ":3000"),
			PublicDir:   getEnv("PUBLIC_DIR", "./public"),
			CORSOrigins: getEnv("CORS_ORIGINS", ""),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Session: SessionConfig{
			Backend:    strings.ToLower(getEnv("SESSION_BACKEND", "postgres")),
			CookieName: getEnv("SESSION_COOKIE", "notes_session"),
			RedisAddr:  getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "console")),
		},
	}

	var err error
	if cfg.Session.TTL, err = getEnvDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.Session.CookieSecure, err = getEnvBool("COOKIE_SECURE", false); err != nil {
		return nil, err
	}
	if cfg.Auth.BcryptCost, err = getEnvInt("BCRYPT_COST", 10); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Session.Backend {
	case "postgres", "redis", "memory":
	default:
		return fmt.Errorf("SESSION_BACKEND must be postgres, redis or memory, got %q", c.Session.Backend)
	}
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is not set")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}
	return nil
}

// String masks the database password.
func (c *Config) String() string {
	return fmt.Sprintf("Config{addr: %s, db: %s, sessions: %s/%s, log: %s/%s}",
		c.HTTP.Addr, maskURL(c.Database.URL), c.Session.Backend, c.Session.TTL, c.Log.Level, c.Log.Format)
}

func maskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	if value, exists := os.LookupEnv(key); exists {
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
		}
		return n, nil
	}
	return defaultVal, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	if value, exists := os.LookupEnv(key); exists {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("invalid boolean for %s: %w", key, err)
		}
		return b, nil
	}
	return defaultVal, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	if value, exists := os.LookupEnv(key); exists {
		d, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
		}
		return d, nil
	}
	return defaultVal, nil
}
