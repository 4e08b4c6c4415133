package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Redis     RedisConfig
	Inventory InventoryConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Name           string
	Port           string
	Env            string
	RequestTimeout time.Duration
	BodyLimitMB    int
	CORSOrigins    string
}

// DatabaseConfig selects the GORM dialector and its DSN.
type DatabaseConfig struct {
	Driver   string // postgres | sqlite
	DSN      string
	LogLevel string // silent | error | warn | info
}

// AuthConfig holds token settings and the seeded administrator account.
type AuthConfig struct {
	JWTSecret     string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	AdminEmail    string
	AdminPassword string
}

// RedisConfig configures the category cache. An empty Addr disables it.
type RedisConfig struct {
	Addr        string
	Password    string
	CategoryTTL time.Duration
}

// InventoryConfig holds inventory-specific settings.
type InventoryConfig struct {
	Timezone string
	Location *time.Location
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// a missing .env is fine when configuration comes from the environment
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Name:           getenvWithDefault("APP_NAME", "Inventory Ledger v1.0"),
			Port:           getenvWithDefault("APP_PORT", "3000"),
			Env:            getenvWithDefault("APP_ENV", "development"),
			RequestTimeout: getDuration("REQUEST_TIMEOUT", 10*time.Second),
			BodyLimitMB:    getInt("BODY_LIMIT_MB", 10),
			CORSOrigins:    getenvWithDefault("CORS_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(getenvWithDefault("DB_DRIVER", "postgres")),
			DSN:      databaseDSN(),
			LogLevel: strings.ToLower(getenvWithDefault("DB_LOG_LEVEL", "warn")),
		},
		Auth: AuthConfig{
			JWTSecret:     getenvWithDefault("JWT_SECRET", "your-super-secret-key-change-in-production"),
			AccessTTL:     getDuration("JWT_ACCESS_TTL", 15*time.Minute),
			RefreshTTL:    getDuration("JWT_REFRESH_TTL", 168*time.Hour),
			AdminEmail:    getenvWithDefault("ADMIN_EMAIL", "admin@example.com"),
			AdminPassword: getenvWithDefault("ADMIN_PASSWORD", "admin123"),
		},
		Redis: RedisConfig{
			Addr:        os.Getenv("REDIS_ADDR"),
			Password:    os.Getenv("REDIS_PASSWORD"),
			CategoryTTL: getDuration("CATEGORY_CACHE_TTL", 5*time.Minute),
		},
		Inventory: InventoryConfig{
			Timezone: getenvWithDefault("APP_TIMEZONE", "Asia/Jakarta"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures mandatory settings are usable and resolves the timezone.
func (c *Config) Validate() error {
	var missing []string

	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (supported: postgres, sqlite)", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.Auth.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration values: %v", missing)
	}

	if c.Server.RequestTimeout <= 0 || c.Auth.AccessTTL <= 0 || c.Auth.RefreshTTL <= 0 {
		return errors.New("durations must be positive")
	}
	if c.Server.BodyLimitMB <= 0 {
		return errors.New("BODY_LIMIT_MB must be positive")
	}

	loc, err := time.LoadLocation(c.Inventory.Timezone)
	if err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.Inventory.Timezone, err)
	}
	c.Inventory.Location = loc

	return nil
}

// IsProduction reports whether the app runs with production defaults.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

func databaseDSN() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	if strings.ToLower(os.Getenv("DB_DRIVER")) == "sqlite" {
		return "inventory.db"
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		getenvWithDefault("DB_HOST", "localhost"),
		getenvWithDefault("DB_USER", "postgres"),
		os.Getenv("DB_PASSWORD"),
		getenvWithDefault("DB_NAME", "inventory"),
		getenvWithDefault("DB_PORT", "5432"),
	)
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}
