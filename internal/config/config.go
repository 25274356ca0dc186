package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds Postgres connection settings.
type DatabaseConfig struct {
	Host          string
	Port          int
	User          string
	Password      string
	Database      string
	SSLMode       string
	MaxConns      int
	MaxIdle       int
	RetryAttempts int
}

// GetDSN returns a lib/pq keyword/value connection string.
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// Config rentald configuration
type Config struct {
	HTTP struct {
		Addr         string
		MaxBodyBytes int64
		CORSOrigin   string
	}
	DBEnabled bool
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       struct {
		Level  string
		Format string
	}
	Upload struct {
		Dir            string
		PlaceholderURL string
	}
	Ledger struct {
		Timezone string
	}
	Auth struct {
		BcryptCost        int
		MaxFailedAttempts int
		LockoutWindow     time.Duration
		SeedAdmin         bool
		SeedAdminUsername string
		SeedAdminPassword string
		SeedAdminName     string
	}
	Client struct {
		APIURL string
	}
}

// DefaultPlaceholderURL is stored as the house image when no file is attached.
const DefaultPlaceholderURL = "https://placehold.co/800x600/85c1e9/FFFFFF?font=roboto&text=NO%20IMAGE%20CAPITAL"

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")
	cfg.HTTP.MaxBodyBytes = int64(parseInt(getEnv("HTTP_MAX_BODY_BYTES", "10485760"), 10<<20))
	cfg.HTTP.CORSOrigin = getEnv("HTTP_CORS_ORIGIN", "*")

	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "house_rental_db")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "20"), 20)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)
	cfg.Database.RetryAttempts = parseInt(getEnv("DB_RETRY_ATTEMPTS", "3"), 3)

	cfg.Redis.Enabled = getEnv("REDIS_ENABLED", "false") == "true"
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.Upload.Dir = getEnv("UPLOAD_DIR", "uploads")
	cfg.Upload.PlaceholderURL = getEnv("UPLOAD_PLACEHOLDER_URL", DefaultPlaceholderURL)

	cfg.Ledger.Timezone = getEnv("LEDGER_TIMEZONE", "Local")

	cfg.Auth.BcryptCost = parseInt(getEnv("AUTH_BCRYPT_COST", "10"), 10)
	cfg.Auth.MaxFailedAttempts = parseInt(getEnv("AUTH_MAX_FAILED_ATTEMPTS", "5"), 5)
	cfg.Auth.LockoutWindow = parseDuration(getEnv("AUTH_LOCKOUT_WINDOW", "15m"), 15*time.Minute)
	cfg.Auth.SeedAdmin = getEnv("SEED_ADMIN", "false") == "true"
	cfg.Auth.SeedAdminUsername = getEnv("SEED_ADMIN_USERNAME", "admin")
	cfg.Auth.SeedAdminPassword = getEnv("SEED_ADMIN_PASSWORD", "")
	cfg.Auth.SeedAdminName = getEnv("SEED_ADMIN_NAME", "Administrator")

	cfg.Client.APIURL = getEnv("RENTALD_API_URL", "http://localhost:8080")

	return cfg
}

// Location resolves the ledger calendar. Unknown names fall back to time.Local.
func (c *Config) Location() *time.Location {
	if c.Ledger.Timezone == "" || c.Ledger.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Ledger.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
