package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
)

type Config struct {
	Addr               string
	Environment        string
	DatabaseURL        string
	StoreDriver        string
	SQLitePath         string
	JWTSecret          string
	DataEncryptionKey  string
	MigrationsDir      string
	RunMigrations      bool
	MaxBodyBytes       int64
	RateLimitPerMinute int
	MetricsEnabled     bool
	LogLevel           slog.Level
	CORSAllowedOrigins []string
	PayrollTimeout     time.Duration
	Payslip            PayslipConfig
}

// PayslipConfig drives the look of rendered payslips.
type PayslipConfig struct {
	BrandName string
	Tagline   string
	Currency  string
	Timezone  string
	LogoPath  string
	Compress  bool
}

// Load reads the environment, after merging a .env file from the working directory if one exists.
// Variables already set in the environment win over the file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:               getEnv("APP_ADDR", ":8080"),
		Environment:        getEnv("APP_ENV", "development"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		StoreDriver:        strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
		SQLitePath:         getEnv("SQLITE_PATH", "payroll.db"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		DataEncryptionKey:  getEnv("DATA_ENCRYPTION_KEY", ""),
		MigrationsDir:      getEnv("MIGRATIONS_DIR", "migrations"),
		RunMigrations:      getEnvBool("RUN_MIGRATIONS", true),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),
		LogLevel:           getEnvLevel("LOG_LEVEL", slog.LevelInfo),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		PayrollTimeout:     getEnvDuration("PAYROLL_TIMEOUT", 15*time.Second),
		Payslip: PayslipConfig{
			BrandName: getEnv("PAYSLIP_BRAND_NAME", "HRM PRO"),
			Tagline:   getEnv("PAYSLIP_BRAND_TAGLINE", "Employee Management System"),
			Currency:  getEnv("PAYSLIP_CURRENCY", "INR"),
			Timezone:  getEnv("PAYSLIP_TIMEZONE", "Asia/Kolkata"),
			LogoPath:  getEnv("PAYSLIP_LOGO_PATH", ""),
			Compress:  getEnvBool("PAYSLIP_PDF_COMPRESS", true),
		},
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvLevel(key string, fallback slog.Level) slog.Level {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return fallback
	}
	return level
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Location resolves the payslip timezone.
func (c PayslipConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
	case StoreDriverSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("SQLITE_PATH is required when STORE_DRIVER is sqlite")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q", StoreDriverPostgres, StoreDriverSQLite)
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Environment == "production" {
		if len(c.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
		}
		if strings.TrimSpace(c.DataEncryptionKey) == "" {
			return fmt.Errorf("DATA_ENCRYPTION_KEY must be set in production for encryption at rest")
		}
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.PayrollTimeout <= 0 {
		return fmt.Errorf("PAYROLL_TIMEOUT must be positive")
	}
	if strings.TrimSpace(c.Payslip.Currency) == "" {
		return fmt.Errorf("PAYSLIP_CURRENCY must not be empty")
	}
	if _, err := c.Payslip.Location(); err != nil {
		return fmt.Errorf("PAYSLIP_TIMEZONE: %w", err)
	}
	return nil
}
