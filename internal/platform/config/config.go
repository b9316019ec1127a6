package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Addr               string
	Environment        string
	DatabaseURL        string
	StoreDriver        string
	SQLitePath         string
	RunMigrations      bool
	MaxBodyBytes       int64
	RateLimitPerMinute int
	CORSAllowedOrigins []string
	PayslipDir         string
	PayslipFontPath    string
	Timezone           string
	PremiumPolicy      string
	PayrollWorkers     int
	JobQueueSize       int
	PayrollRunInterval time.Duration
	MealDailyRate      int64
	TransportDailyRate int64
	SpouseAllowance    int64
	ChildAllowance     int64
	LongevityPerYear   int64
}

// Load reads an optional .env file and then the process environment.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		Addr:               getEnv("APP_ADDR", ":8080"),
		Environment:        getEnv("APP_ENV", "development"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		StoreDriver:        strings.ToLower(getEnv("STORE_DRIVER", DriverPostgres)),
		SQLitePath:         getEnv("SQLITE_PATH", "dotplatform.db"),
		RunMigrations:      getEnvBool("RUN_MIGRATIONS", true),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		PayslipDir:         getEnv("PAYSLIP_DIR", "storage/payslips"),
		PayslipFontPath:    getEnv("PAYSLIP_FONT_PATH", ""),
		Timezone:           getEnv("PAYROLL_TIMEZONE", "Asia/Seoul"),
		PremiumPolicy:      strings.ToLower(getEnv("PAYROLL_PREMIUM_POLICY", "stack")),
		PayrollWorkers:     getEnvInt("PAYROLL_WORKERS", 4),
		JobQueueSize:       getEnvInt("JOB_QUEUE_SIZE", 128),
		PayrollRunInterval: getEnvDuration("PAYROLL_RUN_INTERVAL", 0),
		MealDailyRate:      int64(getEnvInt("MEAL_DAILY_RATE", 0)),
		TransportDailyRate: int64(getEnvInt("TRANSPORT_DAILY_RATE", 0)),
		SpouseAllowance:    int64(getEnvInt("SPOUSE_ALLOWANCE", 40000)),
		ChildAllowance:     int64(getEnvInt("CHILD_ALLOWANCE", 20000)),
		LongevityPerYear:   int64(getEnvInt("LONGEVITY_PER_YEAR", 10000)),
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

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER is postgres")
		}
	case DriverSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("SQLITE_PATH is required when STORE_DRIVER is sqlite")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q", DriverPostgres, DriverSQLite)
	}
	if c.Environment == "production" {
		for _, origin := range c.CORSAllowedOrigins {
			if origin == "*" {
				return fmt.Errorf("CORS_ALLOWED_ORIGINS must not be * in production")
			}
		}
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.PayrollWorkers <= 0 {
		return fmt.Errorf("PAYROLL_WORKERS must be positive")
	}
	if c.JobQueueSize <= 0 {
		return fmt.Errorf("JOB_QUEUE_SIZE must be positive")
	}
	if c.PayrollRunInterval < 0 {
		return fmt.Errorf("PAYROLL_RUN_INTERVAL must not be negative")
	}
	if c.PremiumPolicy != "stack" && c.PremiumPolicy != "max" {
		return fmt.Errorf("PAYROLL_PREMIUM_POLICY must be stack or max")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("PAYROLL_TIMEZONE is invalid: %w", err)
	}
	for name, v := range map[string]int64{
		"MEAL_DAILY_RATE":      c.MealDailyRate,
		"TRANSPORT_DAILY_RATE": c.TransportDailyRate,
		"SPOUSE_ALLOWANCE":     c.SpouseAllowance,
		"CHILD_ALLOWANCE":      c.ChildAllowance,
		"LONGEVITY_PER_YEAR":   c.LongevityPerYear,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	return nil
}
