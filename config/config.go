package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	CORS        CORSConfig
	SMTP        SMTPConfig
	S3          S3Config
	Checkout    CheckoutConfig
	Maintenance MaintenanceConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	BaseURL         string // CloudFront or S3 direct URL
}

// CheckoutConfig bounds what a single checkout may total.
type CheckoutConfig struct {
	MinOrderTotal float64
	MaxOrderTotal float64
}

// MaintenanceConfig drives the periodic job layer: elapsed-time
// thresholds for the sweeps plus the cron spec of every job.
type MaintenanceConfig struct {
	PendingCancelAfter    time.Duration // abandoned cart cutoff
	ShippedDeliverAfter   time.Duration // assume-arrived cutoff
	InactiveReminderAfter time.Duration
	DeactivateAfter       time.Duration
	RatingCacheTTL        time.Duration
	ReportDir             string

	AvailabilitySpec   string
	OrderSweepSpec     string
	RatingSpec         string
	ReviewCleanupSpec  string
	SalesReportSpec    string
	ReminderSpec       string
	DeactivationSpec   string
	ActivityReportSpec string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "admin"),
			Password: getEnv("DB_PASSWORD", "1234"),
			DBName:   getEnv("DB_NAME", "getter"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
			Enabled:  parseBool(getEnv("REDIS_ENABLED", "true")),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", "your-secret-key"),
			AccessTokenExpiry:  parseDuration(getEnv("JWT_ACCESS_TOKEN_EXPIRY", "15m"), 15*time.Minute),
			RefreshTokenExpiry: parseDuration(getEnv("JWT_REFRESH_TOKEN_EXPIRY", "168h"), 168*time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "noreply@getter.shop"),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "eu-central-1"),
			Bucket:          getEnv("AWS_S3_BUCKET", "getter-uploads"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			BaseURL:         getEnv("AWS_S3_BASE_URL", ""),
		},
		Checkout: CheckoutConfig{
			MinOrderTotal: parseFloat(getEnv("CHECKOUT_MIN_TOTAL", "1"), 1),
			MaxOrderTotal: parseFloat(getEnv("CHECKOUT_MAX_TOTAL", "1000000"), 1000000),
		},
		Maintenance: MaintenanceConfig{
			PendingCancelAfter:    parseDuration(getEnv("PENDING_CANCEL_AFTER", "168h"), 168*time.Hour),
			ShippedDeliverAfter:   parseDuration(getEnv("SHIPPED_DELIVER_AFTER", "72h"), 72*time.Hour),
			InactiveReminderAfter: parseDuration(getEnv("INACTIVE_REMINDER_AFTER", "720h"), 720*time.Hour),
			DeactivateAfter:       parseDuration(getEnv("DEACTIVATE_AFTER", "8760h"), 8760*time.Hour),
			RatingCacheTTL:        parseDuration(getEnv("RATING_CACHE_TTL", "48h"), 48*time.Hour),
			ReportDir:             getEnv("REPORT_DIR", "./reports"),

			AvailabilitySpec:   getEnv("CRON_AVAILABILITY", "0 */3 * * *"),
			OrderSweepSpec:     getEnv("CRON_ORDER_SWEEP", "*/30 * * * *"),
			RatingSpec:         getEnv("CRON_RATINGS", "0 3 * * *"),
			ReviewCleanupSpec:  getEnv("CRON_REVIEW_CLEANUP", "0 2 * * 1"),
			SalesReportSpec:    getEnv("CRON_SALES_REPORT", "0 7 * * *"),
			ReminderSpec:       getEnv("CRON_INACTIVE_REMINDER", "0 10 * * 1,4"),
			DeactivationSpec:   getEnv("CRON_DEACTIVATION", "0 1 1 * *"),
			ActivityReportSpec: getEnv("CRON_ACTIVITY_REPORT", "0 6 * * 1"),
		},
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func parseFloat(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return f
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false
	}
	return b
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
