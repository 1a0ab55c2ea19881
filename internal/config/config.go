package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers for receipt files
const (
	StorageDriverS3    = "s3"
	StorageDriverMinIO = "minio"
	StorageDriverNone  = "none"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL string

	// JWT
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	JWTTTL      time.Duration

	// Server
	Port        string
	CORSOrigins []string
	Env         string
	AppBaseURL  string
	APIBaseURL  string

	// Receipt storage
	StorageDriver string
	S3            S3Config
	MinIO         MinIOConfig

	// Redis (optional, enables the shared cooldown store)
	RedisURL string

	// Mail
	SMTP SMTPConfig

	// Notifications
	CurrencySymbol        string
	NotificationCooldown  time.Duration
	NotificationQueueSize int

	// Login attempts allowed per minute per client IP
	LoginRateLimit int
}

// S3Config holds AWS S3 configuration
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Optional: for MinIO/LocalStack local dev
}

// MinIOConfig holds MinIO configuration
type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
}

// SMTPConfig holds outbound mail configuration. An empty Host disables mail.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		JWTIssuer:     getEnv("JWT_ISSUER", "finance-backend"),
		JWTAudience:   getEnv("JWT_AUDIENCE", "finance-app"),
		JWTTTL:        getEnvDuration("JWT_TTL", 24*time.Hour),
		Port:          getEnv("PORT", "8080"),
		CORSOrigins:   strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		Env:           getEnv("ENV", "development"),
		AppBaseURL:    strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:3000"), "/"),
		APIBaseURL:    strings.TrimRight(getEnv("API_BASE_URL", ""), "/"),
		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverNone)),
		S3: S3Config{
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("S3_BUCKET", "finance-receipts"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""), // Empty = use AWS, set for MinIO/LocalStack
		},
		MinIO: MinIOConfig{
			Endpoint:        getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnv("MINIO_ACCESS_KEY", ""),
			SecretAccessKey: getEnv("MINIO_SECRET_KEY", ""),
			BucketName:      getEnv("MINIO_BUCKET", "finance-receipts"),
			UseSSL:          getEnvBool("MINIO_USE_SSL", false),
		},
		RedisURL: getEnv("REDIS_URL", ""),
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "no-reply@finance.local"),
			UseTLS:   getEnvBool("SMTP_USE_TLS", false),
		},
		CurrencySymbol:        getEnv("CURRENCY_SYMBOL", "₱"),
		NotificationCooldown:  getEnvDuration("NOTIFICATION_COOLDOWN", 24*time.Hour),
		NotificationQueueSize: getEnvInt("NOTIFICATION_QUEUE_SIZE", 256),
		LoginRateLimit:        getEnvInt("LOGIN_RATE_LIMIT", 10),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.JWTSecret) < 32 && c.IsProduction() {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
	}
	switch c.StorageDriver {
	case StorageDriverS3, StorageDriverMinIO, StorageDriverNone:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be one of s3, minio, none (got %q)", c.StorageDriver)
	}
	if c.NotificationCooldown <= 0 {
		return fmt.Errorf("NOTIFICATION_COOLDOWN must be positive")
	}
	if c.NotificationQueueSize <= 0 {
		return fmt.Errorf("NOTIFICATION_QUEUE_SIZE must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
