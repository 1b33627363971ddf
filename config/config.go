package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// DefaultSignedURLExpiry is the lifetime (seconds) of presigned document URLs
	DefaultSignedURLExpiry = 300
	// MaxDocumentUploadSize caps XML evidence uploads at 5MB
	MaxDocumentUploadSize = 5 * 1000 * 1000
)

type Config struct {
	ServerPort  string
	Environment string

	// Database (one physical database, one schema per tenant)
	DBDriver      string // "postgres" or "sqlite" (sqlite is used by tests)
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	ControlSchema string // schema holding the agency directory

	// AWS / object storage
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	S3Bucket           string
	UploadDir          string // local fallback when S3 is not configured

	// Identity provider
	CognitoUserPoolID string

	// Other
	AllowedOrigins []string
}

func Load() *Config {
	// Load .env file (ignore error if not present - use system env vars)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		Environment:        getEnv("ENVIRONMENT", "development"),
		DBDriver:           getEnv("DB_DRIVER", "postgres"),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBUser:             getEnv("DB_USER", "pems"),
		DBPassword:         getEnv("DB_PASSWORD", ""),
		DBName:             getEnv("DB_NAME", "pems"),
		ControlSchema:      getEnv("CONTROL_SCHEMA", "config"),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		UploadDir:          getEnv("UPLOAD_DIR", "static/uploads"),
		CognitoUserPoolID:  getEnv("COGNITO_USER_POOL_ID", ""),
		AllowedOrigins:     strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

// DSN builds the connection string for the configured driver.
// Tenancy is never encoded here: all tenants share one database and are
// selected per-request through schema translation.
func (c *Config) DSN() string {
	if c.DBDriver == "sqlite" {
		return c.DBName
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
