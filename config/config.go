package config

import (
	"os"
	"strconv"
)

// Config holds all configuration for the inspection service
type Config struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// SendGrid configuration
	SendGridAPIKey    string
	SendGridFromName  string
	SendGridFromEmail string

	// Server
	Port           string
	TrustedProxies string

	// Report generation
	ReportLogoURL     string
	ReportJpegQuality int
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{}

	// Database configuration
	cfg.DBHost = getEnv("DB_HOST", "localhost")
	cfg.DBPort = getEnv("DB_PORT", "3306")
	cfg.DBUser = getEnv("DB_USER", "server")
	cfg.DBPassword = getEnv("DB_PASSWORD", "secret")
	cfg.DBName = getEnv("DB_NAME", "inspections")

	// SendGrid configuration
	cfg.SendGridAPIKey = getEnv("SENDGRID_API_KEY", "")
	cfg.SendGridFromName = getEnv("SENDGRID_FROM_NAME", "Vehicle Inspections")
	cfg.SendGridFromEmail = getEnv("SENDGRID_FROM_EMAIL", "reports@inspections.local")

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.TrustedProxies = getEnv("TRUSTED_PROXIES", "")

	// Report generation
	cfg.ReportLogoURL = getEnv("REPORT_LOGO_URL", "")
	cfg.ReportJpegQuality = getEnvInt("REPORT_JPEG_QUALITY", 58)

	return cfg
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getEnvInt gets an integer environment variable with a fallback default value
func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
