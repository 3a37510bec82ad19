package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DBDriver             string
	DBHost               string
	DBPort               string
	DBUser               string
	DBPassword           string
	DBName               string
	ServerPort           string
	GinMode              string
	JWTSecret            string
	JWTIssuer            string
	JWTExpirationMinutes int
	RenewalCheckInterval time.Duration
	PublicBaseURL        string
}

func Load() *Config {
	return &Config{
		DBDriver:             getEnv("DB_DRIVER", "postgres"),
		DBHost:               getEnv("DB_HOST", "localhost"),
		DBPort:               getEnv("DB_PORT", "5432"),
		DBUser:               getEnv("DB_USER", "licenseuser"),
		DBPassword:           getEnv("DB_PASSWORD", "licensepassword"),
		DBName:               getEnv("DB_NAME", "org_license_manager"),
		ServerPort:           getEnv("SERVER_PORT", "8080"),
		GinMode:              getEnv("GIN_MODE", "debug"),
		JWTSecret:            getEnv("JWT_SECRET", "default-secret-key-change-me"),
		JWTIssuer:            getEnv("JWT_ISSUER", "org-license-manager"),
		JWTExpirationMinutes: getEnvInt("JWT_EXPIRATION_MINUTES", 60),
		RenewalCheckInterval: getEnvDuration("RENEWAL_CHECK_INTERVAL", time.Minute),
		PublicBaseURL:        getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
