package config

import (
	"accmanager-api/pkg/redis"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration settings for the application
type AppConfig struct {
	// Server settings
	Port            string
	Host            string
	Environment     string
	ShutdownTimeout int

	// Database settings (from database.go)
	Database *DatabaseConfig

	// Redis settings (from redis.go)
	Redis *redis.Config

	// Token issuer settings (from issuer.go)
	TokenIssuer *TokenIssuerConfig

	// Login pipeline behaviour
	Login *LoginConfig

	// Error reporting
	Sentry *SentryConfig

	// Allowed browser origins
	CORS *CORSConfig
}

// LoginConfig tunes the login pipeline
type LoginConfig struct {
	// UnifyAuthFailures reports unknown users as wrong-password failures
	UnifyAuthFailures bool
}

// SentryConfig holds Sentry reporting settings
type SentryConfig struct {
	DSN     string
	Release string
}

// CORSConfig holds cross-origin settings
type CORSConfig struct {
	AllowOrigins []string
}

var (
	appConfig *AppConfig
	once      sync.Once
)

// LoadConfig loads all configuration from environment variables once
func LoadConfig() *AppConfig {
	once.Do(func() {
		// Load environment variables from .env file if it exists
		loadEnvFile()
		appConfig = Load()
	})

	return appConfig
}

// Load builds a fresh configuration from the current environment
func Load() *AppConfig {
	return &AppConfig{
		// Server settings
		Port:            getEnv("PORT", "8000"),
		Host:            getEnv("HOST", "localhost"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),

		Database:    LoadDatabaseConfig(),
		Redis:       LoadRedisConfig(),
		TokenIssuer: LoadTokenIssuerConfig(),
		Login: &LoginConfig{
			UnifyAuthFailures: getEnvAsBool("LOGIN_UNIFY_AUTH_FAILURES", false),
		},
		Sentry: &SentryConfig{
			DSN:     getEnv("SENTRY_DSN", ""),
			Release: getEnv("APP_VERSION", ""),
		},
		CORS: &CORSConfig{
			AllowOrigins: getEnvAsList("CORS_ALLOW_ORIGINS", []string{"http://localhost:3000"}),
		},
	}
}

// IsDevelopment returns true if the app is in development mode
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if the app is in production mode
func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

// IsTest returns true if the app is in test mode
func (c *AppConfig) IsTest() bool {
	return c.Environment == "test"
}

// loadEnvFile tries to load environment variables from .env file
func loadEnvFile() {
	envFiles := []string{
		".env." + os.Getenv("ENVIRONMENT") + ".local", // .env.development.local
		".env.local",                       // .env.local
		".env." + os.Getenv("ENVIRONMENT"), // .env.development
		".env",                             // .env
	}

	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			err = godotenv.Load(file)
			if err == nil {
				log.Printf("Loaded environment from %s", file)
				break
			}
		}
	}
}

// Helper to get comma separated environment variables as a list
func getEnvAsList(key string, defaultVal []string) []string {
	val, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(val) == "" {
		return defaultVal
	}

	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
