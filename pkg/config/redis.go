package config

import (
	"os"
	"strconv"

	redis "accmanager-api/pkg/redis"
)

// LoadRedisConfig loads Redis configuration from environment variables
func LoadRedisConfig() *redis.Config {
	config := redis.DefaultConfig()

	if host := os.Getenv("REDIS_HOST"); host != "" {
		config.Host = host
	}

	if port := os.Getenv("REDIS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 {
			config.Port = p
		}
	}

	if db := os.Getenv("REDIS_DB"); db != "" {
		if d, err := strconv.Atoi(db); err == nil && d >= 0 {
			config.DB = d
		}
	}

	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		config.Password = password
	}

	if maxConns := os.Getenv("REDIS_MAX_CONNECTIONS"); maxConns != "" {
		if mc, err := strconv.Atoi(maxConns); err == nil && mc > 0 {
			config.MaxConnections = mc
		}
	}

	config.ConnTimeout = getEnvAsDuration("REDIS_CONN_TIMEOUT", config.ConnTimeout)
	config.ReadTimeout = getEnvAsDuration("REDIS_READ_TIMEOUT", config.ReadTimeout)
	config.WriteTimeout = getEnvAsDuration("REDIS_WRITE_TIMEOUT", config.WriteTimeout)
	config.CacheTTL = getEnvAsDuration("REDIS_CACHE_TTL", config.CacheTTL)

	return config
}
