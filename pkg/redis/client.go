package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// Nil is returned by GetJSON when the key does not exist
var Nil = redis.Nil

// Client represents a Redis client with error tracking and connection reset
type Client struct {
	client        *redis.Client
	errorCount    int32
	lastErrorTime int64
	mu            sync.Mutex
	config        *Config
}

// Config holds Redis client configuration
type Config struct {
	Host           string
	Port           int
	DB             int
	Password       string
	MaxConnections int
	ConnTimeout    time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	CacheTTL       time.Duration
}

// DefaultConfig returns default Redis configuration
func DefaultConfig() *Config {
	return &Config{
		Host:           "localhost",
		Port:           6379,
		DB:             0,
		Password:       "",
		MaxConnections: 100,
		ConnTimeout:    2 * time.Second,
		ReadTimeout:    3 * time.Second,
		WriteTimeout:   3 * time.Second,
		CacheTTL:       time.Hour,
	}
}

// New creates a new Redis client with the given configuration
func New(config *Config) *Client {
	client := &Client{
		config: config,
	}

	client.initClient()

	return client
}

// CacheTTL returns the configured lifetime for cached entries
func (c *Client) CacheTTL() time.Duration {
	if c.config.CacheTTL <= 0 {
		return time.Hour
	}
	return c.config.CacheTTL
}

// initClient initializes the Redis client
func (c *Client) initClient() {
	c.client = redis.NewClient(&redis.Options{
		Addr:            fmt.Sprintf("%s:%d", c.config.Host, c.config.Port),
		Password:        c.config.Password,
		DB:              c.config.DB,
		PoolSize:        c.config.MaxConnections,
		DialTimeout:     c.config.ConnTimeout,
		ReadTimeout:     c.config.ReadTimeout,
		WriteTimeout:    c.config.WriteTimeout,
		PoolTimeout:     4 * time.Second,
		ConnMaxIdleTime: 5 * time.Minute,
	})
}

// checkAndResetClient resets the client after a burst of errors
func (c *Client) checkAndResetClient() {
	currentTime := time.Now().Unix()
	errorCount := atomic.LoadInt32(&c.errorCount)
	lastErrorTime := atomic.LoadInt64(&c.lastErrorTime)

	// Reset client if too many errors recently
	if errorCount > 5 && (currentTime-lastErrorTime) < 60 {
		c.mu.Lock()
		defer c.mu.Unlock()

		log.Printf("Too many Redis errors, resetting connection")
		if c.client != nil {
			_ = c.client.Close()
		}

		c.initClient()

		// Reset error counter
		atomic.StoreInt32(&c.errorCount, 0)
	}
}

// recordError records an error occurrence for monitoring purposes
func (c *Client) recordError() {
	atomic.StoreInt64(&c.lastErrorTime, time.Now().Unix())
	atomic.AddInt32(&c.errorCount, 1)
}

// Ping checks if Redis is responding
func (c *Client) Ping(ctx context.Context) error {
	c.checkAndResetClient()

	_, err := c.client.Ping(ctx).Result()
	if err != nil {
		c.recordError()
		return fmt.Errorf("redis ping error: %w", err)
	}

	return nil
}

// Get retrieves a value by key, returning "" when the key is absent
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	c.checkAndResetClient()

	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		c.recordError()
		return "", fmt.Errorf("redis get error: %w", err)
	}

	return val, nil
}

// GetJSON retrieves and parses a JSON value
func (c *Client) GetJSON(ctx context.Context, key string, result any) error {
	data, err := c.Get(ctx, key)
	if err != nil {
		return err
	}

	if data == "" {
		return redis.Nil
	}

	err = json.Unmarshal([]byte(data), result)
	if err != nil {
		return fmt.Errorf("json unmarshal error: %w", err)
	}

	return nil
}

// Set sets a value with expiration
func (c *Client) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	c.checkAndResetClient()

	err := c.client.Set(ctx, key, value, expiration).Err()
	if err != nil {
		c.recordError()
		return fmt.Errorf("redis set error: %w", err)
	}

	return nil
}

// SetJSON serializes and stores a JSON value
func (c *Client) SetJSON(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("json marshal error: %w", err)
	}

	return c.Set(ctx, key, data, expiration)
}

// DeleteMany deletes multiple keys
func (c *Client) DeleteMany(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	c.checkAndResetClient()

	result, err := c.client.Del(ctx, keys...).Result()
	if err != nil {
		c.recordError()
		return 0, fmt.Errorf("redis delete many error: %w", err)
	}

	return result, nil
}

// Close closes the underlying connection pool
func (c *Client) Close() error {
	return c.client.Close()
}
