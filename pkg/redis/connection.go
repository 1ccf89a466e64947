package redis

import (
	"context"
	"log"
	"sync"
	"time"
)

var (
	// global client instance
	defaultClient *Client
	defaultOnce   sync.Once
	closeOnce     sync.Once
	stopMonitor   = make(chan struct{})
)

// InitDefault initializes the default Redis client with the given configuration
func InitDefault(config *Config) {
	defaultOnce.Do(func() {
		defaultClient = New(config)

		go monitorConnection(defaultClient, stopMonitor)
	})
}

// GetDefault returns the default Redis client instance
func GetDefault() *Client {
	if defaultClient == nil {
		panic("Default Redis client not initialized. Call InitDefault first.")
	}
	return defaultClient
}

// CloseAll stops the health monitor and closes the default client
func CloseAll() {
	if defaultClient == nil {
		return
	}

	closeOnce.Do(func() {
		close(stopMonitor)
		if err := defaultClient.Close(); err != nil {
			log.Printf("Error closing Redis client: %v", err)
		}
	})
}

// monitorConnection periodically checks the Redis connection and logs issues
func monitorConnection(client *Client, stop <-chan struct{}) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := client.Ping(ctx)
			cancel()

			if err != nil {
				log.Printf("Redis health check failed: %v", err)
			}
		}
	}
}

// RedisClient defines the cache operations used by services
// Useful for mocking in tests
type RedisClient interface {
	Ping(ctx context.Context) error
	Get(ctx context.Context, key string) (string, error)
	GetJSON(ctx context.Context, key string, result any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	SetJSON(ctx context.Context, key string, value any, expiration time.Duration) error
	DeleteMany(ctx context.Context, keys ...string) (int64, error)
	CacheTTL() time.Duration
	Close() error
}

// Ensure Client implements RedisClient interface
var _ RedisClient = (*Client)(nil)
