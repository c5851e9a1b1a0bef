package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connection tuning for the live-state cache workload: a steady stream of
// small GETs from polling displays plus a burst of SETs after each floor
// mutation. Reads that stall longer than a poll interval are worthless, so
// the timeouts stay tight and a failure degrades to a cache miss upstream.
const (
	dialTimeout  = 5 * time.Second
	readTimeout  = 2 * time.Second
	writeTimeout = 2 * time.Second
	poolSize     = 20
	minIdleConns = 2
)

// Config holds the connection settings for the cache backend.
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (c Config) addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Client wraps the driver client so the rest of the platform depends on this
// package rather than on the driver directly.
type Client struct {
	*redis.Client
}

// New connects to the cache backend and verifies the connection with a ping.
// Callers treat a returned error as "run without the fast cache", not as a
// startup failure.
func New(config Config) (*Client, error) {
	addr := config.addr()

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     config.Password,
		DB:           config.DB,
		DialTimeout:  dialTimeout,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		PoolSize:     poolSize,
		MinIdleConns: minIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("cache backend unreachable at %s: %w", addr, err)
	}

	log.Printf("[REDIS] connected to %s", addr)
	return &Client{Client: client}, nil
}

// HealthCheck reports whether the cache backend is still reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.Client.Close()
}
