package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/enterprise/strength-service/configs"
)

// ErrMiss is returned by Get when the key does not exist
var ErrMiss = errors.New("cache miss")

// Client provides prefixed cache operations on top of Redis
type Client struct {
	client redis.UniversalClient
	prefix string
}

// NewClient connects to Redis and verifies the connection
func NewClient(cfg configs.RedisConfig) (*Client, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info().Str("prefix", cfg.KeyPrefix).Msg("Redis cache client initialized")
	return NewFromRedis(client, cfg.KeyPrefix), nil
}

// NewFromRedis wraps an existing Redis client
func NewFromRedis(client redis.UniversalClient, prefix string) *Client {
	return &Client{client: client, prefix: prefix}
}

// Redis exposes the underlying client for components that need raw commands
func (c *Client) Redis() redis.UniversalClient {
	return c.client
}

// Key applies the configured prefix
func (c *Client) Key(parts ...string) string {
	key := c.prefix
	for _, p := range parts {
		if key == "" {
			key = p
			continue
		}
		key += ":" + p
	}
	return key
}

// Set stores a JSON encoded value
func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.Key(key), data, expiration).Err()
}

// Get decodes a JSON value into dest
func (c *Client) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, c.Key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		return err
	}
	return json.Unmarshal(data, dest)
}

// PushCapped prepends values to a list and trims it to max entries
func (c *Client) PushCapped(ctx context.Context, key string, max int64, values ...interface{}) error {
	full := c.Key(key)
	pipe := c.client.TxPipeline()
	pipe.LPush(ctx, full, values...)
	pipe.LTrim(ctx, full, 0, max-1)
	_, err := pipe.Exec(ctx)
	return err
}

// LRange gets a range of elements from a list
func (c *Client) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return c.client.LRange(ctx, c.Key(key), start, stop).Result()
}

// HealthCheck pings Redis
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the cache client
func (c *Client) Close() error {
	return c.client.Close()
}
