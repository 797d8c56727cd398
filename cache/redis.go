package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key is not cached.
var ErrMiss = errors.New("cache miss")

const (
	// Cache key patterns
	ProductListPattern   = "products:*"
	ProductFilterPattern = "products:filter:%s"
	ProductPagePattern   = "products:list:%s"
	ProductSearchPattern = "products:search:%s"
	CategoryPattern      = "products:category:%d"
	ProductDetailPattern = "product:%d"
	ProductDetailsGlob   = "product:*"
	CategoriesKey        = "categories:all"
)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Cache stores JSON documents in Redis.
type Cache struct {
	client *redis.Client
}

// New connects to Redis and checks the connection.
func New(ctx context.Context, config RedisConfig) (*Cache, error) {
	c := NewWithClient(redis.NewClient(&redis.Options{
		Addr:     config.Host + ":" + config.Port,
		Password: config.Password,
		DB:       config.DB,
	}))
	if err := c.Ping(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Ping tests the connection.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// Set stores data as JSON.
func (c *Cache) Set(ctx context.Context, key string, data any, expiration time.Duration) error {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.client.Set(ctx, key, dataJSON, expiration).Err()
}

// Get decodes the cached JSON at key into dest.
func (c *Cache) Get(ctx context.Context, key string, dest any) error {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(val, dest)
}

// Delete removes keys.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

// DeleteByPattern deletes all keys matching a pattern
func (c *Cache) DeleteByPattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Flush drops every key the catalog writes.
func (c *Cache) Flush(ctx context.Context) error {
	for _, pattern := range []string{ProductListPattern, ProductDetailsGlob, CategoriesKey} {
		if err := c.DeleteByPattern(ctx, pattern); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}
