package redis

import (
	"context"
	"fmt"

	"quickfirstaid/common/config"

	"github.com/go-redis/redis/v8"
)

// Client aliases the go-redis client so callers do not import go-redis directly.
type Client = redis.Client

// NewRedisClient builds a client from config; it does not dial until first use.
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Ping checks that the server answers.
func Ping(ctx context.Context, client *redis.Client) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", client.Options().Addr, err)
	}
	return nil
}

// Close closes the client if it is not nil.
func Close(client *redis.Client) error {
	if client == nil {
		return nil
	}
	return client.Close()
}
